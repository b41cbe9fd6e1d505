// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCovers(t *testing.T, full Interval, parts []Interval) {
	t.Helper()
	sorted := append([]Interval(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	require.NotEmpty(t, sorted)
	assert.Equal(t, full.Start, sorted[0].Start, "coverage must start at the range start")
	reach := sorted[0].End
	for _, iv := range sorted[1:] {
		assert.LessOrEqual(t, iv.Start, reach, "gap before %s", iv)
		if iv.End > reach {
			reach = iv.End
		}
	}
	assert.Equal(t, full.End, reach, "coverage must reach the range end")
}

func TestPartitionUnderCapIsNotSplit(t *testing.T) {
	c := uniformCorpus(300, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 20)
	require.NoError(t, err)

	assert.Equal(t, []Interval{{0, 1000}}, res.Intervals)
	assert.Equal(t, []int{300}, res.Totals)
	assert.Equal(t, 1, res.Probes)
	require.Len(t, c.requests, 1)
	assert.Equal(t, 1, c.requests[0].Page)
	assert.Equal(t, probePageSize, c.requests[0].PerPage)
}

func TestPartitionCancelledContext(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Partition(ctx, "cats", Interval{0, 1000}, 9000)
	assert.ErrorIs(t, err, context.Canceled)
	var see *SearchExecutionError
	assert.ErrorAs(t, err, &see)
	assert.Empty(t, res.Intervals)
	assert.Empty(t, c.requests)
}

func TestPartitionSplitsOverCapIntoTwoChildren(t *testing.T) {
	c := uniformCorpus(6000, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 10000)
	require.NoError(t, err)

	// Upper half is examined first; each child is probed before acceptance.
	assert.Equal(t, []Interval{{500, 1000}, {0, 500}}, res.Intervals)
	assert.Equal(t, []int{3000, 3000}, res.Totals)
	assert.Equal(t, 3, res.Probes)
	assertCovers(t, Interval{0, 1000}, res.Intervals)
}

func TestPartitionScenarioNineThousandOverCapFourThousand(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 9000)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(res.Intervals), 2)
	for i, total := range res.Totals {
		assert.GreaterOrEqual(t, total, 0, "interval %s was not probed", res.Intervals[i])
		assert.LessOrEqual(t, total, 4000, "interval %s exceeds the cap", res.Intervals[i])
		assert.Equal(t, total, len(c.matching(&res.Intervals[i])))
	}
	assert.Equal(t, 0, res.Unresolved)
	assert.Equal(t, 9000, res.Covered)
	assertCovers(t, Interval{0, 1000}, res.Intervals)
}

func TestPartitionDepthFirstOrder(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	_, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 9000)
	require.NoError(t, err)

	var probed []Interval
	for _, r := range c.probes() {
		probed = append(probed, *r.Interval)
	}
	// The children of [500,1000] are resolved before its sibling [0,500].
	assert.Equal(t, []Interval{
		{0, 1000},
		{500, 1000},
		{750, 1000},
		{500, 750},
		{0, 500},
		{250, 500},
		{0, 250},
	}, probed)
}

func TestPartitionStopsOnceLimitCovered(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Probes)
	assert.Equal(t, 2, res.Unresolved)
	assert.Equal(t, []Interval{{750, 1000}, {0, 500}, {500, 750}}, res.Intervals)
	assert.Equal(t, []int{2250, -1, -1}, res.Totals)
	assertCovers(t, Interval{0, 1000}, res.Intervals)
}

func TestPartitionDegenerateIntervalTerminates(t *testing.T) {
	var log bytes.Buffer
	s := &Splitter{Exec: fixedTotal(5000), Cap: 4000, MaxPageSize: 500, Log: &log}

	full := Interval{0, 1024}
	res, err := s.Partition(context.Background(), "cats", full, 10)
	require.NoError(t, err)

	bound := int(math.Log2(float64(full.Width()))) + 1
	assert.LessOrEqual(t, res.Probes, bound)
	assert.Equal(t, 1, res.Degenerate)
	assert.Equal(t, Interval{1023, 1024}, res.Intervals[0])
	assert.Contains(t, log.String(), "cannot be split")
	assertCovers(t, full, res.Intervals)
}

func TestPartitionDegenerateEverywhereStillTerminates(t *testing.T) {
	s := &Splitter{Exec: fixedTotal(5000), Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 8}, math.MaxInt32)
	require.NoError(t, err)

	// A full binary tree over eight unit intervals.
	assert.Equal(t, 15, res.Probes)
	assert.Equal(t, 8, res.Degenerate)
	assert.Len(t, res.Intervals, 8)
	assert.Equal(t, 0, res.Unresolved)
}

func TestPartitionZeroWidth(t *testing.T) {
	s := &Splitter{Exec: fixedTotal(9999), Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{5, 5}, 10)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{5, 5}}, res.Intervals)
	assert.Equal(t, 1, res.Probes)
	assert.Equal(t, 1, res.Degenerate)
}

func TestPartitionProbeFailureIsFatal(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	c.failAt = 2
	s := &Splitter{Exec: c, Cap: 4000, MaxPageSize: 500}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 9000)
	require.Error(t, err)
	var see *SearchExecutionError
	require.True(t, errors.As(err, &see))
	assert.Contains(t, see.RawBody, "jsonFlickrApi")
	assert.Empty(t, res.Intervals)
}

func TestPartitionWrapsPlainExecutorErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s := &Splitter{
		Exec: ExecutorFunc(func(context.Context, SearchRequest) (SearchBatch, error) {
			return SearchBatch{}, boom
		}),
		Cap: 4000,
	}

	_, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 10)
	var see *SearchExecutionError
	require.ErrorAs(t, err, &see)
	assert.ErrorIs(t, err, boom)
}

func TestPartitionWithoutCapSkipsProbing(t *testing.T) {
	c := uniformCorpus(9000, 0, 1000)
	s := &Splitter{Exec: c}

	res, err := s.Partition(context.Background(), "cats", Interval{0, 1000}, 10)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{0, 1000}}, res.Intervals)
	assert.Empty(t, c.requests)
}
