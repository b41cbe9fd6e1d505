// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the media-miner pipeline:
// harvested result records and the configuration consumed by each stage.
package types

import "fmt"

// PhotoFormat is the media type of every image locator produced by Photo.URL.
const PhotoFormat = "image/jpg"

// Photo is a single search hit returned by the media search service.
// Fields mirror the service's photo record; the canonical image locator is
// derived from them rather than stored.
type Photo struct {
	// ID is the service's stable photo identifier.
	ID string `json:"id" yaml:"id"`

	// Owner is the NSID of the uploading account.
	Owner string `json:"owner" yaml:"owner"`

	// Secret and Server address the static image on the farm.
	Secret string `json:"secret" yaml:"secret"`
	Server string `json:"server" yaml:"server"`

	// Farm is the static-content farm number.
	Farm int `json:"farm" yaml:"farm"`

	// Title is the user-supplied title, possibly empty.
	Title string `json:"title" yaml:"title"`

	// IsPublic reports whether the photo is publicly visible.
	IsPublic bool `json:"ispublic" yaml:"ispublic"`
}

// URL returns the canonical static image locator for the photo.
func (p Photo) URL() string {
	return fmt.Sprintf("http://farm%d.static.flickr.com/%s/%s_%s.jpg", p.Farm, p.Server, p.ID, p.Secret)
}

// Format returns the media type of the image at URL.
func (p Photo) Format() string { return PhotoFormat }
