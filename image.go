// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"bytes"
	"context"
	"image"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const (
	// EmojiSize is the width and height, in pixels, of uploaded emoji.
	EmojiSize = 128

	// maxImageBytes caps how much of a remote image we're willing to read.
	maxImageBytes = 10 << 20
)

// Image is an encoded image ready to be uploaded as an emoji.
type Image struct {
	Data        []byte
	ContentType string
}

func (i Image) extension() string {
	switch i.ContentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}

// FetchImage downloads the image at rawURL, crops it to a centered square and
// resizes it to EmojiSize, and returns it PNG encoded.
func FetchImage(ctx context.Context, c HTTPClient, rawURL string) (Image, error) {
	req, err := getReq(ctx, rawURL, nil)
	if err != nil {
		return Image{}, &InvalidImageError{URL: rawURL, Reason: "bad URL", Err: err}
	}

	resp, err := c.Do(req)
	if err != nil {
		return Image{}, &InvalidImageError{URL: rawURL, Reason: "unreachable", Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Image{}, &InvalidImageError{URL: rawURL, Reason: "unexpected HTTP response status: " + resp.Status}
	}

	src, err := imaging.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return Image{}, &InvalidImageError{URL: rawURL, Reason: "unsupported image format", Err: err}
	}

	buf := &bytes.Buffer{}

	if err := imaging.Encode(buf, squareCropAndResize(src, EmojiSize), imaging.PNG); err != nil {
		return Image{}, errors.Wrap(err, "failed to encode image")
	}

	return Image{Data: buf.Bytes(), ContentType: "image/png"}, nil
}

// squareCropAndResize trims the longer side evenly from both ends so the image
// is square, then scales it to size x size.
func squareCropAndResize(img image.Image, size int) image.Image {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}
