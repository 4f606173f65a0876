// Copyright (c) 2018 Tim Heckman
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// userAgent must stay the same between fetching the sign in form and posting
// it, because Slack mixes it in to the crumb hash.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/115.0"

func setUA(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
}

func getReq(ctx context.Context, url string, val url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	if len(val) > 0 {
		req.URL.RawQuery = val.Encode()
	}

	setUA(req)

	return req, nil
}

func postFormReq(ctx context.Context, url string, val url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(val.Encode()))
	if err != nil {
		return nil, err
	}

	setUA(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req, nil
}

// postMultipartReq builds a multipart/form-data POST carrying the plain form
// values plus a single file part, which is how the web client uploads emoji
// images.
func postMultipartReq(ctx context.Context, url string, val url.Values, field, filename string, content []byte, contentType string) (*http.Request, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for k, vs := range val {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, errors.Wrapf(err, "failed to write form field %q", k)
			}
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file part")
	}

	if _, err = part.Write(content); err != nil {
		return nil, errors.Wrap(err, "failed to write file part")
	}

	if err = mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	setUA(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req, nil
}
