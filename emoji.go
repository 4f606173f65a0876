// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	methodEmojiList   = "emoji.list"
	methodEmojiAdd    = "emoji.add"
	methodEmojiRemove = "emoji.remove"

	modeData  = "data"
	modeAlias = "alias"
)

// authorizationCodes are the Web API error codes that mean "you are who you
// say you are, but you can't do that".
var authorizationCodes = map[string]struct{}{
	"not_authed":             {},
	"invalid_auth":           {},
	"account_inactive":       {},
	"token_revoked":          {},
	"not_allowed_token_type": {},
	"no_permission":          {},
	"missing_scope":          {},
	"restricted_action":      {},
	"admin_only":             {},
	"not_allowed":            {},
}

var invalidImageCodes = map[string]struct{}{
	"no_image_uploaded":           {},
	"error_bad_upload":            {},
	"error_bad_format":            {},
	"error_too_big":               {},
	"too_large":                   {},
	"resized_but_still_too_large": {},
	"error_missing_image":         {},
}

// apiResponse is the envelope every Web API method responds with.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ListEmoji returns the workspace's custom emoji, keyed by name. Aliases have
// values of the form "alias:target".
func (s *Session) ListEmoji(ctx context.Context) (map[string]string, error) {
	if s.closed() {
		return nil, errors.WithStack(ErrSessionClosed)
	}

	emoji, err := s.api.GetEmojiContext(ctx)
	if err != nil {
		var se slack.SlackErrorResponse
		if errors.As(err, &se) {
			return nil, classify(methodEmojiList, se.Err, "", "")
		}

		return nil, &NetworkError{Op: "POST " + s.apiURL + methodEmojiList, Err: err}
	}

	return emoji, nil
}

// assertEmoji makes sure exists is a known emoji, and notExists isn't. Either
// may be empty to skip that check.
func (s *Session) assertEmoji(ctx context.Context, exists, notExists string) error {
	emoji, err := s.ListEmoji(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list emoji")
	}

	if len(exists) > 0 {
		if _, ok := emoji[exists]; !ok {
			return &NotFoundError{Name: exists}
		}
	}

	if len(notExists) > 0 {
		if _, ok := emoji[notExists]; ok {
			return &DuplicateNameError{Name: notExists}
		}
	}

	return nil
}

// AddEmoji uploads img as a new emoji called name. Slack expects the image to
// be at most 128x128 and 64KB; see FetchImage.
func (s *Session) AddEmoji(ctx context.Context, name string, img Image) error {
	if len(name) == 0 {
		return errors.New("must provide an emoji name")
	}

	if len(img.Data) == 0 {
		return &InvalidImageError{Reason: "image is empty"}
	}

	if err := s.assertEmoji(ctx, "", name); err != nil {
		return err
	}

	v := url.Values{
		"mode":  []string{modeData},
		"name":  []string{name},
		"token": []string{s.Token},
	}

	req, err := postMultipartReq(ctx, s.apiURL+methodEmojiAdd, v, "image", name+img.extension(), img.Data, img.ContentType)
	if err != nil {
		return err
	}

	return s.call(req, methodEmojiAdd, name, "")
}

// RemoveEmoji deletes the emoji called name.
func (s *Session) RemoveEmoji(ctx context.Context, name string) error {
	if len(name) == 0 {
		return errors.New("must provide an emoji name")
	}

	if err := s.assertEmoji(ctx, name, ""); err != nil {
		return err
	}

	v := url.Values{
		"name":  []string{name},
		"token": []string{s.Token},
	}

	req, err := postFormReq(ctx, s.apiURL+methodEmojiRemove, v)
	if err != nil {
		return err
	}

	return s.call(req, methodEmojiRemove, "", name)
}

// AliasEmoji makes alias another name for the existing emoji target.
func (s *Session) AliasEmoji(ctx context.Context, target, alias string) error {
	if len(target) == 0 || len(alias) == 0 {
		return errors.New("must provide both a target and an alias name")
	}

	if err := s.assertEmoji(ctx, target, alias); err != nil {
		return err
	}

	v := url.Values{
		"mode":      []string{modeAlias},
		"name":      []string{alias},
		"alias_for": []string{target},
		"token":     []string{s.Token},
	}

	req, err := postFormReq(ctx, s.apiURL+methodEmojiAdd, v)
	if err != nil {
		return err
	}

	return s.call(req, methodEmojiAdd, alias, target)
}

// call sends a mutation request and turns the response envelope in to an
// error. name is the emoji being created (reported on duplicates) and target
// the one that must already exist (reported when missing).
func (s *Session) call(req *http.Request, method, name, target string) error {
	if s.closed() {
		return errors.WithStack(ErrSessionClosed)
	}

	op := req.Method + " " + req.URL.String()

	resp, err := s.c.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return &NetworkError{Op: op, Err: errors.Errorf("unexpected HTTP response status: %s", resp.Status)}
	}

	var ar apiResponse

	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return &NetworkError{Op: op, Err: errors.Wrap(err, "failed to decode response")}
	}

	if ar.OK {
		return nil
	}

	return classify(method, ar.Error, name, target)
}

func classify(method, code, name, target string) error {
	if _, ok := authorizationCodes[code]; ok {
		return &AuthorizationError{Method: method, Code: code}
	}

	if _, ok := invalidImageCodes[code]; ok {
		return &InvalidImageError{Reason: "rejected by Slack (" + code + ")"}
	}

	switch code {
	case "error_name_taken", "error_name_taken_i18n":
		return &DuplicateNameError{Name: name}

	case "emoji_not_found", "error_invalid_alias":
		return &NotFoundError{Name: target}
	}

	if len(code) == 0 {
		code = "unknown error"
	}

	return errors.Errorf("%s failed: %s", method, code)
}
