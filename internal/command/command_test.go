// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package command

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vexingcodes/emojify"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		assertions func(Request, error)
	}{
		{
			name: "empty",
			text: "   ",
			assertions: func(_ Request, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "no command given")
			},
		},
		{
			name: "unbalanced quotes",
			text: `add "gopher https://example.com/gopher.png`,
			assertions: func(_ Request, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "failed to parse command")
			},
		},
		{
			name: "unknown verb",
			text: "rename gopher golang",
			assertions: func(_ Request, err error) {
				require.True(t, emojify.IsUnsupportedCommand(err))
				require.Equal(t, `unsupported command "rename", valid commands: add,remove,alias`, err.Error())
			},
		},
		{
			name: "add missing url",
			text: "add gopher",
			assertions: func(_ Request, err error) {
				require.True(t, IsUsage(err))
				require.Contains(t, err.Error(), "/emojify add [name] [url]")
			},
		},
		{
			name: "remove too many",
			text: "remove gopher golang",
			assertions: func(_ Request, err error) {
				require.True(t, IsUsage(err))
				require.Contains(t, err.Error(), "got 2")
			},
		},
		{
			name: "add",
			text: "add test_emoji http://example.com/foo.jpg",
			assertions: func(req Request, err error) {
				require.NoError(t, err)
				require.Equal(t, Request{
					Verb: VerbAdd,
					Name: "test_emoji",
					URL:  "http://example.com/foo.jpg",
					Text: "add test_emoji http://example.com/foo.jpg",
				}, req)
			},
		},
		{
			name: "quoted arguments",
			text: `ADD 'gopher' "http://example.com/a gopher.png"`,
			assertions: func(req Request, err error) {
				require.NoError(t, err)
				require.Equal(t, VerbAdd, req.Verb)
				require.Equal(t, "gopher", req.Name)
				require.Equal(t, "http://example.com/a gopher.png", req.URL)
			},
		},
		{
			name: "remove",
			text: "remove gopher",
			assertions: func(req Request, err error) {
				require.NoError(t, err)
				require.Equal(t, VerbRemove, req.Verb)
				require.Equal(t, "gopher", req.Name)
			},
		},
		{
			name: "alias",
			text: "alias gopher golang",
			assertions: func(req Request, err error) {
				require.NoError(t, err)
				require.Equal(t, VerbAlias, req.Verb)
				require.Equal(t, "gopher", req.Target)
				require.Equal(t, "golang", req.Alias)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req, err := Parse(testCase.text)
			testCase.assertions(req, err)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, Request{Verb: VerbRemove, Name: "gopher"}.Validate())
	require.True(t, IsUsage(Request{Verb: VerbAdd, Name: "gopher"}.Validate()))
	require.True(t, IsUsage(Request{Verb: VerbAlias, Alias: "golang"}.Validate()))
	require.True(t, emojify.IsUnsupportedCommand(Request{Verb: "list"}.Validate()))
}

func TestRun(t *testing.T) {
	pngImage := emojify.Image{Data: []byte("png"), ContentType: "image/png"}
	fetch := func(_ context.Context, url string) (emojify.Image, error) {
		if url == "http://example.com/missing.png" {
			return emojify.Image{}, &emojify.InvalidImageError{URL: url, Reason: "unexpected HTTP response status: 404 Not Found"}
		}
		return pngImage, nil
	}

	testCases := []struct {
		name       string
		req        Request
		ops        *mockOperations
		assertions func(*mockOperations, string, error)
	}{
		{
			name: "invalid request",
			req:  Request{Verb: "list"},
			ops:  &mockOperations{},
			assertions: func(_ *mockOperations, _ string, err error) {
				require.True(t, emojify.IsUnsupportedCommand(err))
			},
		},
		{
			name: "add",
			req:  Request{Verb: VerbAdd, Name: "test_emoji", URL: "http://example.com/foo.jpg"},
			ops: &mockOperations{
				AddEmojiFn: func(_ context.Context, name string, img emojify.Image) error {
					require.Equal(t, "test_emoji", name)
					require.Equal(t, pngImage, img)
					return nil
				},
			},
			assertions: func(_ *mockOperations, result string, err error) {
				require.NoError(t, err)
				require.Equal(t, "Created emoji test_emoji :test_emoji:", result)
			},
		},
		{
			name: "add bad image",
			req:  Request{Verb: VerbAdd, Name: "test_emoji", URL: "http://example.com/missing.png"},
			ops:  &mockOperations{},
			assertions: func(_ *mockOperations, _ string, err error) {
				require.True(t, emojify.IsInvalidImage(err))
			},
		},
		{
			name: "add duplicate",
			req:  Request{Verb: VerbAdd, Name: "gopher", URL: "http://example.com/foo.jpg"},
			ops: &mockOperations{
				AddEmojiFn: func(context.Context, string, emojify.Image) error {
					return &emojify.DuplicateNameError{Name: "gopher"}
				},
			},
			assertions: func(_ *mockOperations, _ string, err error) {
				require.True(t, emojify.IsDuplicateName(err))
			},
		},
		{
			name: "remove",
			req:  Request{Verb: VerbRemove, Name: "gopher"},
			ops: &mockOperations{
				RemoveEmojiFn: func(_ context.Context, name string) error {
					require.Equal(t, "gopher", name)
					return nil
				},
			},
			assertions: func(_ *mockOperations, result string, err error) {
				require.NoError(t, err)
				require.Equal(t, "Deleted emoji gopher", result)
			},
		},
		{
			name: "remove fails",
			req:  Request{Verb: VerbRemove, Name: "gopher"},
			ops: &mockOperations{
				RemoveEmojiFn: func(context.Context, string) error {
					return errors.New("something went wrong")
				},
			},
			assertions: func(_ *mockOperations, result string, err error) {
				require.Error(t, err)
				require.Empty(t, result)
			},
		},
		{
			name: "alias",
			req:  Request{Verb: VerbAlias, Target: "gopher", Alias: "golang"},
			ops: &mockOperations{
				AliasEmojiFn: func(_ context.Context, target, alias string) error {
					require.Equal(t, "gopher", target)
					require.Equal(t, "golang", alias)
					return nil
				},
			},
			assertions: func(_ *mockOperations, result string, err error) {
				require.NoError(t, err)
				require.Equal(t, "Aliased emoji golang links to gopher", result)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := Run(context.Background(), testCase.ops, fetch, testCase.req)
			testCase.assertions(testCase.ops, result, err)
		})
	}
}

type mockOperations struct {
	AddEmojiFn    func(context.Context, string, emojify.Image) error
	RemoveEmojiFn func(context.Context, string) error
	AliasEmojiFn  func(context.Context, string, string) error
}

func (m *mockOperations) AddEmoji(ctx context.Context, name string, img emojify.Image) error {
	return m.AddEmojiFn(ctx, name, img)
}

func (m *mockOperations) RemoveEmoji(ctx context.Context, name string) error {
	return m.RemoveEmojiFn(ctx, name)
}

func (m *mockOperations) AliasEmoji(ctx context.Context, target, alias string) error {
	return m.AliasEmojiFn(ctx, target, alias)
}

var _ Operations = &emojify.Session{}
