// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package command parses emojify commands and runs them against a session.
// The same Request type is what the dispatch handler forwards to the
// processing handler.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/vexingcodes/emojify"
)

// Verb is the first word of a command.
type Verb string

const (
	VerbAdd    Verb = "add"
	VerbRemove Verb = "remove"
	VerbAlias  Verb = "alias"
)

// Usage lines, one per verb.
var Usage = []string{
	"/emojify add [name] [url]",
	"/emojify remove [name]",
	"/emojify alias [target] [alias]",
}

var arity = map[Verb]int{
	VerbAdd:    2,
	VerbRemove: 1,
	VerbAlias:  2,
}

var usageFor = map[Verb]string{
	VerbAdd:    Usage[0],
	VerbRemove: Usage[1],
	VerbAlias:  Usage[2],
}

// Request is a parsed command plus everything needed to report back to
// whoever issued it.
type Request struct {
	// ID correlates the dispatch and processing log lines for one command.
	ID string `json:"id,omitempty"`

	Verb   Verb   `json:"verb"`
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Alias  string `json:"alias,omitempty"`

	// Text is the command as typed, e.g. "add gopher https://...".
	Text string `json:"command"`

	UserID      string `json:"user_id,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	ResponseURL string `json:"response_url,omitempty"`
}

// UsageError is returned when a known verb gets the wrong arguments.
type UsageError struct {
	Verb Verb
	Got  int
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s takes %d argument(s), got %d; usage: %s", e.Verb, arity[e.Verb], e.Got, usageFor[e.Verb])
}

// IsUsage reports whether err wraps a *UsageError.
func IsUsage(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// Parse shell-splits text and builds a Request from it.
func Parse(text string) (Request, error) {
	words, err := shlex.Split(text)
	if err != nil {
		return Request{}, errors.Wrapf(err, "failed to parse command %q", text)
	}

	if len(words) == 0 {
		return Request{}, errors.New("no command given")
	}

	req, err := New(Verb(strings.ToLower(words[0])), words[1:])
	if err != nil {
		return Request{}, err
	}

	req.Text = text

	return req, nil
}

// New builds a Request for verb from its positional arguments.
func New(verb Verb, args []string) (Request, error) {
	n, ok := arity[verb]
	if !ok {
		return Request{}, &emojify.UnsupportedCommandError{Verb: string(verb)}
	}

	if len(args) != n {
		return Request{}, &UsageError{Verb: verb, Got: len(args)}
	}

	req := Request{Verb: verb, Text: strings.Join(append([]string{string(verb)}, args...), " ")}

	switch verb {
	case VerbAdd:
		req.Name, req.URL = args[0], args[1]
	case VerbRemove:
		req.Name = args[0]
	case VerbAlias:
		req.Target, req.Alias = args[0], args[1]
	}

	return req, req.Validate()
}

// Validate checks that the fields the verb needs are set. Requests that come
// off the wire are validated again before they are run.
func (r Request) Validate() error {
	switch r.Verb {
	case VerbAdd:
		if len(r.Name) == 0 || len(r.URL) == 0 {
			return &UsageError{Verb: r.Verb, Got: count(r.Name, r.URL)}
		}

	case VerbRemove:
		if len(r.Name) == 0 {
			return &UsageError{Verb: r.Verb}
		}

	case VerbAlias:
		if len(r.Target) == 0 || len(r.Alias) == 0 {
			return &UsageError{Verb: r.Verb, Got: count(r.Target, r.Alias)}
		}

	default:
		return &emojify.UnsupportedCommandError{Verb: string(r.Verb)}
	}

	return nil
}

func count(vals ...string) int {
	var n int
	for _, v := range vals {
		if len(v) > 0 {
			n++
		}
	}
	return n
}

// Operations are the emoji mutations a command can perform. *emojify.Session
// implements it.
type Operations interface {
	AddEmoji(ctx context.Context, name string, img emojify.Image) error
	RemoveEmoji(ctx context.Context, name string) error
	AliasEmoji(ctx context.Context, target, alias string) error
}

// ImageFetcher downloads the image to use for a new emoji.
type ImageFetcher func(ctx context.Context, url string) (emojify.Image, error)

// FetchWith returns an ImageFetcher that downloads with c.
func FetchWith(c emojify.HTTPClient) ImageFetcher {
	return func(ctx context.Context, url string) (emojify.Image, error) {
		return emojify.FetchImage(ctx, c, url)
	}
}

// Run performs req and returns the text to show the user on success.
func Run(ctx context.Context, ops Operations, fetch ImageFetcher, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	switch req.Verb {
	case VerbAdd:
		img, err := fetch(ctx, req.URL)
		if err != nil {
			return "", err
		}

		if err := ops.AddEmoji(ctx, req.Name, img); err != nil {
			return "", err
		}

		return fmt.Sprintf("Created emoji %[1]s :%[1]s:", req.Name), nil

	case VerbRemove:
		if err := ops.RemoveEmoji(ctx, req.Name); err != nil {
			return "", err
		}

		return "Deleted emoji " + req.Name, nil

	default:
		if err := ops.AliasEmoji(ctx, req.Target, req.Alias); err != nil {
			return "", err
		}

		return fmt.Sprintf("Aliased emoji %s links to %s", req.Alias, req.Target), nil
	}
}
