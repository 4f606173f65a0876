// Copyright (c) 2018 Tim Heckman
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultRedir  = "/customize/emoji"
	defaultSignin = "1"
)

// LoginDetails is a struct to contain the hidden fields presented by Slack on
// their login form. Some of these fields are needed for logging in, so this can
// be used to present them back.
type LoginDetails struct {
	Crumb       string
	Redir       string
	Signin      string
	HasRemember string
}

func (l *login) getLoginDetails(ctx context.Context) (LoginDetails, error) {
	resp, err := l.get(ctx, l.endpoint, nil)
	if err != nil {
		return LoginDetails{}, err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return LoginDetails{}, l.authErr(errors.Errorf("unexpected HTTP response status: %s", resp.Status), "sign in form unavailable")
	}

	ld, err := parseLoginDetails(resp.Body)
	if err != nil {
		return LoginDetails{}, l.authErr(err, "failed to retrieve LoginDetails")
	}

	return ld, nil
}

func parseLoginDetails(r io.Reader) (LoginDetails, error) {
	var ld LoginDetails

	t := html.NewTokenizer(r)

	for {
		tt := t.Next()

		// an error token is either io.EOF or a real error; either way we've
		// seen all we're going to see
		if tt == html.ErrorToken {
			break
		}

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		token := t.Token()

		if token.DataAtom != atom.Input {
			continue
		}

		var name, value string

		for _, attr := range token.Attr {
			switch attr.Key {
			case "name":
				name = attr.Val
			case "value":
				value = attr.Val
			}
		}

		switch name {
		case "crumb":
			ld.Crumb = value
		case "redir":
			ld.Redir = value
		case "signin":
			ld.Signin = value
		case "has_remember":
			ld.HasRemember = value
		}
	}

	if len(ld.Crumb) == 0 {
		return LoginDetails{}, errors.New("unable to find crumb hidden input in the page")
	}

	if len(ld.Redir) == 0 {
		ld.Redir = defaultRedir
	}

	if len(ld.Signin) == 0 {
		ld.Signin = defaultSignin
	}

	return ld, nil
}
