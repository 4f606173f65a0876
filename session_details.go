// Copyright (c) 2018 Tim Heckman
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Slack has shipped the boot data both as a JavaScript object literal and as
// JSON over the years, so look for either spelling.
var (
	apiTokenStrings  = []string{`api_token: "`, `"api_token":"`} /* #nosec */
	logOutURLStrings = []struct {
		search string
		end    byte
	}{
		{search: `boot_data.logout_url = "`, end: ';'},
		{search: `"logout_url":"`, end: '"'},
	}
)

type sessionDetails struct {
	sessionToken string
	logOutURL    string
}

// parseInlineJsValue assumes you're pulling a string value from a byte slice that
// contains JavaScript objects. The search string would be something like
// `api_token: "` to search for the beginning of the value we want to parse out.
//
// This function then finds the location of the end byte, relative to the end of
// the search string. This effectively will extract whatever is between the last
// byte of `search` and the `end` byte, returning it to the caller as a string.
func parseInlineJsValue(p []byte, search string, end byte) (string, error) {
	i := bytes.Index(p, []byte(search))
	if i < 0 {
		return "", errors.Errorf("%q not found in byte slice", search)
	}

	b := i + len(search)

	ii := bytes.IndexByte(p[b:], end)
	if ii < 0 {
		return "", errors.Errorf("did not find terminating byte (%q) in input", end)
	}

	return string(p[b : b+ii]), nil
}

func parseSessionDetails(p []byte) (sessionDetails, error) {
	var sd sessionDetails

	for _, search := range apiTokenStrings {
		if token, err := parseInlineJsValue(p, search, '"'); err == nil && len(token) > 0 {
			sd.sessionToken = token
			break
		}
	}

	if len(sd.sessionToken) == 0 {
		return sessionDetails{}, errors.New("unable to find api_token in response")
	}

	// the logout URL is nice to have; without it Close() can't sign out, but
	// the session is still usable
	for _, lo := range logOutURLStrings {
		raw, err := parseInlineJsValue(p, lo.search, lo.end)
		if err != nil {
			continue
		}

		logoutURL := formatLogoutURL(raw)

		if u, err := url.Parse(logoutURL); err == nil && u.IsAbs() {
			sd.logOutURL = logoutURL
			break
		}
	}

	return sd, nil
}

var logoutURLreplacer = strings.NewReplacer(`"`, "", `'`, "", `+`, "", `\/`, "/")

// formatLogoutURL takes the logout URL string as presented in the response
// body, and cleans it up. The inline JavaScript version looks something like
//
//	https:\/\/slack.com\/"+'signout/'+"7331842483"+'?crumb=s-1523212012-e051261e2dc00d007973fd19eb3497d45fbe4432dee2b2121d35afa72a5d7af1-%E2%98%83'
//
// so the string concatenation and the escaped slashes need to go.
func formatLogoutURL(s string) string {
	return logoutURLreplacer.Replace(s)
}
