// Copyright (c) 2018 Tim Heckman
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package emojify manages custom emoji in a Slack workspace. Slack's Web API
// has no documented way to add or remove emoji with a bot token, so this
// package logs in the way a browser would, scrapes the session token the web
// client uses, and calls the same internal methods the emoji customization page
// calls.
//
// A Session is meant for exactly one operation:
//
//	c := emojify.New()
//	s, err := c.EstablishSession(ctx, emojify.Credentials{TeamName: "gophers", Email: e, Password: p})
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	return s.AliasEmoji(ctx, "gopher", "gofer")
//
// The behaviors and endpoints relied on here are undocumented and fall outside
// of any compatibility guarantees provided by Slack. It's reasonable to assume
// they may break unexpectedly.
package emojify
