// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package queue

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vexingcodes/emojify/internal/command"
)

// ErrFull is returned by Channel.Publish when the buffer has no room.
var ErrFull = errors.New("command queue is full")

// Channel is an in-process Publisher for running both handlers in one
// process.
type Channel struct {
	ch chan command.Request
}

// NewChannel returns a Channel that buffers up to size commands.
func NewChannel(size int) *Channel {
	return &Channel{ch: make(chan command.Request, size)}
}

// Publish buffers the command without waiting. It returns ErrFull when the
// consumer has fallen behind.
func (c *Channel) Publish(ctx context.Context, req command.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case c.ch <- req:
		return nil
	default:
		return errors.WithStack(ErrFull)
	}
}

// Consume calls fn for every published command, one at a time, until ctx is
// done.
func (c *Channel) Consume(ctx context.Context, fn func(context.Context, command.Request)) error {
	for {
		select {
		case req := <-c.ch:
			fn(ctx, req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
