// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package process is the second of the two emojify handlers. It signs in to
// Slack, runs one forwarded command, and reports the outcome through the
// command's response URL.
package process

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/vexingcodes/emojify"
	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/logging"
	"github.com/vexingcodes/emojify/internal/notify"
	"github.com/vexingcodes/emojify/internal/queue"
)

// Processor runs forwarded commands.
type Processor struct {
	sessions emojify.SessionEstablisher
	creds    emojify.Credentials
	fetch    command.ImageFetcher
	notifier notify.Notifier
	renderer *notify.Renderer
}

// NewProcessor returns a Processor that signs in with creds for every command.
func NewProcessor(
	sessions emojify.SessionEstablisher,
	creds emojify.Credentials,
	fetch command.ImageFetcher,
	notifier notify.Notifier,
) (*Processor, error) {
	renderer, err := notify.NewRenderer()
	if err != nil {
		return nil, err
	}

	return &Processor{
		sessions: sessions,
		creds:    creds,
		fetch:    fetch,
		notifier: notifier,
		renderer: renderer,
	}, nil
}

// Process runs req and tells the user how it went: a public message on
// success, a private one on failure. The returned error is the command's,
// for logging; the user has already been told about it.
func (p *Processor) Process(ctx context.Context, req command.Request) error {
	l := zerolog.Ctx(ctx)

	result, err := p.run(ctx, req)

	var msg notify.Message
	var rerr error

	if err != nil {
		l.Error().Err(err).Str("text", req.Text).Msg("command failed")
		msg, rerr = p.renderer.Failure(err)
	} else {
		l.Info().Str("text", req.Text).Str("result", result).Msg("command complete")
		msg, rerr = p.renderer.Success(result, req.UserID)
	}

	if rerr != nil {
		l.Error().Stack().Err(rerr).Send()
		return err
	}

	if nerr := p.notifier.Notify(ctx, req.ResponseURL, msg); nerr != nil {
		l.Error().Err(nerr).Msg("failed to notify user")
	}

	return err
}

func (p *Processor) run(ctx context.Context, req command.Request) (string, error) {
	session, err := p.sessions.EstablishSession(ctx, p.creds)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := session.Close(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to sign out")
		}
	}()

	return command.Run(ctx, session, p.fetch, req)
}

// HandleSNS is the Lambda entry point for the topic subscription. Records
// are processed in order, one command each. It always returns nil so that
// nothing is redelivered; records it cannot decode are logged and skipped.
func (p *Processor) HandleSNS(ctx context.Context, event events.SNSEvent) error {
	ctx = logging.WithLambda(ctx)

	for _, record := range event.Records {
		req, err := queue.Decode(record.SNS.Message)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(errors.WithStack(err)).Str("message_id", record.SNS.MessageID).
				Msg("skipping undecodable message")
			continue
		}

		_ = p.Process(logging.WithCommand(ctx, req.ID), req)
	}

	return nil
}
