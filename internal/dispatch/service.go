// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package dispatch is the first of the two emojify handlers. It checks that a
// slash command really came from Slack, acknowledges it within Slack's
// response deadline, and forwards it to the processing handler.
package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/config"
	"github.com/vexingcodes/emojify/internal/logging"
	"github.com/vexingcodes/emojify/internal/notify"
	"github.com/vexingcodes/emojify/internal/queue"
)

// publishTimeout bounds the forward so the acknowledgment still makes Slack's
// three second deadline.
const publishTimeout = 2 * time.Second

// Response is what goes back to Slack. A nil Body means no message at all.
type Response struct {
	StatusCode int
	Body       []byte
}

// Service handles slash commands independent of how they arrived.
type Service struct {
	token         string
	signingSecret string
	publisher     queue.Publisher
	renderer      *notify.Renderer
	newID         func() string

	publishTimeout time.Duration
}

// NewService returns a Service that forwards accepted commands to publisher.
func NewService(cfg config.Dispatch, publisher queue.Publisher) (*Service, error) {
	if len(cfg.Token) == 0 {
		return nil, errors.New("a verification token is required")
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		return nil, err
	}

	return &Service{
		token:         cfg.Token,
		signingSecret: cfg.SigningSecret,
		publisher:     publisher,
		renderer:      renderer,
		newID:         shortuuid.New,

		publishTimeout: publishTimeout,
	}, nil
}

// Handle validates, acknowledges, and forwards cmd.
func (s *Service) Handle(ctx context.Context, cmd slack.SlashCommand) Response {
	l := zerolog.Ctx(ctx).With().Str("user_id", cmd.UserID).Str("channel_id", cmd.ChannelID).Logger()

	if !cmd.ValidateToken(s.token) {
		l.Warn().Str("team_id", cmd.TeamID).Msg("rejected slash command with bad verification token")
		return Response{StatusCode: http.StatusUnauthorized}
	}

	text := strings.TrimSpace(cmd.Text)

	if len(text) == 0 {
		msg, err := s.renderer.Usage(command.Usage)
		return s.reply(l, msg, err)
	}

	req, err := command.Parse(text)
	if err != nil {
		l.Info().Err(err).Str("text", text).Msg("rejected ill-formed command")
		msg, rerr := s.renderer.Failure(err)
		return s.reply(l, msg, rerr)
	}

	req.ID = s.newID()
	req.UserID = cmd.UserID
	req.ChannelID = cmd.ChannelID
	req.ResponseURL = cmd.ResponseURL

	ctx = logging.WithCommand(l.WithContext(ctx), req.ID)

	// the acknowledgment goes out whether or not the publish worked; the
	// user hears nothing more in that case
	if err := s.publish(ctx, req); err != nil {
		zerolog.Ctx(ctx).Error().Stack().Err(err).Msg("failed to forward command")
	} else {
		zerolog.Ctx(ctx).Info().Str("text", text).Msg("forwarded command")
	}

	msg, err := s.renderer.Ack(text)
	return s.reply(l, msg, err)
}

func (s *Service) publish(ctx context.Context, req command.Request) error {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	return s.publisher.Publish(ctx, req)
}

func (s *Service) reply(l zerolog.Logger, msg notify.Message, err error) Response {
	if err != nil {
		l.Error().Stack().Err(err).Send()
		return Response{StatusCode: http.StatusInternalServerError, Body: []byte(`{"status": "internal server error"}`)}
	}

	body, err := json.Marshal(&slack.WebhookMessage{ResponseType: msg.ResponseType(), Text: msg.Text})
	if err != nil {
		l.Error().Stack().Err(err).Send()
		return Response{StatusCode: http.StatusInternalServerError, Body: []byte(`{"status": "internal server error"}`)}
	}

	return Response{StatusCode: http.StatusOK, Body: body}
}
