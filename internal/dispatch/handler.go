// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/vexingcodes/emojify/internal/logging"
)

// errBadSignature is returned by ParseRequest when a signing secret is set and
// the request signature does not check out.
var errBadSignature = errors.New("request signature verification failed")

// ParseRequest turns a raw slash command request into a slack.SlashCommand.
// With a signing secret, the X-Slack-Signature header must match body.
func ParseRequest(header http.Header, body []byte, signingSecret string) (slack.SlashCommand, error) {
	if len(signingSecret) > 0 {
		sv, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			return slack.SlashCommand{}, errors.Wrap(errBadSignature, err.Error())
		}

		if _, err := sv.Write(body); err != nil {
			return slack.SlashCommand{}, errors.Wrap(err, "error hashing request body")
		}

		if err := sv.Ensure(); err != nil {
			return slack.SlashCommand{}, errors.Wrap(errBadSignature, err.Error())
		}
	}

	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return slack.SlashCommand{}, errors.Wrap(err, "error building request")
	}

	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	cmd, err := slack.SlashCommandParse(r)
	return cmd, errors.Wrap(err, "error parsing slash command")
}

// handle is what both transports share: parse, then hand off to the service.
func (s *Service) handle(ctx context.Context, header http.Header, body []byte) Response {
	cmd, err := ParseRequest(header, body, s.signingSecret)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("rejected slash command request")

		if errors.Is(err, errBadSignature) {
			return Response{StatusCode: http.StatusForbidden}
		}

		return Response{StatusCode: http.StatusBadRequest}
	}

	return s.Handle(ctx, cmd)
}

type slashCommandHandler struct {
	service *Service
}

// NewHandler returns an http.Handler for slash command requests.
func NewHandler(service *Service) http.Handler {
	return &slashCommandHandler{service: service}
}

func (h *slashCommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := h.service.handle(r.Context(), r.Header, body)

	if resp.Body != nil {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body) // nolint: errcheck
}

// HandleAPIGateway is the Lambda entry point behind an API Gateway proxy
// integration.
func (s *Service) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = logging.WithLambda(ctx)

	body := []byte(req.Body)

	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("undecodable request body")
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		}
		body = decoded
	}

	header := http.Header{}
	for k, v := range req.Headers {
		header.Set(k, v)
	}
	for k, vals := range req.MultiValueHeaders {
		header.Del(k)
		for _, v := range vals {
			header.Add(k, v)
		}
	}

	resp := s.handle(ctx, header, body)

	out := events.APIGatewayProxyResponse{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	if resp.Body != nil {
		out.Headers = map[string]string{"Content-Type": "application/json"}
	}

	return out, nil
}
