// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package notify reports command outcomes back to Slack through a slash
// command's response URL.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	responseTypeInChannel = "in_channel"
	responseTypeEphemeral = "ephemeral"
)

// Message is one reply. Public messages are visible to the whole channel,
// the rest only to the user who ran the command.
type Message struct {
	Text   string
	Public bool
}

// ResponseType is the Slack response_type for m.
func (m Message) ResponseType() string {
	if m.Public {
		return responseTypeInChannel
	}
	return responseTypeEphemeral
}

// Notifier delivers a Message to a response URL.
type Notifier interface {
	Notify(ctx context.Context, responseURL string, msg Message) error
}

type webhookNotifier struct {
	client *http.Client
}

// NewWebhookNotifier returns a Notifier that POSTs to the response URL with
// client, or a client with a short timeout when client is nil.
func NewWebhookNotifier(client *http.Client) Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &webhookNotifier{client: client}
}

func (w *webhookNotifier) Notify(ctx context.Context, responseURL string, msg Message) error {
	if len(responseURL) == 0 {
		return errors.New("no response URL to notify")
	}

	err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, w.client, &slack.WebhookMessage{
		Text:         msg.Text,
		ResponseType: msg.ResponseType(),
	})

	return errors.Wrap(err, "error posting to response URL")
}
