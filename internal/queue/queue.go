// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package queue hands commands from the dispatch handler to the processing
// handler. In AWS that is an SNS topic; locally it is a Go channel.
package queue

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/vexingcodes/emojify/internal/command"
)

// Publisher forwards a command for processing.
type Publisher interface {
	Publish(ctx context.Context, req command.Request) error
}

// snsAPI is the part of *sns.Client we use.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes commands to an SNS topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

// NewSNSPublisher returns a Publisher for the topic. client is usually an
// *sns.Client.
func NewSNSPublisher(client snsAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// Publish sends req to the topic.
func (p *SNSPublisher) Publish(ctx context.Context, req command.Request) error {
	msg, err := Encode(req)
	if err != nil {
		return err
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn:         aws.String(p.topicARN),
		Message:          aws.String(msg),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return errors.Wrapf(err, "error publishing to %s", p.topicARN)
	}

	zerolog.Ctx(ctx).Debug().Str("message_id", aws.ToString(out.MessageId)).
		Str("command_id", req.ID).Msg("published command")

	return nil
}

// Encode returns the SNS message for req. With a "json" message structure
// every protocol gets the "default" entry, which is the request itself.
func Encode(req command.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "error encoding command")
	}

	msg, err := json.Marshal(map[string]string{"default": string(body)})
	if err != nil {
		return "", errors.Wrap(err, "error encoding message")
	}

	return string(msg), nil
}

// Decode parses the message a subscriber receives, which is the "default"
// entry Encode produced.
func Decode(message string) (command.Request, error) {
	var req command.Request

	if err := json.Unmarshal([]byte(message), &req); err != nil {
		return command.Request{}, errors.Wrap(err, "error decoding command")
	}

	return req, nil
}
