// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Command emojify-process is the Lambda function subscribed to the command
// topic. It signs in to Slack, runs each command, and reports back.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/rs/zerolog/log"

	"github.com/vexingcodes/emojify"
	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/config"
	"github.com/vexingcodes/emojify/internal/logging"
	"github.com/vexingcodes/emojify/internal/notify"
	"github.com/vexingcodes/emojify/internal/process"
)

func main() {
	dev, err := config.DevMode()
	logging.Init(dev)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	creds, err := config.Credentials(ctx, config.NewSecretsManagerGetter(secretsmanager.NewFromConfig(awsCfg)))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load Slack credentials")
	}

	processor, err := process.NewProcessor(
		emojify.New(),
		creds,
		command.FetchWith(&http.Client{Timeout: 30 * time.Second}),
		notify.NewWebhookNotifier(nil),
	)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	lambda.Start(processor.HandleSNS)
}
