// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Command emojify-dispatch is the Lambda function behind the slash command's
// API Gateway endpoint. It acknowledges each command and publishes it to the
// SNS topic that emojify-process subscribes to.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/vexingcodes/emojify/internal/config"
	"github.com/vexingcodes/emojify/internal/dispatch"
	"github.com/vexingcodes/emojify/internal/logging"
	"github.com/vexingcodes/emojify/internal/queue"
)

func main() {
	dev, err := config.DevMode()
	logging.Init(dev)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	cfg, err := config.DispatchFromEnv(true)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	service, err := dispatch.NewService(cfg, queue.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.TopicARN))
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	lambda.Start(service.HandleAPIGateway)
}
