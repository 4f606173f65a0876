// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package main

import (
	"context"
	"net/http"

	libHTTP "github.com/brigadecore/brigade-foundations/http"
	"github.com/brigadecore/brigade-foundations/signals"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/vexingcodes/emojify"
	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/config"
	"github.com/vexingcodes/emojify/internal/dispatch"
	"github.com/vexingcodes/emojify/internal/logging"
	"github.com/vexingcodes/emojify/internal/notify"
	"github.com/vexingcodes/emojify/internal/process"
	"github.com/vexingcodes/emojify/internal/queue"
)

const queueSize = 64

func serveCommand(configFilePath altsrc.StringSourcer) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run both slash command handlers in one local HTTP server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "local port to listen on",
				Value: 8080,
				Sources: cli.NewValueSourceChain(
					cli.EnvVar(config.EnvPort),
					toml.TOML("server.port", configFilePath),
				),
			},
			&cli.StringFlag{
				Name:  "slack-token",
				Usage: "slash command verification token",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar(config.EnvSlackToken),
					toml.TOML("slack.verification_token", configFilePath),
				),
			},
			&cli.StringFlag{
				Name:  "signing-secret",
				Usage: "Slack app signing secret, checked when set",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar(config.EnvSigningSecret),
					toml.TOML("slack.signing_secret", configFilePath),
				),
			},
		},
		Action: serve,
	}
}

func serve(_ context.Context, cmd *cli.Command) error {
	creds, err := credentials(cmd)
	if err != nil {
		return err
	}

	channel := queue.NewChannel(queueSize)

	service, err := dispatch.NewService(config.Dispatch{
		Token:         cmd.String("slack-token"),
		SigningSecret: cmd.String("signing-secret"),
	}, channel)
	if err != nil {
		return errors.Wrap(err, "--slack-token")
	}

	processor, err := process.NewProcessor(
		emojify.New(),
		creds,
		command.FetchWith(imageClient()),
		notify.NewWebhookNotifier(nil),
	)
	if err != nil {
		return err
	}

	ctx := log.Logger.WithContext(signals.Context())

	go func() {
		err := channel.Consume(ctx, func(ctx context.Context, req command.Request) {
			_ = processor.Process(logging.WithCommand(ctx, req.ID), req)
		})
		log.Debug().Err(err).Msg("stopped processing commands")
	}()

	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Handle("/slash-commands", dispatch.NewHandler(service)).Methods(http.MethodPost)
	router.HandleFunc("/healthz", libHTTP.Healthz).Methods(http.MethodGet)

	port := cmd.Int("port")
	server := libHTTP.NewServer(router, &libHTTP.ServerConfig{Port: port})

	log.Info().Int("port", port).Msg("listening for slash commands")

	return server.ListenAndServe(ctx)
}
