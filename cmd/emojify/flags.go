// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package main

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/vexingcodes/emojify"
	"github.com/vexingcodes/emojify/internal/config"
)

const imageTimeout = 30 * time.Second

// flags are shared by every subcommand. They can also be set using
// environment variables and the application's configuration file.
func flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "dev",
			Usage:   "human-readable logging, unsafe for production",
			Sources: cli.EnvVars(config.EnvDev),
		},
		&cli.StringFlag{
			Name:  "team",
			Usage: "Slack workspace name, as in <team>.slack.com",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(config.EnvTeamName),
				toml.TOML("slack.team_name", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "email",
			Usage: "email address of the Slack account to sign in as",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(config.EnvEmail),
				toml.TOML("slack.email", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "password of the Slack account to sign in as",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(config.EnvPassword),
				toml.TOML("slack.password", configFilePath),
			),
		},
	}
}

func credentials(cmd *cli.Command) (emojify.Credentials, error) {
	creds := emojify.Credentials{
		TeamName: cmd.String("team"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	var merr *multierror.Error

	if len(creds.TeamName) == 0 {
		merr = multierror.Append(merr, errors.New("--team is required"))
	}

	if len(creds.Email) == 0 {
		merr = multierror.Append(merr, errors.New("--email is required"))
	}

	if len(creds.Password) == 0 {
		merr = multierror.Append(merr, errors.New("--password is required"))
	}

	return creds, merr.ErrorOrNil()
}

// imageClient downloads emoji source images. Unlike the session client it
// follows redirects.
func imageClient() *http.Client {
	return &http.Client{Timeout: imageTimeout}
}
