// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Command emojify adds, removes, and aliases custom emoji in a Slack
// workspace, either directly from the command line or as a local slash
// command server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/xdg"

	"github.com/vexingcodes/emojify"
	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/logging"
)

const (
	ConfigDirName  = "emojify"
	ConfigFileName = "config.toml"
)

func main() {
	_ = godotenv.Load() // .env is optional

	os.Exit(run(context.Background(), os.Args, configFile(), os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Results go to
// stdout, failures to stderr.
func run(ctx context.Context, args []string, configFilePath altsrc.StringSourcer, stdout, stderr io.Writer) int {
	cmd := &cli.Command{
		Name:      "emojify",
		Usage:     "manage custom Slack emoji",
		Version:   emojify.Version,
		Flags:     flags(configFilePath),
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Init(cmd.Bool("dev"))
			return log.Logger.WithContext(ctx), nil
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "create an emoji from an image URL",
				ArgsUsage: "<name> <url>",
				Action:    runVerb(command.VerbAdd),
			},
			{
				Name:      "remove",
				Usage:     "delete an emoji",
				ArgsUsage: "<name>",
				Action:    runVerb(command.VerbRemove),
			},
			{
				Name:      "alias",
				Usage:     "make an alias for an existing emoji",
				ArgsUsage: "<target> <alias>",
				Action:    runVerb(command.VerbAlias),
			},
			serveCommand(configFilePath),
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		log.Fatal().Err(err).Caller().Send()
	}
	return altsrc.StringSourcer(path)
}

// runVerb returns the action for one of the emoji subcommands. It signs in,
// runs the command, prints the result, and signs out again.
func runVerb(verb command.Verb) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		req, err := command.New(verb, cmd.Args().Slice())
		if err != nil {
			return err
		}

		creds, err := credentials(cmd)
		if err != nil {
			return err
		}

		session, err := emojify.New().EstablishSession(ctx, creds)
		if err != nil {
			return err
		}

		defer func() {
			if err := session.Close(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to sign out")
			}
		}()

		result, err := command.Run(ctx, session, command.FetchWith(imageClient()), req)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.Root().Writer, result)

		return nil
	}
}
