// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package logging sets up zerolog for the emojify binaries.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Init initializes the global logger. Dev mode logs human-readable lines to
// stdout, otherwise JSON goes to stderr.
func Init(devMode bool) {
	InitWriter(devMode, nil)
}

// InitWriter is Init with the output overridden, when w isn't nil.
func InitWriter(devMode bool, w io.Writer) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if !devMode {
		if w == nil {
			w = os.Stderr
		}

		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()
		zerolog.DefaultContextLogger = &log.Logger
		return
	}

	if w == nil {
		w = os.Stdout
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05.000",
	}).With().Caller().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// WithLambda returns ctx carrying a logger tagged with the invocation's
// request ID, when ctx belongs to a Lambda invocation.
func WithLambda(ctx context.Context) context.Context {
	l := log.Logger.With()

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		l = l.Str("request_id", lc.AwsRequestID)
	}

	if len(lambdacontext.FunctionName) > 0 {
		l = l.Str("function", lambdacontext.FunctionName)
	}

	return l.Logger().WithContext(ctx)
}

// WithCommand returns ctx carrying a logger tagged with a command ID.
func WithCommand(ctx context.Context, id string) context.Context {
	return zerolog.Ctx(ctx).With().Str("command_id", id).Logger().WithContext(ctx)
}
