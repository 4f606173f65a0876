// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

// Package config populates the handlers' configuration from the environment.
package config

import (
	"context"
	"encoding/json"
	"os"

	libOS "github.com/brigadecore/brigade-foundations/os"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/vexingcodes/emojify"
)

// Environment variable names.
const (
	EnvSlackToken    = "EMOJIFY_SLACK_TOKEN"
	EnvSigningSecret = "EMOJIFY_SLACK_SIGNING_SECRET"
	EnvSNSTopic      = "EMOJIFY_SNS_TOPIC"
	EnvTeamName      = "EMOJIFY_TEAM_NAME"
	EnvEmail         = "EMOJIFY_EMAIL"
	EnvPassword      = "EMOJIFY_PASSWORD"
	EnvSecretName    = "EMOJIFY_SECRET_NAME"
	EnvDev           = "EMOJIFY_DEV"
	EnvPort          = "PORT"
)

// Dispatch configures the dispatch handler.
type Dispatch struct {
	// Token is the verification token Slack sends with every slash command.
	Token string

	// SigningSecret, when set, also requires a valid request signature.
	SigningSecret string

	// TopicARN is where accepted commands are published.
	TopicARN string
}

// DispatchFromEnv reads the dispatch configuration. A missing topic is only an
// error when requireTopic is set; the local server has no topic.
func DispatchFromEnv(requireTopic bool) (Dispatch, error) {
	var (
		cfg    Dispatch
		result *multierror.Error
		err    error
	)

	if cfg.Token, err = libOS.GetRequiredEnvVar(EnvSlackToken); err != nil {
		result = multierror.Append(result, err)
	}

	if requireTopic {
		if cfg.TopicARN, err = libOS.GetRequiredEnvVar(EnvSNSTopic); err != nil {
			result = multierror.Append(result, err)
		}
	}

	cfg.SigningSecret = os.Getenv(EnvSigningSecret)

	return cfg, result.ErrorOrNil()
}

// DevMode reports whether EMOJIFY_DEV asks for human-readable logs.
func DevMode() (bool, error) {
	return libOS.GetBoolFromEnvVar(EnvDev, false)
}

// Port is the local server's listening port.
func Port() (int, error) {
	return libOS.GetIntFromEnvVar(EnvPort, 8080)
}

// CredentialsFromEnv reads the Slack sign in credentials, reporting every
// missing variable at once.
func CredentialsFromEnv() (emojify.Credentials, error) {
	var (
		creds  emojify.Credentials
		result *multierror.Error
		err    error
	)

	if creds.TeamName, err = libOS.GetRequiredEnvVar(EnvTeamName); err != nil {
		result = multierror.Append(result, err)
	}

	if creds.Email, err = libOS.GetRequiredEnvVar(EnvEmail); err != nil {
		result = multierror.Append(result, err)
	}

	if creds.Password, err = libOS.GetRequiredEnvVar(EnvPassword); err != nil {
		result = multierror.Append(result, err)
	}

	return creds, result.ErrorOrNil()
}

// SecretGetter fetches a secret's string value by name. See
// NewSecretsManagerGetter.
type SecretGetter func(ctx context.Context, name string) (string, error)

// secretCredentials is the JSON layout of the credentials secret; the keys
// match the environment variables.
type secretCredentials struct {
	TeamName string `json:"EMOJIFY_TEAM_NAME"`
	Email    string `json:"EMOJIFY_EMAIL"`
	Password string `json:"EMOJIFY_PASSWORD"`
}

// Credentials reads the credentials from the secret named by
// EMOJIFY_SECRET_NAME when that is set, and from the environment otherwise.
func Credentials(ctx context.Context, get SecretGetter) (emojify.Credentials, error) {
	name := os.Getenv(EnvSecretName)
	if len(name) == 0 {
		return CredentialsFromEnv()
	}

	return CredentialsFromSecret(ctx, get, name)
}

// CredentialsFromSecret reads the credentials from the JSON secret name.
func CredentialsFromSecret(ctx context.Context, get SecretGetter, name string) (emojify.Credentials, error) {
	value, err := get(ctx, name)
	if err != nil {
		return emojify.Credentials{}, errors.Wrapf(err, "error reading secret %s", name)
	}

	var sc secretCredentials

	if err := json.Unmarshal([]byte(value), &sc); err != nil {
		return emojify.Credentials{}, errors.Wrapf(err, "error parsing secret %s", name)
	}

	var result *multierror.Error

	for _, kv := range []struct{ key, val string }{
		{EnvTeamName, sc.TeamName},
		{EnvEmail, sc.Email},
		{EnvPassword, sc.Password},
	} {
		if len(kv.val) == 0 {
			result = multierror.Append(result, errors.Errorf("secret %s has no value for key %s", name, kv.key))
		}
	}

	creds := emojify.Credentials{TeamName: sc.TeamName, Email: sc.Email, Password: sc.Password}

	return creds, result.ErrorOrNil()
}
