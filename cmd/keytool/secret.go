package main

import (
	"errors"

	"github.com/spf13/cobra"

	"winsbygroup.com/keyserver/internal/config"
)

var errNoSecret = errors.New("no secret: pass --secret, set SECRET_KEY or add secret_key to the config file")

// SecretOptions resolves the signing secret the same way the server does,
// with an explicit flag taking precedence.
type SecretOptions struct {
	Secret string
	Config string
}

func (o *SecretOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Secret, "secret", "", "Signing secret (defaults to SECRET_KEY or the config file)")
	cmd.Flags().StringVar(&o.Config, "config", "config.yaml", "Path to the keyserver config file")
}

func (o *SecretOptions) resolve() (string, error) {
	if o.Secret != "" {
		return o.Secret, nil
	}
	cfg, err := config.Load(o.Config)
	if err != nil {
		return "", err
	}
	if cfg.SecretKey == "" {
		return "", errNoSecret
	}
	return cfg.SecretKey, nil
}
