package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"winsbygroup.com/keyserver/internal/keycodec"
)

type InspectOptions struct {
	SecretOptions
	HWID string
}

func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect KEY",
		Short: "Show the parts of a key and optionally check it",
		Long: `Print the expiry and signature embedded in a key.
With --hwid the key is recomputed and compared, which needs the signing secret.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Run(cmd.OutOrStdout(), args[0])
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.HWID, "hwid", "", "Hardware id to check the key against")

	return cmd
}

// errNoMatch makes the command exit non-zero when the check fails.
var errNoMatch = errors.New("key does not match hardware id")

func (o *InspectOptions) Run(out io.Writer, key string) error {
	parsed, err := keycodec.ParseKey(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Expiry:    %s\n", parsed.Expiry.Format("2006-01-02"))
	fmt.Fprintf(out, "Signature: %s\n", parsed.Signature)

	if o.HWID == "" {
		return nil
	}

	secret, err := o.resolve()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "HWID:      %s (normalized %s)\n", o.HWID, keycodec.NormalizeHardwareID(o.HWID))
	if !keycodec.New(secret).Matches(key, o.HWID) {
		fmt.Fprintln(out, "Match:     no")
		return errNoMatch
	}
	fmt.Fprintln(out, "Match:     yes")
	return nil
}
