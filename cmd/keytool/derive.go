package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"winsbygroup.com/keyserver/internal/keycodec"
)

type DeriveOptions struct {
	SecretOptions
	HWID   string
	Expiry string
	Days   int

	now func() time.Time
}

func NewDeriveCommand() *cobra.Command {
	opts := &DeriveOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Compute the key for a hardware id and expiry",
		Long: `Compute the license key the server would issue for a hardware id.
The expiry is either an explicit date (--expiry YYYY-MM-DD) or a number of days from today (--days).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Run(cmd.OutOrStdout())
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.HWID, "hwid", "", "Hardware id to bind the key to")
	cmd.Flags().StringVar(&opts.Expiry, "expiry", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "Days from today until expiry")

	_ = cmd.MarkFlagRequired("hwid")
	cmd.MarkFlagsMutuallyExclusive("expiry", "days")
	cmd.MarkFlagsOneRequired("expiry", "days")

	return cmd
}

func (o *DeriveOptions) Run(out io.Writer) error {
	secret, err := o.resolve()
	if err != nil {
		return err
	}

	expiry, err := o.expiry()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, keycodec.New(secret).DeriveKey(o.HWID, expiry))
	return err
}

func (o *DeriveOptions) expiry() (time.Time, error) {
	if o.Expiry != "" {
		t, err := time.Parse("2006-01-02", o.Expiry)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --expiry %q: want YYYY-MM-DD", o.Expiry)
		}
		return t, nil
	}
	if o.Days < 0 {
		return time.Time{}, errors.New("--days must not be negative")
	}
	now := o.now()
	return time.Date(now.Year(), now.Month(), now.Day()+o.Days, 0, 0, 0, 0, now.Location()), nil
}
