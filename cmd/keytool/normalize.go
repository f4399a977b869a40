package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"winsbygroup.com/keyserver/internal/keycodec"
)

func NewNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize HWID...",
		Short: "Print hardware ids as they are signed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, hw := range args {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), keycodec.NormalizeHardwareID(hw)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
