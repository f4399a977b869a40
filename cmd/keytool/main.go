package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	command := NewKeytoolCommand()
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewKeytoolCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "keytool [command]",
		Short:         "Offline license key utilities",
		Long:          "Derive, inspect and check license keys without a running keyserver.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewDeriveCommand())
	cmd.AddCommand(NewInspectCommand())
	cmd.AddCommand(NewNormalizeCommand())

	return cmd
}
