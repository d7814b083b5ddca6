package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lblreport/pkg/contracts"
)

func newVersionCmd(stdout io.Writer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				fmt.Fprintln(stdout, contracts.GetFullVersionString())
				return nil
			}
			out, err := json.MarshalIndent(contracts.GetVersionInfo(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	return cmd
}
