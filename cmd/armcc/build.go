package main

import (
	"fmt"

	"github.com/armccomp/armcc/internal/diag"
	"github.com/armccomp/armcc/internal/mc"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <input.json>",
		Short: "lower a translation unit to ARM-family MC and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				diag.ReportErr(cmd.ErrOrStderr(), err)
				return err
			}
			asm, err := mc.NewBuilder().BuildModule(m)
			if err != nil {
				diag.ReportErr(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), mc.Print(asm))
			return nil
		},
	}
}
