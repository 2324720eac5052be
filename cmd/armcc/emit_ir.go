package main

import (
	"fmt"

	"github.com/armccomp/armcc/internal/diag"
	"github.com/armccomp/armcc/internal/ir"
	"github.com/spf13/cobra"
)

func newEmitIRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit-ir <input.json>",
		Short: "lower a translation unit to pre-SSA IR and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				diag.ReportErr(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ir.Print(m))
			return nil
		},
	}
}
