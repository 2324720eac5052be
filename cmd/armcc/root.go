package main

import (
	"github.com/armccomp/armcc/internal/config"
	"github.com/armccomp/armcc/internal/diag"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "armcc",
		Short:         "ARM-family C-subset compiler backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			diag.SetVerbose(verbose || cfg.Verbose)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "armcc.yaml", "project configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newEmitIRCmd())
	return root
}
