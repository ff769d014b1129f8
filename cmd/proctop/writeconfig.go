//go:build linux

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newWriteConfigCmd(o *opts) *cobra.Command {
	return &cobra.Command{
		Use:   "write-config",
		Short: "Save the effective settings, flags included, to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.configPath == "" {
				return errors.New("no config path; pass --config")
			}
			cfg, err := load(cmd, *o)
			if err != nil {
				return err
			}
			if err := cfg.Save(o.configPath); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.configPath)
			return nil
		},
	}
}
