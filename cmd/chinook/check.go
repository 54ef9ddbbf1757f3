package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/chinook/config"
	"github.com/syssam/chinook/dialect/sql/schema"
)

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the store has the tables and columns chinook reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			drv, err := openStore(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer drv.Close()
			res, err := schema.Check(cmd.Context(), drv, schema.Chinook)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return res.Err()
		},
	}
}
