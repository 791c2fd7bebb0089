package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/fixedpool/pool"
	"github.com/joshuapare/fixedpool/pool/report"
)

func init() {
	rootCmd.AddCommand(newSizeCmd())
}

func newSizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size <pools>",
		Short: "Compute the arena size a pool layout needs",
		Long: `The size command prints where each pool would be placed in the arena
and the total number of bytes the heap provider must supply.

Example:
  poolctl size 16x4,64x2
  poolctl size 8x64,32x16,128x4 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSize(args)
		},
	}
	return cmd
}

func runSize(args []string) error {
	pools, err := pool.ParseDescriptors(args[0])
	if err != nil {
		return err
	}

	if quiet {
		total, err := pool.CalcSize(pools)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, total)
		return nil
	}

	opts := report.DefaultOptions()
	if jsonOut {
		opts.Format = report.FormatJSON
	}
	return report.New(os.Stdout, opts).Layout(pools)
}
