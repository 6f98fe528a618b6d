package main

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/spf13/cobra"
)

func newCheckCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the dataset and report whether it is usable",
		Long: `Check loads the dataset exactly as the server would at startup and prints
the detected encoding, row count and columns. A dataset that cannot be
served exits non-zero with the same message the web page would show.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := o.load(cmd.Context())
			if !snap.Usable() {
				return core.NewUserError(snap.Err)
			}

			t := snap.Table
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s\n", t.Source())
			fmt.Fprintf(out, "encoding: %s\n", t.Encoding())
			fmt.Fprintf(out, "rows:     %d\n", t.Len())
			fmt.Fprintf(out, "bytes:    %d\n", t.Bytes())
			fmt.Fprintf(out, "columns:  %s\n", strings.Join(t.Columns(), ", "))
			fmt.Fprintf(out, "load id:  %s\n", t.LoadID())
			return nil
		},
	}
}
