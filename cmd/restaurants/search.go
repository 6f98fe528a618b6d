package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/JonMunkholm/restaurants/internal/schema"
	"github.com/spf13/cobra"
)

type searchOutput struct {
	Outcome string            `json:"outcome"`
	Query   core.Query        `json:"query"`
	Results []core.Record     `json:"results"`
	Count   int               `json:"count"`
	Reason  core.EmptyReason  `json:"reason,omitempty"`
	Message *core.UserMessage `json:"message,omitempty"`
}

func newSearchCmd(o *cliOptions) *cobra.Command {
	var (
		q      core.Query
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find restaurants by cuisine and/or location",
		Long: `Search loads the dataset and prints matching restaurants, best rated first.

Both terms are case-insensitive substrings; given together, a restaurant must
match both. With neither term nothing is searched.

Example:
  restaurants search --cuisine italian
  restaurants search --cuisine pizza --location "connaught place" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := o.load(cmd.Context())
			res := core.Search(snap, q)
			if res.Outcome == core.OutcomeError {
				return core.NewUserError(res.Err)
			}

			if asJSON {
				return writeSearchJSON(cmd.OutOrStdout(), res)
			}
			if res.Outcome == core.OutcomeEmpty {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message.String())
				return nil
			}
			return writeSearchTable(cmd.OutOrStdout(), res.Records)
		},
	}

	cmd.Flags().StringVar(&q.Cuisine, "cuisine", "", "cuisine substring, e.g. Italian")
	cmd.Flags().StringVar(&q.Location, "location", "", "locality substring, e.g. Saket")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func writeSearchJSON(w io.Writer, res core.Result) error {
	out := searchOutput{
		Outcome: res.Outcome.String(),
		Query:   res.Query,
		Results: res.Records,
		Count:   len(res.Records),
	}
	if out.Results == nil {
		out.Results = []core.Record{}
	}
	if res.Outcome == core.OutcomeEmpty {
		msg := res.Message
		out.Reason = res.Reason
		out.Message = &msg
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeSearchTable(w io.Writer, records []core.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, spec := range schema.RestaurantFieldSpecs {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, spec.Label)
	}
	fmt.Fprintln(tw)

	for _, r := range records {
		for i, v := range r.Values() {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d restaurant(s) found\n", len(records))
	return err
}

// formatValue prints ratings with one decimal and everything else as is.
func formatValue(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return fmt.Sprint(v)
}
