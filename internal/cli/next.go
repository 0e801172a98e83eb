package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hray3182/nudge/internal/recurrence"
)

type nextOptions struct {
	rule   string
	anchor string
	ref    string
	count  int
}

// NextResult is the json output of the next command.
type NextResult struct {
	Rule        string      `json:"rule"`
	Description string      `json:"description"`
	RRule       string      `json:"rrule,omitempty"`
	Occurrences []time.Time `json:"occurrences"`
	Fallback    bool        `json:"fallback"`
}

func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &nextOptions{}

	cmd := &cobra.Command{
		Use:   "next",
		Short: "List the next fire times of a rule",
		Long: `List the next fire times of a rule after a reference time.

The anchor is the reminder's original due time. It supplies the time of
day, weekday and interval phase the rule keeps.`,
		Example:       "  recur next --rule weekly/2:mon,fri --anchor 2024-01-01T07:30 -n 4",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(rootOpts, opts, cmd.OutOrStdout(), time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.rule, "rule", "", "rule shorthand, e.g. daily/3 or monthly:31")
	cmd.Flags().StringVar(&opts.anchor, "anchor", "", "anchor time")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "reference time (default now)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 5, "number of occurrences")
	_ = cmd.MarkFlagRequired("rule")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}

func runNext(rootOpts *RootOptions, opts *nextOptions, w io.Writer, now time.Time) error {
	if opts.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", opts.count)
	}
	loc, err := time.LoadLocation(rootOpts.Timezone)
	if err != nil {
		return err
	}
	rule, err := recurrence.ParseShorthand(opts.rule)
	if err != nil {
		return err
	}
	anchor, err := parseTime(opts.anchor, loc)
	if err != nil {
		return fmt.Errorf("anchor: %w", err)
	}
	ref := now.In(loc)
	if opts.ref != "" {
		if ref, err = parseTime(opts.ref, loc); err != nil {
			return fmt.Errorf("ref: %w", err)
		}
	}

	result := NextResult{
		Rule:        recurrence.Shorthand(rule),
		Description: recurrence.Describe(rule, anchor),
		Occurrences: []time.Time{},
	}
	if recurrence.IsRecurring(rule) {
		if result.RRule, err = recurrence.RRuleString(rule); err != nil {
			return err
		}
		first := recurrence.NextFireAt(rule, anchor, ref)
		if first.Fallback {
			result.Fallback = true
			result.Occurrences = append(result.Occurrences, first.At)
		} else {
			result.Occurrences = recurrence.Upcoming(rule, anchor, ref, opts.count)
		}
	}

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(w, result.Description)
	if result.RRule != "" {
		fmt.Fprintln(w, "RRULE:"+result.RRule)
	}
	if len(result.Occurrences) == 0 {
		fmt.Fprintln(w, "no further occurrences")
	}
	for _, t := range result.Occurrences {
		fmt.Fprintln(w, t.Format(time.RFC3339))
	}
	if result.Fallback {
		fmt.Fprintln(w, "warning: no match within the search bound, showing the fallback time")
	}
	return nil
}
