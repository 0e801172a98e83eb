package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hray3182/nudge/internal/recurrence"
)

func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	var anchor string

	cmd := &cobra.Command{
		Use:           "describe <rule>",
		Short:         "Show a rule in English, stored form and RRULE",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], anchor, cmd.OutOrStdout(), time.Now())
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", "", "anchor time (default now)")

	return cmd
}

func runDescribe(rootOpts *RootOptions, shorthand, anchorFlag string, w io.Writer, now time.Time) error {
	loc, err := time.LoadLocation(rootOpts.Timezone)
	if err != nil {
		return err
	}
	rule, err := recurrence.ParseShorthand(shorthand)
	if err != nil {
		return err
	}
	anchor := now.In(loc)
	if anchorFlag != "" {
		if anchor, err = parseTime(anchorFlag, loc); err != nil {
			return fmt.Errorf("anchor: %w", err)
		}
	}

	record := recurrence.ToRecord(rule)
	var rrule string
	if recurrence.IsRecurring(rule) {
		if rrule, err = recurrence.RRuleString(rule); err != nil {
			return err
		}
	}

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Description string            `json:"description"`
			Record      recurrence.Record `json:"record"`
			RRule       string            `json:"rrule,omitempty"`
		}{recurrence.Describe(rule, anchor), record, rrule})
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, recurrence.Describe(rule, anchor))
	fmt.Fprintln(w, string(data))
	if rrule != "" {
		fmt.Fprintln(w, "RRULE:"+rrule)
	}
	return nil
}
