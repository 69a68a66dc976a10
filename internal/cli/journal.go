package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/busgen/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database  string
	Interface string // optional - filter to one interface
	Member    string // optional - filter to one member
	Handle    string // optional - filter to one handle
	Limit     int
	Summary   bool
}

// JournalResult holds the journal output.
type JournalResult struct {
	Calls   []store.Call          `json:"calls,omitempty"`
	Summary []store.MemberSummary `json:"summary,omitempty"`
	Stats   JournalStats          `json:"stats"`
}

// JournalStats holds summary statistics for the listed calls.
type JournalStats struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded proxy calls",
		Long: `List the handle operations recorded by a journaling connection.

Every open, call, property access, introspection and close that went
through the journal is stored with its arguments, outcome and duration.

Examples:
  busgen journal --db ./calls.db
  busgen journal --db ./calls.db --member DoThis --limit 20
  busgen journal --db ./calls.db --summary --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Interface, "interface", "", "filter to one interface name")
	cmd.Flags().StringVar(&opts.Member, "member", "", "filter to one wire member name")
	cmd.Flags().StringVar(&opts.Handle, "handle", "", "filter to one handle ID")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of calls to list (0 = all)")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print per-member counts instead of calls")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	var result JournalResult
	if opts.Summary {
		summary, err := st.Summarize(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to summarize journal", err)
		}
		result.Summary = summary
		for _, m := range summary {
			result.Stats.Total += m.Calls
			result.Stats.Failed += m.Errors
		}
	} else {
		calls, err := st.ReadCalls(ctx, store.Filter{
			Interface: opts.Interface,
			Member:    opts.Member,
			HandleID:  opts.Handle,
			Limit:     opts.Limit,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		result.Calls = calls
		result.Stats.Total = len(calls)
		for _, c := range calls {
			if c.Error != "" {
				result.Stats.Failed++
			}
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Summary {
		outputJournalSummary(w, result)
		return nil
	}
	if len(result.Calls) == 0 {
		fmt.Fprintln(w, "No calls recorded")
		return nil
	}
	for _, c := range result.Calls {
		formatJournalCall(w, c, opts.Verbose)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d call(s), %d failed\n", result.Stats.Total, result.Stats.Failed)
	return nil
}

// formatJournalCall formats a single journal entry for text output.
func formatJournalCall(w io.Writer, c store.Call, verbose bool) {
	target := c.Interface
	if c.Member != "" {
		target += "." + c.Member
	}

	status := "ok"
	if c.Error != "" {
		status = "error: " + c.Error
	}

	fmt.Fprintf(w, "  [%d] %-10s %s %s (%s)\n", c.Seq, strings.ToUpper(c.Op), target, formatValues(c.Args), status)
	if verbose {
		fmt.Fprintf(w, "       handle %s on %s %s, %s\n", truncateID(c.HandleID), c.Destination, c.Path, c.Duration)
	}
}

// outputJournalSummary prints per-member counts.
func outputJournalSummary(w io.Writer, result JournalResult) {
	if len(result.Summary) == 0 {
		fmt.Fprintln(w, "No calls recorded")
		return
	}
	for _, m := range result.Summary {
		target := m.Interface
		if m.Member != "" {
			target += "." + m.Member
		}
		fmt.Fprintf(w, "  %-10s %s: %d call(s), %d failed\n", m.Op, target, m.Calls, m.Errors)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d call(s), %d failed\n", result.Stats.Total, result.Stats.Failed)
}

// formatValues formats call arguments for display.
func formatValues(args []any) string {
	return "(" + joinValues(args) + ")"
}

func joinValues(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, ", ")
}

// formatValue formats a single value for display, handling nested structures deterministically.
func formatValue(v any) string {
	switch val := v.(type) {
	case []any:
		return "[" + joinValues(val) + "]"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
