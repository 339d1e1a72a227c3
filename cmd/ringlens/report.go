package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/stats"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

type reportOptions struct {
	days    int
	summary bool
}

func reportCmd(e *env) *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report <file|dir>...",
		Short: "Print a terminal dashboard for exported CSV files",
		Long: `Load Oura CSV exports and print the dashboard overview.

Directories are expanded to the *.csv files they contain. Files that cannot
be parsed are reported and skipped.

Examples:
  ringlens report ~/Downloads/oura
  ringlens report dailysleep.csv dailyactivity.csv --days 7 --summary`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), e, args, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.days, "days", "d", 0, "also average headline metrics over the last N days")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "ask the language model for a short summary")
	return cmd
}

func runReport(ctx context.Context, w io.Writer, e *env, args []string, opts reportOptions) error {
	uploads, err := service.CollectPaths(args)
	if err != nil {
		return err
	}

	svc := newService(ctx, e)
	defer svc.Close()

	res, err := svc.Ingest(ctx, uploads, service.Lenient)
	if err != nil {
		return err
	}

	var summary string
	if opts.summary {
		summary = svc.Summarize(ctx, res.Session.Dataset())
	}
	printReport(w, res, opts.days, summary)
	return nil
}

func printReport(w io.Writer, res *service.IngestResult, days int, summary string) {
	sess := res.Session
	fmt.Fprintf(w, "%s %d file(s) loaded %s\n", bold("ringlens report:"), sess.Len(), faint("(session "+sess.ID()+")"))
	for _, fe := range res.Failures {
		fmt.Fprintf(w, "  %s %s\n", red("!"), fe.Error())
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(w, "  %s skipped %s\n", yellow("-"), name)
	}

	o := sess.Overview()
	headlines := o.Headlines()
	fmt.Fprintf(w, "\n%s\n", bold("Overview"))
	if len(headlines) == 0 {
		fmt.Fprintln(w, faint("  no headline metrics"))
	}
	for _, m := range headlines {
		printMetric(w, m)
	}

	if days > 0 && len(headlines) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold(fmt.Sprintf("Last %d days", days)))
		for _, m := range headlines {
			if s, ok := windowed(sess, m, days); ok {
				fmt.Fprintf(w, "  %-28s %s\n", m.Label, value(s.Mean, m))
			}
		}
	}

	var others []catalog.Aggregate
	for _, m := range o.Metrics {
		if !m.Headline {
			others = append(others, m)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Metrics"))
		for _, m := range others {
			printMetric(w, m)
		}
	}

	fmt.Fprintf(w, "\n%s\n", bold("Sections"))
	for _, s := range o.Sections {
		if s.Present {
			fmt.Fprintf(w, "  %s %-24s %s\n", green("✓"), s.Title, faint(fmt.Sprintf("%s, %d rows", s.File, s.Rows)))
		} else {
			fmt.Fprintf(w, "  %s %s\n", faint("·"), faint(s.Title))
		}
	}

	if summary != "" {
		fmt.Fprintf(w, "\n%s\n  %s\n", bold("Summary"), summary)
	}
}

func printMetric(w io.Writer, m catalog.Aggregate) {
	line := fmt.Sprintf("  %-28s %s", m.Label, value(m.Mean, m))
	if m.Delta != nil {
		// Sign and colour follow the printed value, so 0.3 at precision 0 is a flat 0.
		d := strconv.FormatFloat(*m.Delta, 'f', m.Precision, 64)
		shown, _ := strconv.ParseFloat(d, 64)
		switch {
		case shown > 0:
			line += "  " + green("+"+d)
		case shown < 0:
			line += "  " + red(d)
		default:
			line += "  " + faint(strconv.FormatFloat(0, 'f', m.Precision, 64))
		}
	}
	fmt.Fprintln(w, line)
}

func value(v float64, m catalog.Aggregate) string {
	s := strconv.FormatFloat(v, 'f', m.Precision, 64)
	if m.Unit != "" {
		s += " " + m.Unit
	}
	return s
}

// windowed recomputes an aggregate over the last days of its file.
func windowed(sess *session.Session, m catalog.Aggregate, days int) (stats.Summary, bool) {
	k, ok := catalog.Lookup(m.File)
	if !ok {
		return stats.Summary{}, false
	}
	rows, ok := sess.Rows(m.File)
	if !ok {
		return stats.Summary{}, false
	}
	s := stats.Summarize(k.Window(k.Derive(rows), days), m.Column, k.TimeColumn)
	return s, s.Count > 0
}
