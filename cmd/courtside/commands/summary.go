package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"courtside/internal/core"
)

// maxListedErrors caps the per-item failures printed under the summary.
const maxListedErrors = 20

func renderSummary(w io.Writer, reports []*core.StageReport) {
	if len(reports) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Stage", "Target", "Candidates", "Done", "Remaining", "OK", "Failed", "Skipped", "Rows", "Rejected", "Time"})

	var errs []core.ItemError
	for _, r := range reports {
		stage := r.Stage
		if r.Cancelled {
			stage += " (cancelled)"
		}
		t.AppendRow(table.Row{
			stage, r.Target, r.Candidates, r.Completed, r.Remaining,
			r.Succeeded, r.Failed, r.Skipped, r.RowsInserted, r.RowsRejected,
			r.Duration.Round(time.Millisecond),
		})
		for _, e := range r.Errors {
			errs = append(errs, core.ItemError{ID: r.Stage + "/" + e.ID, Error: e.Error})
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d item(s) failed or were skipped:\n", len(errs))
	for i, e := range errs {
		if i == maxListedErrors {
			fmt.Fprintf(w, "  ... and %d more\n", len(errs)-maxListedErrors)
			break
		}
		fmt.Fprintf(w, "  %s: %s\n", e.ID, e.Error)
	}
}
