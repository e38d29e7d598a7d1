package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"tidyd/pkg/types"
)

func printRunSummary(result *types.RunResult) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"processed", "moved", "skipped", "errors", "duplicates", "elapsed"})
	w.AppendRow(table.Row{
		result.Processed,
		result.Moved,
		result.Skipped,
		result.Errors,
		result.DuplicatesFound,
		result.Elapsed.Round(time.Millisecond),
	})
	w.Render()
}

func printRunHistory(results []types.RunResult) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"started", "source", "mode", "processed", "moved", "skipped", "errors", "duplicates"})

	var total types.RunResult
	for _, res := range results {
		w.AppendRow(table.Row{
			res.StartedAt.Local().Format("2006-01-02 15:04:05"),
			res.Source,
			res.Mode,
			res.Processed,
			res.Moved,
			res.Skipped,
			res.Errors,
			res.DuplicatesFound,
		})
		total.Add(res)
	}
	w.AppendFooter(table.Row{"", "", "total", total.Processed, total.Moved, total.Skipped, total.Errors, total.DuplicatesFound})
	w.Render()
}
