package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintSummary renders one row per converted input.
func PrintSummary(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Input", "Output", "Size", "Loudness", "Score", "Time", "Status"})

	var total int64
	for _, r := range results {
		size, score, status := "-", "-", "ok"
		if r.Size > 0 {
			size = humanize.IBytes(uint64(r.Size))
			total += r.Size
		}
		if r.HasScore {
			score = strconv.FormatFloat(r.Score, 'f', 3, 64)
		}
		if r.Err != nil {
			status = "failed"
			if r.Stats.Total > 0 {
				status = fmt.Sprintf("failed (%d/%d passes)", r.Stats.Completed, r.Stats.Total)
			}
		}
		loud := r.Loudness
		if loud == "" {
			loud = "-"
		}
		t.AppendRow(table.Row{
			filepath.Base(r.Input),
			filepath.Base(r.Output),
			size,
			loud,
			score,
			r.Elapsed.Round(time.Second).String(),
			status,
		})
	}
	t.AppendFooter(table.Row{"", "Total", humanize.IBytes(uint64(total)), "", "", "", strconv.Itoa(len(results))})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}
