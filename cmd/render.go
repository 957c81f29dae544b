package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/inference-sim/cpusim/sim/report"
)

// render prints every section of a result: header, occupancy table,
// process statistics, critical events, timeline and utilization.
func render(w io.Writer, r *report.Result, pageColumns int) {
	header := fmt.Sprintf("=== %s", r.Algorithm)
	if r.Quantum > 0 {
		header += fmt.Sprintf(" (quantum %d)", r.Quantum)
	}
	if r.Scenario != "" {
		header += " / " + r.Scenario
	}
	fmt.Fprintln(w, header+" ===")
	if !r.Converged {
		fmt.Fprintf(w, "WARNING: %s\n", r.Warning)
	}

	fmt.Fprintln(w, "\nOccupancy")
	renderOccupancy(w, r, pageColumns)
	fmt.Fprintln(w, "\nProcesses")
	renderStats(w, r.Processes)
	fmt.Fprintln(w, "\nCritical events")
	renderEvents(w, report.CriticalEvents(r.Events))
	fmt.Fprintln(w, "\nCPU timeline")
	renderTimeline(w, r.Timeline)
	fmt.Fprintln(w, "\nUtilization")
	renderUtilization(w, r.Utilization)
}

// renderOccupancy prints the table in pages of pageColumns columns. Rows keep
// the table order; the time labels sit in the footer.
func renderOccupancy(w io.Writer, r *report.Result, pageColumns int) {
	n := len(r.Times)
	if pageColumns <= 0 || pageColumns > n {
		pageColumns = n
	}
	if n == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for start := 0; start < n; start += pageColumns {
		end := min(start+pageColumns, n)

		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		table.SetAlignment(tablewriter.ALIGN_CENTER)
		for _, row := range r.Table {
			line := append([]string{row.Label}, row.Cells[start:end]...)
			table.Append(line)
		}
		footer := []string{"t"}
		for _, t := range r.Times[start:end] {
			footer = append(footer, strconv.FormatInt(t, 10))
		}
		table.SetFooter(footer)
		table.Render()
	}
}

func renderStats(w io.Writer, stats []report.ProcessStats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Process", "Arrival", "Handoffs", "State", "CPU", "IO", "Sequence", "Finish", "Turnaround", "Wait", "Response"})
	for _, s := range stats {
		table.Append([]string{
			s.Name,
			strconv.FormatInt(s.Arrival, 10),
			strconv.Itoa(s.Handoffs),
			s.State,
			strconv.FormatInt(s.CPUTime, 10),
			strconv.FormatInt(s.IOTime, 10),
			s.Sequence,
			orDash(s.Finish),
			orDash(s.Turnaround),
			strconv.FormatInt(s.Waiting, 10),
			orDash(s.Response),
		})
	}
	avg := report.Average(stats)
	table.SetFooter([]string{fmt.Sprintf("finished %d", avg.Finished), "", "", "", "", "", "", "avg",
		humanize.FtoaWithDigits(avg.Turnaround, 2),
		humanize.FtoaWithDigits(avg.Waiting, 2),
		humanize.FtoaWithDigits(avg.Response, 2)})
	table.Render()
}

func renderEvents(w io.Writer, events []report.EventRecord) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Time", "Event"})
	for _, ev := range events {
		table.Append([]string{strconv.FormatInt(ev.Time, 10), ev.Description})
	}
	table.Render()
}

func renderTimeline(w io.Writer, segs []report.Segment) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CPU", "Start", "End", "Duration"})
	for _, s := range segs {
		table.Append([]string{
			s.Owner,
			strconv.FormatInt(s.Start, 10),
			strconv.FormatInt(s.End, 10),
			strconv.FormatInt(s.Duration, 10),
		})
	}
	table.Render()
}

func renderUtilization(w io.Writer, u report.Utilization) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Total time", humanize.Comma(u.Total)},
		{"CPU busy", humanize.Comma(u.Busy)},
		{"CPU idle", humanize.Comma(u.Idle)},
		{"Utilization", humanize.FtoaWithDigits(u.Percent, 2) + "%"},
		{"Finished", strconv.Itoa(u.Finished)},
		{"Throughput (per tick)", humanize.FtoaWithDigits(u.Throughput, 3)},
	})
	table.Render()
}

func orDash(v int64) string {
	if v < 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}
