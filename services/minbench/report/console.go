// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AleutianAI/AleutianMinBench/pkg/ux"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
)

// ConsoleRenderer writes human-readable reports with lipgloss tables.
//
// Thread Safety: Not safe for concurrent use; writes interleave.
type ConsoleRenderer struct {
	out   io.Writer
	theme *ux.Theme
}

// NewConsoleRenderer creates a ConsoleRenderer. A nil theme means plain
// text.
func NewConsoleRenderer(out io.Writer, theme *ux.Theme) *ConsoleRenderer {
	if theme == nil {
		theme = ux.NewTheme(out, ux.ColorNever)
	}
	return &ConsoleRenderer{out: out, theme: theme}
}

// Begin writes the run banner.
func (r *ConsoleRenderer) Begin(info hardware.Info) error {
	var b strings.Builder
	b.WriteString(r.theme.Title.Render("MINIMUM SEARCH EFFICIENCY BENCHMARK"))
	b.WriteString("\n")
	b.WriteString(r.theme.Muted.Render(fmt.Sprintf("%d logical cores (%s)", info.LogicalCores, info.Source)))
	if info.Brand != "" {
		b.WriteString(r.theme.Muted.Render(", " + info.Brand))
	}
	b.WriteString("\n")

	_, err := io.WriteString(r.out, r.theme.BoxText("MinBench", b.String())+"\n")
	return err
}

// Render writes one experiment: library table, K table, conclusions.
func (r *ConsoleRenderer) Render(exp *Experiment) error {
	t := r.theme
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", t.Title.Render(fmt.Sprintf("EXPERIMENT REPORT (N = %d)", exp.DataSize)))
	if exp.RunID != "" {
		fmt.Fprintf(&b, "%s\n", t.Muted.Render("run "+exp.RunID))
	}
	fmt.Fprintf(&b, "%s\n", t.InfoLine(fmt.Sprintf("first element: %d", exp.FirstElement)))

	fmt.Fprintf(&b, "\n%s\n", t.Subtitle.Render("Library methods"))
	if len(exp.Library) == 0 {
		fmt.Fprintf(&b, "%s\n", t.Muted.Render("no measurements"))
	} else {
		rows := make([][]string, 0, len(exp.Library))
		for _, m := range exp.Library {
			rows = append(rows, []string{m.Name, strconv.FormatInt(m.Micros, 10)})
		}
		fmt.Fprintf(&b, "%s\n", r.table([]string{"Method", "Time (µs)"}, rows))
	}

	if exp.Sweep == nil {
		fmt.Fprintf(&b, "\n%s\n", t.WarningLine("custom engine did not run"))
	} else {
		r.writeSweep(&b, exp)
	}

	for _, msg := range exp.Errors {
		fmt.Fprintf(&b, "%s\n", t.ErrorLine(msg))
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *ConsoleRenderer) writeSweep(b *strings.Builder, exp *Experiment) {
	t := r.theme
	res := exp.Sweep

	fmt.Fprintf(b, "\n%s\n", t.Subtitle.Render("Custom parallel engine"))
	fmt.Fprintf(b, "%s\n", t.InfoLine(fmt.Sprintf("hardware parallelism: %d", res.HardwareParallelism)))

	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, []string{strconv.Itoa(e.K), strconv.FormatInt(e.AvgMicros, 10)})
	}
	fmt.Fprintf(b, "%s\n", r.table([]string{"K", "Average time (µs)"}, rows))

	if res.Aborted() {
		fmt.Fprintf(b, "%s\n", t.WarningLine(fmt.Sprintf("sweep aborted at K = %d: %v", res.FailedK, res.Err)))
	} else if len(res.Entries) > 0 {
		fmt.Fprintf(b, "%s\n", t.SuccessLine(fmt.Sprintf("sweep complete: %d K values", len(res.Entries))))
	}

	fmt.Fprintf(b, "\n%s\n", t.Subtitle.Render("Conclusions"))
	s := Conclusion(exp)
	if !s.Found {
		fmt.Fprintf(b, "%s\n", t.WarningLine("no K value was evaluated"))
		return
	}

	bullet := t.Icon(ux.IconBullet)
	fmt.Fprintf(b, "%s best speed at %s, %d µs\n",
		t.Icon(ux.IconArrow), t.Highlight.Render(fmt.Sprintf("K = %d", s.BestK)), s.BestMicros)

	ratio := "n/a"
	if s.RatioKnown {
		ratio = strconv.FormatFloat(s.Ratio, 'f', 3, 64)
	}
	fmt.Fprintf(b, "%s best K / hardware parallelism (%d): %s\n", bullet, s.HardwareParallelism, ratio)

	if s.SpeedupKnown {
		fmt.Fprintf(b, "%s speedup over K = 1: %sx\n", bullet, strconv.FormatFloat(s.Speedup, 'f', 2, 64))
	}
}

func (r *ConsoleRenderer) table(headers []string, rows [][]string) string {
	t := r.theme
	cell := t.NewStyle().Padding(0, 1)
	header := t.Bold.Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == len(headers)-1 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		}).
		Render()
}
