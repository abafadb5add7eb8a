package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vk/routecost/internal/costing"
)

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want table, csv or json)", s)
}

// Options controls what a renderer includes.
type Options struct {
	// Steps adds the per-step breakdown.
	Steps bool
}

// Write renders res to w in the given format.
func Write(w io.Writer, format Format, res *costing.Result, opts Options) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatJSON:
		return WriteJSON(w, res, opts)
	default:
		return RenderTable(w, res, opts)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	targetStyle = cellStyle.Bold(true)
	mutedStyle  = cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
)

// RenderTable writes a summary line and the cost rows as a terminal table.
func RenderTable(w io.Writer, res *costing.Result, opts Options) error {
	rows := Build(res)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("COMPOUND", "KIND", "DEPTH", "MASS", "UNIT COST", "CONTRIBUTION", "SHARE")
	for _, r := range rows {
		t.Row(r.Compound, string(r.Kind), strconv.Itoa(r.Depth), num(r.Mass), num(r.UnitCost), num(r.Contribution), pct(r.Kind, r.Share))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col >= 2:
			return numberStyle
		case rows[row].Kind == costing.KindTarget:
			return targetStyle
		case rows[row].Kind == costing.KindIntermediate:
			return mutedStyle
		}
		return cellStyle
	})

	if _, err := fmt.Fprintf(w, "Target %s, quantity %s: unit cost %s, total cost %s\n",
		res.Target, num(res.Quantity), num(res.UnitCost), num(res.TotalCost)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if !opts.Steps {
		return nil
	}

	steps := BuildSteps(res)
	st := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("STEP", "INPUT", "ROLE", "MASS RATIO", "COST", "SHARE")
	for _, r := range steps {
		compound, ratio := r.Compound, num(r.MassRatio)
		if compound == "" {
			compound, ratio = "-", ""
		}
		st.Row(r.Step, compound, r.Role, ratio, num(r.Cost), strconv.FormatFloat(r.Share*100, 'f', 1, 64)+"%")
	}
	st.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col >= 3:
			return numberStyle
		}
		return cellStyle
	})
	_, err := fmt.Fprintln(w, st.Render())
	return err
}

// WriteCSV writes the cost rows with a header line. Numbers use the
// shortest exact representation.
func WriteCSV(w io.Writer, res *costing.Result) error {
	rows := Build(res)
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Compound,
			string(r.Kind),
			strconv.Itoa(r.Depth),
			exact(r.Mass),
			exact(r.UnitCost),
			exact(r.Contribution),
			exact(r.Share),
		}
	}
	return writeCSV(w, []string{"compound", "kind", "depth", "mass", "unit_cost", "contribution", "share"}, records)
}

// WriteJSON writes the result as an indented Report document.
func WriteJSON(w io.Writer, res *costing.Result, opts Options) error {
	return writeJSON(w, NewReport(res, opts.Steps))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(kind costing.Kind, share float64) string {
	if kind != costing.KindRaw {
		return ""
	}
	return strconv.FormatFloat(share*100, 'f', 1, 64) + "%"
}
