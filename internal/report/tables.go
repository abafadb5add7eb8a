package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vk/routecost/internal/costing"
)

// ScanRow is one point of a sensitivity scan.
type ScanRow struct {
	Value    float64 `json:"value"`
	UnitCost float64 `json:"unit_cost"`
}

// PriceRow is one stored material price.
type PriceRow struct {
	Compound  string    `json:"compound"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WriteScan renders scan points. label names the scanned value, e.g.
// "R.price".
func WriteScan(w io.Writer, format Format, label string, points []costing.ScanPoint) error {
	rows := make([]ScanRow, len(points))
	for i, p := range points {
		rows[i] = ScanRow(p)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, struct {
			Scan   string    `json:"scan"`
			Points []ScanRow `json:"points"`
		}{label, rows})
	case FormatCSV:
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = []string{exact(r.Value), exact(r.UnitCost)}
		}
		return writeCSV(w, []string{label, "unit_cost"}, records)
	default:
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = []string{strconv.FormatFloat(r.Value, 'g', -1, 64), num(r.UnitCost)}
		}
		return renderPlain(w, []string{label, "UNIT COST"}, records, 0)
	}
}

// WritePrices renders a list of stored prices.
func WritePrices(w io.Writer, format Format, prices []PriceRow) error {
	switch format {
	case FormatJSON:
		if prices == nil {
			prices = []PriceRow{}
		}
		return writeJSON(w, prices)
	case FormatCSV:
		records := make([][]string, len(prices))
		for i, p := range prices {
			records[i] = []string{p.Compound, exact(p.Price), p.UpdatedAt.UTC().Format(time.RFC3339)}
		}
		return writeCSV(w, []string{"compound", "price", "updated_at"}, records)
	default:
		records := make([][]string, len(prices))
		for i, p := range prices {
			records[i] = []string{p.Compound, num(p.Price), p.UpdatedAt.UTC().Format(time.RFC3339)}
		}
		return renderPlain(w, []string{"COMPOUND", "PRICE", "UPDATED"}, records, 1)
	}
}

// renderPlain draws a bordered table; columns from numericFrom onward are
// right-aligned.
func renderPlain(w io.Writer, headers []string, records [][]string, numericFrom int) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(records...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= numericFrom:
				return numberStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exact(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
