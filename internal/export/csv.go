package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// CSVWriter writes one CSV file per report under a base directory,
// named <profile>-<month>.csv.
type CSVWriter struct {
	dir string
}

var _ ReportWriter = (*CSVWriter)(nil)

func NewCSVWriter(dir string) (*CSVWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory not set")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

func (w *CSVWriter) WriteMonthlyReport(ctx context.Context, r *MonthlyReport) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.csv", r.Profile, r.Month))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	for _, row := range ReportRows(r) {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	slog.InfoContext(ctx, "CSV report written",
		"profile", r.Profile,
		"month", string(r.Month),
		"path", path)

	return path, nil
}

// ReportRows flattens a report into tabular rows shared by all
// writers. Amounts are rendered to two decimals here and nowhere
// earlier.
func ReportRows(r *MonthlyReport) [][]string {
	rows := [][]string{
		{"section", "id", "name", "type", "amount", "note"},
		{"totals", "", "income", "", money(r.Totals.TotalIncome), ""},
		{"totals", "", "outflow", "", money(r.Totals.TotalOutflow), ""},
		{"totals", "", "remaining", "", money(r.Totals.Remaining), ""},
	}
	for _, b := range r.Balances {
		rows = append(rows, []string{"balance", b.CategoryID, b.Name, "", money(b.Balance), ""})
	}
	for _, tx := range r.Transactions {
		rows = append(rows, []string{"transaction", tx.ID, "", string(tx.Type), money(tx.Amount), tx.Note})
	}
	return rows
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
