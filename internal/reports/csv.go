package reports

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteSalesCSV streams the sales report as CSV with CRLF line endings.
// Metadata rows prefixed with "#" precede the header.
func WriteSalesCSV(w io.Writer, report SalesReport, generatedAt time.Time) error {
	buf := bufio.NewWriter(w)
	cw := csv.NewWriter(buf)
	cw.UseCRLF = true

	meta := [][]string{
		{"# Sales report"},
		{"# Period: " + report.Period.From.Format("2006-01-02") + " to " + report.Period.To.Format("2006-01-02")},
		{"# Generated: " + generatedAt.UTC().Format(time.RFC3339)},
	}
	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{"month", "invoice_count", "invoiced_total", "paid_total"}); err != nil {
		return err
	}
	for _, m := range report.Months {
		row := []string{
			m.Month,
			strconv.Itoa(m.InvoiceCount),
			strconv.FormatFloat(m.InvoicedTotal, 'f', 2, 64),
			strconv.FormatFloat(m.PaidTotal, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
