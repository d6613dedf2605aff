// Package export renders transaction data as CSV and monthly HTML reports.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"fintrack/internal/models"
	"fintrack/internal/month"
)

// csvHeader is the column order for transaction exports.
var csvHeader = []string{"date", "type", "category", "amount", "payment_method", "notes"}

// TransactionsCSV renders transactions as RFC 4180 CSV: fields containing a
// comma, quote, or newline are quoted and internal quotes doubled.
func TransactionsCSV(txns []models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range txns {
		record := []string{
			month.DateKey(t.Date),
			string(t.Type),
			t.Category,
			t.Amount.String(),
			t.PaymentMethod,
			t.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseTransactionsCSV reads CSV produced by TransactionsCSV back into field
// rows (excluding the header). Used by tests and import tooling.
func ParseTransactionsCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse csv: missing header")
	}
	return rows[1:], nil
}
