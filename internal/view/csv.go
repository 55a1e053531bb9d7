package view

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dta-platform/adminctl/internal/model"
)

// WithdrawalsCSV writes the withdrawal export: User, Amount, Date, Status.
// The User column carries the record's userId; amounts are raw integers so
// spreadsheets can sum them.
func WithdrawalsCSV(w io.Writer, ws []model.Withdrawal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"User", "Amount", "Date", "Status"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, wd := range ws {
		row := []string{
			wd.UserID,
			fmt.Sprintf("%d", wd.Amount),
			wd.Date.Format(dateLayout),
			wd.Status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
