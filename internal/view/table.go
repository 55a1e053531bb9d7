package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dta-platform/adminctl/internal/model"
)

const dateLayout = "2006-01-02"

// Table is a fully materialized table projection: headers plus one row per
// record, in fetch order. Rendering always replaces whatever was shown
// before; lists are small and re-fetched wholesale, so there is no diffing.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render writes the table to w in aligned columns. An empty table renders
// just the header line.
func (t Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printRow(tw, t.Headers)
	for _, row := range t.Rows {
		printRow(tw, row)
	}
	return tw.Flush()
}

func printRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// UsersTable projects users into the console's user listing.
func UsersTable(users []model.User) Table {
	t := Table{Headers: []string{"ID", "NAME", "USERNAME", "EMAIL", "PHONE", "LEVEL", "STATUS"}}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{
			u.ID, u.Name, u.Username, u.Email, orNA(u.Phone),
			fmt.Sprintf("%d", u.Level), u.Status,
		})
	}
	return t
}

// PendingConfirmationsTable projects users awaiting email confirmation.
func PendingConfirmationsTable(users []model.User) Table {
	t := Table{Headers: []string{"ID", "NAME", "EMAIL", "REGISTERED"}}
	for _, u := range users {
		registered := "N/A"
		if u.RegistrationDate != nil {
			registered = u.RegistrationDate.Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{u.ID, u.Name, u.Email, registered})
	}
	return t
}

// TasksTable projects tasks.
func TasksTable(tasks []model.Task) Table {
	t := Table{Headers: []string{"ID", "TITLE", "LINK", "COMPLETIONS", "STATUS"}}
	for _, task := range tasks {
		t.Rows = append(t.Rows, []string{
			task.ID, task.Title, task.Link, fmt.Sprintf("%d", task.Completions), task.Status,
		})
	}
	return t
}

// WithdrawalsTable projects withdrawals with currency-formatted amounts.
func WithdrawalsTable(ws []model.Withdrawal, glyph string) Table {
	t := Table{Headers: []string{"ID", "USER", "AMOUNT", "DATE", "STATUS"}}
	for _, w := range ws {
		t.Rows = append(t.Rows, []string{
			w.ID, w.UserID, Currency(w.Amount, glyph), w.Date.Format(dateLayout), w.Status,
		})
	}
	return t
}

// ReferralsTable projects referral aggregates.
func ReferralsTable(rs []model.Referral, glyph string) Table {
	t := Table{Headers: []string{"USER", "REFERRALS", "BONUS PAID", "SUSPICIOUS"}}
	for _, r := range rs {
		suspicious := "No"
		if r.IsSuspicious {
			suspicious = "Yes"
		}
		t.Rows = append(t.Rows, []string{
			r.User, fmt.Sprintf("%d", r.ReferralCount), Currency(r.BonusPaid, glyph), suspicious,
		})
	}
	return t
}

// UpgradesTable projects pending and settled upgrades.
func UpgradesTable(us []model.Upgrade, glyph string) Table {
	t := Table{Headers: []string{"ID", "USER", "LEVEL", "AMOUNT", "STATUS"}}
	for _, u := range us {
		t.Rows = append(t.Rows, []string{
			u.ID, u.User, fmt.Sprintf("%d", u.Level), Currency(u.Amount, glyph), u.Status,
		})
	}
	return t
}

// AdminsTable projects administrator accounts.
func AdminsTable(as []model.Admin) Table {
	t := Table{Headers: []string{"EMAIL", "CONTACT"}}
	for _, a := range as {
		t.Rows = append(t.Rows, []string{a.Email, orNA(a.Contact)})
	}
	return t
}

// EmailLogsTable projects the outbound email audit trail.
func EmailLogsTable(logs []model.EmailLog) Table {
	t := Table{Headers: []string{"TYPE", "RECIPIENT", "DATE"}}
	for _, l := range logs {
		t.Rows = append(t.Rows, []string{l.Type, l.Recipient, l.Timestamp.Format(dateLayout)})
	}
	return t
}

// RenderStats writes the dashboard counters in the console's fixed order.
func RenderStats(w io.Writer, s model.DashboardStats, glyph string) {
	fmt.Fprintf(w, "Total Users:         %d\n", s.TotalUsers)
	fmt.Fprintf(w, "Total Earnings:      %s\n", Currency(s.TotalEarnings, glyph))
	fmt.Fprintf(w, "Total Tasks:         %d\n", s.TotalTasks)
	fmt.Fprintf(w, "Pending Withdrawals: %d\n", s.PendingWithdrawals)
}
