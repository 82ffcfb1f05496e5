package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/failvault/internal/client/services"
	"github.com/dmitrijs2005/failvault/internal/models"
)

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

func lockLabel(unlocked bool) string {
	if unlocked {
		return "unlocked"
	}
	return "locked"
}

// renderItems prints one catalog entry per block.
func renderItems(w io.Writer, items []services.Item, width int) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	for _, it := range items {
		r := it.Record
		fmt.Fprintf(w, "%s  [%s] %s ETH  %s\n", r.ID, r.Category, r.Price.String(), lockLabel(it.Unlocked))
		fmt.Fprintf(w, "  %s\n", truncate(r.Title, width-2))
		fmt.Fprintf(w, "  by %s  %s\n", r.Author, r.Date)
		fmt.Fprintf(w, "  %s\n\n", truncate(r.Abstract, width-2))
	}
}

func renderRecord(w io.Writer, it services.Item) {
	r := it.Record
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Title:    %s\n", r.Title)
	fmt.Fprintf(w, "Author:   %s\n", r.Author)
	fmt.Fprintf(w, "Date:     %s\n", r.Date)
	fmt.Fprintf(w, "Category: %s\n", r.Category)
	fmt.Fprintf(w, "Price:    %s ETH\n", r.Price.String())
	fmt.Fprintf(w, "Payee:    %s\n", r.PayeeAddress)
	if r.TokenURI != "" {
		fmt.Fprintf(w, "Token:    %s\n", r.TokenURI)
	}
	fmt.Fprintf(w, "\n%s\n\n", r.Abstract)
	if it.Unlocked {
		fmt.Fprintf(w, "Findings:\n%s\n", r.Findings)
	} else {
		fmt.Fprintf(w, "Findings are locked. Run 'unlock %s' to pay %s ETH.\n", r.ID, r.Price.String())
	}
}

// renderAdminTable prints the admin table sized to width. The title column
// takes whatever the fixed columns leave.
func renderAdminTable(w io.Writer, records []*models.Record, width int) {
	const (
		idW     = 36
		authorW = 13
		catW    = 9
		priceW  = 10
		gaps    = 4 * 2
	)
	titleW := width - idW - authorW - catW - priceW - gaps
	if titleW < 10 {
		titleW = 10
	}

	row := func(id, title, author, cat, price string) {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %*s\n",
			idW, truncate(id, idW), titleW, truncate(title, titleW),
			authorW, truncate(author, authorW), catW, truncate(cat, catW), priceW, truncate(price, priceW))
	}

	row("ID", "TITLE", "AUTHOR", "CATEGORY", "PRICE")
	fmt.Fprintln(w, strings.Repeat("-", idW+titleW+authorW+catW+priceW+gaps))
	for _, r := range records {
		row(r.ID, r.Title, r.Author, string(r.Category), r.Price.String())
	}
	fmt.Fprintf(w, "%d record(s)\n", len(records))
}
