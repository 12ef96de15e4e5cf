// Package views renders the server-side HTML of the garage: the printable
// invoice and error fragments.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// GarageName is printed in the invoice header.
const GarageName = "AUTO BASHKIMI-L"

// Money formats an amount in dollars with two decimals.
func Money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// page renders body inside a minimal printable HTML document.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="sq"><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
			templ.EscapeString(title), printCSS); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

const printCSS = `body{font-family:sans-serif;color:#111;max-width:640px;margin:24px auto}` +
	`.row{display:flex;justify-content:space-between;padding:5px 0;font-size:13px;border-bottom:1px solid #eee}` +
	`.svc{font-size:12px;font-weight:700;color:#f59e0b;text-transform:uppercase;margin-top:14px}` +
	`.total{font-weight:700;font-size:15px}.alert{border:1px solid #dc2626;padding:12px;border-radius:8px}` +
	`@media print{.no-print{display:none}}`

// writeRow writes a label/value row. Both are escaped.
func writeRow(w io.Writer, class, label, value string) error {
	_, err := fmt.Fprintf(w, `<div class="%s"><span>%s</span><span>%s</span></div>`,
		class, templ.EscapeString(label), templ.EscapeString(value))
	return err
}
