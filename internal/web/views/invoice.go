package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/garazh/internal/core"
)

// Invoice renders the printable invoice of one order.
func Invoice(doc core.InvoiceDocument) templ.Component {
	return page(doc.Number, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<header><h1>%s</h1><h2>%s</h2></header>`,
			templ.EscapeString(GarageName), templ.EscapeString(doc.Number)); err != nil {
			return err
		}

		paid := "Pa paguar"
		if doc.Paid {
			paid = "Paguar"
		}
		vehicle := doc.Vehicle
		if doc.Year > 0 {
			vehicle += " (" + strconv.Itoa(int(doc.Year)) + ")"
		}
		rows := [][2]string{
			{"Data", string(doc.Date)},
			{"Statusi", doc.StatusLabel},
			{"Pagesa", paid},
			{"Klienti", doc.CustomerName},
			{"Telefoni", doc.Phone},
			{"Email", doc.Email},
			{"Adresa", doc.Address},
			{"Automjeti", vehicle},
			{"Targa", doc.Plate},
			{"VIN", doc.VIN},
		}
		for _, r := range rows {
			if r[1] == "" {
				continue
			}
			if err := writeRow(w, "row", r[0], r[1]); err != nil {
				return err
			}
		}

		for _, line := range doc.Lines {
			if _, err := fmt.Fprintf(w, `<div class="svc">%s</div>`, templ.EscapeString(line.ServiceType)); err != nil {
				return err
			}
			if err := writeRow(w, "row", "Puna", Money(line.Labor)); err != nil {
				return err
			}
			for _, p := range line.Parts {
				label := fmt.Sprintf("%s x%s @ %s", p.Name, strconv.FormatFloat(p.Qty, 'f', -1, 64), Money(p.UnitPrice))
				if err := writeRow(w, "row", label, Money(p.Amount)); err != nil {
					return err
				}
			}
			if err := writeRow(w, "row", "Nëntotali", Money(line.Subtotal)); err != nil {
				return err
			}
		}

		if err := writeRow(w, "row total", "Totali", Money(doc.Totals.Revenue)); err != nil {
			return err
		}
		if doc.Notes != "" {
			if _, err := fmt.Fprintf(w, `<p class="notes">%s</p>`, templ.EscapeString(doc.Notes)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<button class="no-print" onclick="window.print()">Printo</button>`)
		return err
	}))
}
