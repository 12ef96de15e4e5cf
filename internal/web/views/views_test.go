package views

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/garazh/internal/core"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{54, "$54.00"},
		{12.345, "$12.35"},
		{-3.5, "$-3.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "Money(%v)", tt.in)
	}
}

func TestInvoice(t *testing.T) {
	doc := core.InvoiceDocument{
		Number:       "INV-0004",
		Date:         "2026-03-09",
		StatusLabel:  "Përfunduar",
		Paid:         true,
		CustomerName: "Arben <Hoxha>",
		Vehicle:      "VW Golf",
		Year:         2012,
		Plate:        "AA-123-BB",
		Lines: []core.InvoiceLine{{
			ServiceType: "Oil Change",
			Labor:       40,
			Parts:       []core.InvoicePart{{Name: "Filter", Qty: 2, UnitPrice: 7, Amount: 14}},
			Subtotal:    54,
		}},
		Totals: core.Totals{Revenue: 54},
	}

	out := render(t, Invoice(doc))
	for _, want := range []string{
		"<!DOCTYPE html>",
		GarageName,
		"INV-0004",
		"Arben &lt;Hoxha&gt;",
		"VW Golf (2012)",
		"Filter x2 @ $7.00",
		"$54.00",
		"Paguar",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "<Hoxha>", "customer name must be escaped")
	assert.NotContains(t, out, "<span>VIN</span>", "empty VIN row rendered")
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert(core.UserMessage{Message: "The record no longer exists", Action: "Reload", Code: "NF001"}))
	assert.Contains(t, out, "NF001")
	assert.Contains(t, out, `role="alert"`)
	assert.NotContains(t, out, "<html", "alert should be a fragment")

	page := render(t, ErrorPage(core.UserMessage{Message: "x", Code: "ERR000"}))
	assert.Contains(t, page, "<html")
}
