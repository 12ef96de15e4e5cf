package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MissingLabel is displayed when a referenced customer or vehicle no longer exists.
const MissingLabel = "—"

// State is a point-in-time copy of everything the service holds. Report
// builders derive from it and never mutate it.
type State struct {
	Today        Date
	Customers    []Customer
	Vehicles     []Vehicle
	ServiceTypes []string
	Active       []Order
	Archived     []Order
}

func (st State) customer(id ID) (Customer, bool) {
	for _, c := range st.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

func (st State) vehicle(id ID) (Vehicle, bool) {
	for _, v := range st.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// DateRange is an inclusive day range; a zero bound is open.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Date range presets.
const (
	PresetAll       = "all"
	PresetToday     = "today"
	PresetThisWeek  = "thisWeek"
	PresetLastWeek  = "lastWeek"
	PresetThisMonth = "thisMonth"
)

// ResolvePreset turns a preset name into a range relative to today.
// Weeks run Monday to Sunday.
func ResolvePreset(name string, today Date) (DateRange, error) {
	switch name {
	case "", PresetAll:
		return DateRange{}, nil
	case PresetToday:
		return DateRange{From: today, To: today}, nil
	case PresetThisWeek, PresetLastWeek:
		offset := (int(today.Time().Weekday()) + 6) % 7
		monday := today.AddDays(-offset)
		if name == PresetLastWeek {
			monday = monday.AddDays(-7)
		}
		return DateRange{From: monday, To: monday.AddDays(6)}, nil
	case PresetThisMonth:
		t := today.Time()
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return DateRange{From: DateOf(first), To: DateOf(last)}, nil
	default:
		return DateRange{}, &ValidationError{Field: "preset", Message: fmt.Sprintf("unknown preset %q", name)}
	}
}

// PaymentFilter selects orders by payment state.
type PaymentFilter string

const (
	PaymentAll    PaymentFilter = "all"
	PaymentPaid   PaymentFilter = "paid"
	PaymentUnpaid PaymentFilter = "unpaid"
)

// ParsePaymentFilter parses all, paid or unpaid; empty means all.
func ParsePaymentFilter(s string) (PaymentFilter, error) {
	switch PaymentFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentAll:
		return PaymentAll, nil
	case PaymentPaid:
		return PaymentPaid, nil
	case PaymentUnpaid:
		return PaymentUnpaid, nil
	}
	return "", &ValidationError{Field: "paid", Message: fmt.Sprintf("unknown payment filter %q", s)}
}

func (f PaymentFilter) matches(paid bool) bool {
	switch f {
	case PaymentPaid:
		return paid
	case PaymentUnpaid:
		return !paid
	default:
		return true
	}
}

// InvoiceFilter narrows the invoice list.
type InvoiceFilter struct {
	Range   DateRange
	Payment PaymentFilter
	Query   string
}

// InvoiceRow is one order as shown in invoice and log listings.
type InvoiceRow struct {
	Number       string `json:"number"`
	Date         Date   `json:"date"`
	Archived     bool   `json:"archived"`
	CustomerName string `json:"customerName"`
	Vehicle      string `json:"vehicle"`
	Plate        string `json:"plate"`
	StatusLabel  string `json:"statusLabel"`
	Totals       Totals `json:"totals"`
	Order        Order  `json:"order"`
}

// InvoiceNumber formats an order id as INV-0001. UUIDs are shortened to
// their first block.
func InvoiceNumber(id ID) string {
	s := string(id)
	if _, err := uuid.Parse(s); err == nil {
		s = strings.ToUpper(s[:8])
	}
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}
	return "INV-" + s
}

func (st State) row(o Order, archived bool) InvoiceRow {
	r := InvoiceRow{
		Number:       InvoiceNumber(o.ID),
		Date:         o.Date(),
		Archived:     archived,
		CustomerName: MissingLabel,
		Vehicle:      MissingLabel,
		StatusLabel:  o.Status.Label(),
		Totals:       o.Totals(),
		Order:        o.Clone(),
	}
	if c, ok := st.customer(o.CustomerID); ok {
		r.CustomerName = c.Name
	}
	if v, ok := st.vehicle(o.VehicleID); ok {
		r.Vehicle = v.Label()
		r.Plate = v.Plate
	}
	return r
}

// rows returns the archive followed by the active set as invoice rows.
func (st State) rows() []InvoiceRow {
	out := make([]InvoiceRow, 0, len(st.Archived)+len(st.Active))
	for _, o := range st.Archived {
		out = append(out, st.row(o, true))
	}
	for _, o := range st.Active {
		out = append(out, st.row(o, false))
	}
	return out
}

func (st State) matchesQuery(o Order, q string) bool {
	if Normalize(q) == "" {
		return true
	}
	var fields []string
	if c, ok := st.customer(o.CustomerID); ok {
		fields = append(fields, c.Name, c.Phone)
	}
	if v, ok := st.vehicle(o.VehicleID); ok {
		fields = append(fields, v.Plate, v.VIN)
	}
	return MatchesAny(q, fields...)
}

func sortNewestFirst(rows []InvoiceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
}

// Invoices lists orders from both sets that pass the filter, newest first.
// The date tested is EndDate when set, otherwise StartDate.
func Invoices(st State, f InvoiceFilter) []InvoiceRow {
	out := []InvoiceRow{}
	for _, r := range st.rows() {
		if !f.Range.Contains(r.Date) {
			continue
		}
		if !f.Payment.matches(r.Order.Paid) {
			continue
		}
		if !st.matchesQuery(r.Order, f.Query) {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out
}

// InvoiceSummary aggregates an invoice listing.
type InvoiceSummary struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	COGS    float64 `json:"cogs"`
	Profit  float64 `json:"profit"`
	Margin  float64 `json:"margin"`
	Pending float64 `json:"pending"`
	Unpaid  float64 `json:"unpaid"`
}

// SummarizeInvoices totals completed rows, open (pending) revenue, and the
// unpaid revenue of every non-cancelled order regardless of the filter.
func SummarizeInvoices(st State, rows []InvoiceRow) InvoiceSummary {
	var completed Totals
	sum := InvoiceSummary{Count: len(rows)}
	for _, r := range rows {
		switch r.Order.Status {
		case StatusCompleted:
			completed = completed.Add(r.Totals)
		case StatusCancelled:
		default:
			sum.Pending += r.Totals.Revenue
		}
	}
	sum.Revenue = completed.Revenue
	sum.COGS = completed.COGS
	sum.Profit = completed.Profit
	sum.Margin = completed.Margin()

	for _, set := range [][]Order{st.Archived, st.Active} {
		for _, o := range set {
			if !o.Paid && o.Status != StatusCancelled {
				sum.Unpaid += o.Totals().Revenue
			}
		}
	}
	return sum
}

// Dashboard summarizes the daily log over a range.
type Dashboard struct {
	Range          DateRange    `json:"range"`
	Totals         Totals       `json:"totals"`
	Margin         float64      `json:"margin"`
	LaborIncome    float64      `json:"laborIncome"`
	PartsMarkup    float64      `json:"partsMarkup"`
	Recent         []InvoiceRow `json:"recent"`
	Customers      int          `json:"customers"`
	Vehicles       int          `json:"vehicles"`
	ActiveOrders   int          `json:"activeOrders"`
	ArchivedOrders int          `json:"archivedOrders"`
}

// RecentLimit is how many recent log entries the dashboard shows.
const RecentLimit = 4

// BuildDashboard computes dashboard figures from archived orders in range.
func BuildDashboard(st State, r DateRange) Dashboard {
	d := Dashboard{
		Range:        r,
		Customers:    len(st.Customers),
		Vehicles:     len(st.Vehicles),
		ActiveOrders: len(st.Active),
		Recent:       []InvoiceRow{},
	}

	var rows []InvoiceRow
	for _, o := range st.Archived {
		if !r.Contains(o.Date()) {
			continue
		}
		row := st.row(o, true)
		d.Totals = d.Totals.Add(row.Totals)
		rows = append(rows, row)
	}
	d.ArchivedOrders = len(rows)
	d.Margin = d.Totals.Margin()
	d.LaborIncome = d.Totals.Labor
	d.PartsMarkup = d.Totals.Markup()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Order.EndDate.After(rows[j].Order.EndDate)
	})
	if len(rows) > RecentLimit {
		rows = rows[:RecentLimit]
	}
	d.Recent = append(d.Recent, rows...)
	return d
}

// DailyLogDay groups archived orders reported on one day.
type DailyLogDay struct {
	Date    Date         `json:"date"`
	Count   int          `json:"count"`
	Revenue float64      `json:"revenue"`
	Profit  float64      `json:"profit"`
	Orders  []InvoiceRow `json:"orders"`
}

// BuildDailyLog groups archived orders in range by day, newest day first.
func BuildDailyLog(st State, r DateRange) []DailyLogDay {
	byDay := map[Date]*DailyLogDay{}
	for _, o := range st.Archived {
		d := o.Date()
		if !r.Contains(d) {
			continue
		}
		day, ok := byDay[d]
		if !ok {
			day = &DailyLogDay{Date: d}
			byDay[d] = day
		}
		row := st.row(o, true)
		day.Orders = append(day.Orders, row)
		day.Count++
		day.Revenue += row.Totals.Revenue
		day.Profit += row.Totals.Profit
	}

	days := make([]DailyLogDay, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.After(days[j].Date) })
	return days
}

// CustomerHistory is every order of one customer across both sets.
type CustomerHistory struct {
	Customer    Customer     `json:"customer"`
	Vehicles    []Vehicle    `json:"vehicles"`
	Orders      []InvoiceRow `json:"orders"`
	TotalOrders int          `json:"totalOrders"`
	Revenue     float64      `json:"revenue"`
	Profit      float64      `json:"profit"`
}

// BuildCustomerHistory returns the history of a customer, newest first.
func BuildCustomerHistory(st State, id ID) (CustomerHistory, bool) {
	c, ok := st.customer(id)
	if !ok {
		return CustomerHistory{}, false
	}
	h := CustomerHistory{Customer: c, Vehicles: []Vehicle{}, Orders: []InvoiceRow{}}
	for _, v := range st.Vehicles {
		if v.CustomerID == id {
			h.Vehicles = append(h.Vehicles, v)
		}
	}
	for _, r := range st.rows() {
		if r.Order.CustomerID != id {
			continue
		}
		h.Orders = append(h.Orders, r)
		h.Revenue += r.Totals.Revenue
		h.Profit += r.Totals.Profit
	}
	sortNewestFirst(h.Orders)
	h.TotalOrders = len(h.Orders)
	return h, true
}
