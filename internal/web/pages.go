package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/garazh/internal/core"
)

// Page identifies one screen of the application.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageCustomers Page = "customers"
	PageVehicles  Page = "vehicles"
	PageOrders    Page = "orders"
	PageDailyLog  Page = "dailylog"
	PageInvoices  Page = "invoices"
	PageSettings  Page = "settings"
)

// Pages lists every page in menu order.
var Pages = []Page{
	PageDashboard, PageCustomers, PageVehicles, PageOrders,
	PageDailyLog, PageInvoices, PageSettings,
}

// ParsePage returns the page named s.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", &core.ValidationError{Field: "page", Message: fmt.Sprintf("unknown page %q", s)}
}

type catalogPage struct {
	Customers    []core.Customer `json:"customers"`
	Vehicles     []core.Vehicle  `json:"vehicles"`
	ServiceTypes []string        `json:"serviceTypes,omitempty"`
	Orders       []core.Order    `json:"orders,omitempty"`
}

type settingsPage struct {
	ServiceTypes []string `json:"serviceTypes"`
	Backend      string   `json:"backend"`
	BackupName   string   `json:"backupName"`
}

// pageData builds the data one page shows. Every page has exactly one case.
func (s *Server) pageData(p Page, r *http.Request) (any, error) {
	switch p {
	case PageDashboard:
		rng, err := s.parseRange(r.URL.Query())
		if err != nil {
			return nil, err
		}
		return s.service.Dashboard(rng), nil
	case PageCustomers, PageVehicles:
		return catalogPage{Customers: s.service.Customers(), Vehicles: s.service.Vehicles()}, nil
	case PageOrders:
		return catalogPage{
			Customers:    s.service.Customers(),
			Vehicles:     s.service.Vehicles(),
			ServiceTypes: s.service.ServiceTypes(),
			Orders:       s.service.ActiveOrders(),
		}, nil
	case PageDailyLog:
		rng, err := s.parseRange(r.URL.Query())
		if err != nil {
			return nil, err
		}
		return s.service.DailyLog(rng), nil
	case PageInvoices:
		f, err := s.parseInvoiceFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		return s.service.Invoices(f), nil
	case PageSettings:
		return settingsPage{
			ServiceTypes: s.service.ServiceTypes(),
			Backend:      s.service.BackendName(),
			BackupName:   core.BackupFileName(s.service.Today()),
		}, nil
	}
	panic(fmt.Sprintf("web: page %q has no data", p))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data, err := s.pageData(p, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": p, "data": data})
}
