package web

import (
	"net/http"

	"github.com/JonMunkholm/garazh/internal/web/views"
)

func (s *Server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseInvoiceFilter(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Invoices(f))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Dashboard(rng))
}

// handlePrintInvoice renders the printable invoice page.
func (s *Server) handlePrintInvoice(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.Invoice(idParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Invoice(doc).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}
