package core

// InvoiceList is a filtered invoice listing with its summary cards.
type InvoiceList struct {
	Rows    []InvoiceRow   `json:"rows"`
	Summary InvoiceSummary `json:"summary"`
}

// Invoices lists orders from both sets that pass the filter.
func (s *Service) Invoices(f InvoiceFilter) InvoiceList {
	st := s.State()
	rows := Invoices(st, f)
	return InvoiceList{Rows: rows, Summary: SummarizeInvoices(st, rows)}
}

// Dashboard reports daily log figures over r.
func (s *Service) Dashboard(r DateRange) Dashboard {
	return BuildDashboard(s.State(), r)
}

// DailyLog groups the daily log over r by day.
func (s *Service) DailyLog(r DateRange) []DailyLogDay {
	return BuildDailyLog(s.State(), r)
}

// CustomerHistory returns every order of a customer.
func (s *Service) CustomerHistory(id ID) (CustomerHistory, error) {
	h, ok := BuildCustomerHistory(s.State(), id)
	if !ok {
		return CustomerHistory{}, NotFound("customer", id)
	}
	return h, nil
}

// Invoice returns the printable invoice of an order.
func (s *Service) Invoice(id ID) (InvoiceDocument, error) {
	doc, ok := BuildInvoice(s.State(), id)
	if !ok {
		return InvoiceDocument{}, NotFound("order", id)
	}
	return doc, nil
}

// ResolvePreset resolves a date preset against the service clock.
func (s *Service) ResolvePreset(name string) (DateRange, error) {
	return ResolvePreset(name, s.Today())
}
