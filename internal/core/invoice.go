package core

// InvoicePart is a priced part line on a printed invoice.
type InvoicePart struct {
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// InvoiceLine is one service on a printed invoice.
type InvoiceLine struct {
	ServiceType string        `json:"serviceType"`
	Labor       float64       `json:"labor"`
	Parts       []InvoicePart `json:"parts"`
	Subtotal    float64       `json:"subtotal"`
}

// InvoiceDocument carries everything a printable invoice shows.
type InvoiceDocument struct {
	Number       string        `json:"number"`
	Date         Date          `json:"date"`
	Status       Status        `json:"status"`
	StatusLabel  string        `json:"statusLabel"`
	Paid         bool          `json:"paid"`
	Notes        string        `json:"notes"`
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	Address      string        `json:"address"`
	Vehicle      string        `json:"vehicle"`
	Plate        string        `json:"plate"`
	VIN          string        `json:"vin"`
	Year         ModelYear     `json:"year"`
	Lines        []InvoiceLine `json:"lines"`
	Totals       Totals        `json:"totals"`
}

// BuildInvoice assembles the printable invoice for an order in either set.
func BuildInvoice(st State, id ID) (InvoiceDocument, bool) {
	var (
		order Order
		found bool
	)
	for _, set := range [][]Order{st.Active, st.Archived} {
		if i := indexOf(set, id); i >= 0 {
			order, found = set[i], true
			break
		}
	}
	if !found {
		return InvoiceDocument{}, false
	}

	doc := InvoiceDocument{
		Number:       InvoiceNumber(order.ID),
		Date:         order.Date(),
		Status:       order.Status,
		StatusLabel:  order.Status.Label(),
		Paid:         order.Paid,
		Notes:        order.Notes,
		CustomerName: MissingLabel,
		Vehicle:      MissingLabel,
		Totals:       order.Totals(),
		Lines:        make([]InvoiceLine, 0, len(order.Services)),
	}
	if c, ok := st.customer(order.CustomerID); ok {
		doc.CustomerName = c.Name
		doc.Phone = c.Phone
		doc.Email = c.Email
		doc.Address = c.Address
	}
	if v, ok := st.vehicle(order.VehicleID); ok {
		doc.Vehicle = v.Label()
		doc.Plate = v.Plate
		doc.VIN = v.VIN
		doc.Year = v.Year
	}

	for _, svc := range order.Services {
		line := InvoiceLine{
			ServiceType: svc.ServiceType,
			Labor:       float64(svc.LaborPrice),
			Parts:       make([]InvoicePart, 0, len(svc.Parts)),
		}
		line.Subtotal = line.Labor
		for _, p := range svc.Parts {
			qty := p.Qty.Effective()
			part := InvoicePart{
				Name:      p.Name,
				Qty:       qty,
				UnitPrice: float64(p.SellPrice),
				Amount:    float64(p.SellPrice) * qty,
			}
			line.Subtotal += part.Amount
			line.Parts = append(line.Parts, part)
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc, true
}
