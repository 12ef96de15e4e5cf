package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/garazh/internal/metrics"
)

// OrderDraft is the input for a new order.
type OrderDraft struct {
	CustomerID ID            `json:"customerId"`
	VehicleID  ID            `json:"vehicleId"`
	Status     Status        `json:"status"`
	Paid       bool          `json:"paid"`
	Notes      string        `json:"notes"`
	Services   []ServiceLine `json:"services"`
}

// ActiveOrders returns the orders not yet moved to the daily log.
func (s *Service) ActiveOrders() []Order {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.Active()
}

// ArchivedOrders returns the daily log.
func (s *Service) ArchivedOrders() []Order {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.Archived()
}

// Order returns an order from either set and whether it is archived.
func (s *Service) Order(id ID) (Order, bool, error) {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, archived, ok := s.orders.Find(id)
	if !ok {
		return Order{}, false, NotFound("order", id)
	}
	return o, archived, nil
}

// CreateOrder stores a new order in the active set. It starts today; a
// completed order also ends today. Parts without a name are dropped.
func (s *Service) CreateOrder(ctx context.Context, d OrderDraft) (Order, error) {
	today := s.Today()
	o := Order{
		CustomerID: d.CustomerID,
		VehicleID:  d.VehicleID,
		Status:     d.Status,
		StartDate:  today,
		Paid:       d.Paid,
		Notes:      strings.TrimSpace(d.Notes),
		Services:   cleanServices(d.Services),
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	EnforceEndDate(&o, today)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateOrderLocked(o, true, true); err != nil {
		return Order{}, err
	}

	var stored Order
	if err := s.call("create order", func() (err error) {
		stored, err = s.backend.CreateOrder(ctx, o)
		return err
	}); err != nil {
		return Order{}, err
	}
	s.orders.Add(stored)
	s.rolloverLocked(today)
	metrics.RecordOrderEvent("created")
	return stored, nil
}

// UpdateOrder applies a partial update to an order in either set. A given
// services list replaces the existing one. Moving to Completed stamps today
// as the end date unless one is given; any other status clears it.
func (s *Service) UpdateOrder(ctx context.Context, id ID, patch OrderPatch) (Order, error) {
	today := s.Today()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _, ok := s.orders.Find(id)
	if !ok {
		return Order{}, NotFound("order", id)
	}
	if patch.Services != nil {
		cleaned := cleanServices(*patch.Services)
		patch.Services = &cleaned
	}

	merged := patch.Apply(existing)
	merged.Notes = strings.TrimSpace(merged.Notes)
	if merged.Status == "" {
		merged.Status = StatusPending
	}
	EnforceEndDate(&merged, today)
	if err := s.validateOrderLocked(merged, merged.CustomerID != existing.CustomerID, merged.VehicleID != existing.VehicleID); err != nil {
		return Order{}, err
	}

	var stored Order
	if err := s.call("update order", func() (err error) {
		stored, err = s.backend.UpdateOrder(ctx, id, FullOrderPatch(merged))
		return err
	}); err != nil {
		return Order{}, err
	}
	s.orders.Replace(stored)
	s.rolloverLocked(today)
	if stored.Status == StatusCompleted && existing.Status != StatusCompleted {
		metrics.RecordOrderEvent("completed")
	}
	return stored, nil
}

// MarkComplete moves an order to Completed.
func (s *Service) MarkComplete(ctx context.Context, id ID) (Order, error) {
	status := StatusCompleted
	return s.UpdateOrder(ctx, id, OrderPatch{Status: &status})
}

// TogglePaid flips the paid flag of an order in either set.
func (s *Service) TogglePaid(ctx context.Context, id ID) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _, ok := s.orders.Find(id)
	if !ok {
		return Order{}, NotFound("order", id)
	}
	paid := !existing.Paid

	var stored Order
	if err := s.call("update order", func() (err error) {
		stored, err = s.backend.UpdateOrder(ctx, id, OrderPatch{Paid: &paid})
		return err
	}); err != nil {
		return Order{}, err
	}
	s.orders.Replace(stored)
	metrics.RecordOrderEvent("payment_toggled")
	return stored, nil
}

// DeleteOrder removes an order from whichever set holds it.
func (s *Service) DeleteOrder(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.orders.Find(id); !ok {
		return NotFound("order", id)
	}
	if err := s.call("delete order", func() error {
		return s.backend.DeleteOrder(ctx, id)
	}); err != nil {
		return err
	}
	s.orders.Remove(id)
	s.rolloverLocked(s.Today())
	metrics.RecordOrderEvent("deleted")
	return nil
}

// validateOrderLocked checks required fields, and the references flagged
// for checking. Only changed references are checked; unchanged ones may
// dangle after a delete.
func (s *Service) validateOrderLocked(o Order, checkCustomer, checkVehicle bool) error {
	switch {
	case o.VehicleID.IsZero():
		return requiredField("vehicleId")
	case o.CustomerID.IsZero():
		return requiredField("customerId")
	case len(o.Services) == 0:
		return &ValidationError{Field: "services", Message: "at least one service is required"}
	case !o.Status.Valid():
		return &ValidationError{Field: "status", Message: "invalid status " + string(o.Status)}
	}
	if _, ok := s.catalog.Customer(o.CustomerID); checkCustomer && !ok {
		return invalidReference("customerId", "customer", o.CustomerID)
	}
	if _, ok := s.catalog.Vehicle(o.VehicleID); checkVehicle && !ok {
		return invalidReference("vehicleId", "vehicle", o.VehicleID)
	}
	return nil
}

// cleanServices trims labels and drops parts that have no name.
func cleanServices(services []ServiceLine) []ServiceLine {
	out := make([]ServiceLine, 0, len(services))
	for _, svc := range services {
		svc.ServiceType = strings.TrimSpace(svc.ServiceType)
		parts := make([]Part, 0, len(svc.Parts))
		for _, p := range svc.Parts {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				continue
			}
			parts = append(parts, p)
		}
		svc.Parts = parts
		out = append(out, svc)
	}
	return out
}
