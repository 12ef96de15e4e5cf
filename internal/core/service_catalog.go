package core

import (
	"context"
	"strings"
)

// Customers returns all customers.
func (s *Service) Customers() []Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Customers()
}

// Customer returns one customer or a *NotFoundError.
func (s *Service) Customer(id ID) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.catalog.Customer(id)
	if !ok {
		return Customer{}, NotFound("customer", id)
	}
	return c, nil
}

// CreateCustomer validates and stores a new customer. Name and phone are required.
func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	c = trimCustomer(c)
	c.ID = ""
	if err := validateCustomer(c); err != nil {
		return Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored Customer
	if err := s.call("create customer", func() (err error) {
		stored, err = s.backend.CreateCustomer(ctx, c)
		return err
	}); err != nil {
		return Customer{}, err
	}
	s.catalog.AddCustomer(stored)
	return stored, nil
}

// UpdateCustomer applies a partial update to an existing customer.
func (s *Service) UpdateCustomer(ctx context.Context, id ID, patch CustomerPatch) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.catalog.Customer(id)
	if !ok {
		return Customer{}, NotFound("customer", id)
	}
	patch = trimCustomerPatch(patch)
	if err := validateCustomer(patch.Apply(existing)); err != nil {
		return Customer{}, err
	}

	var stored Customer
	if err := s.call("update customer", func() (err error) {
		stored, err = s.backend.UpdateCustomer(ctx, id, patch)
		return err
	}); err != nil {
		return Customer{}, err
	}
	s.catalog.UpdateCustomer(stored)
	return stored, nil
}

// DeleteCustomer removes a customer. Its vehicles and orders are kept and
// show a placeholder where the customer used to be.
func (s *Service) DeleteCustomer(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Customer(id); !ok {
		return NotFound("customer", id)
	}
	if err := s.call("delete customer", func() error {
		return s.backend.DeleteCustomer(ctx, id)
	}); err != nil {
		return err
	}
	s.catalog.DeleteCustomer(id)
	return nil
}

// Vehicles returns all vehicles.
func (s *Service) Vehicles() []Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Vehicles()
}

// VehiclesFor returns the vehicles of one customer.
func (s *Service) VehiclesFor(customerID ID) []Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.VehiclesFor(customerID)
}

// Vehicle returns one vehicle or a *NotFoundError.
func (s *Service) Vehicle(id ID) (Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.catalog.Vehicle(id)
	if !ok {
		return Vehicle{}, NotFound("vehicle", id)
	}
	return v, nil
}

// CreateVehicle validates and stores a new vehicle for an existing customer.
func (s *Service) CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error) {
	v = trimVehicle(v)
	v.ID = ""

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateVehicleLocked(v, true); err != nil {
		return Vehicle{}, err
	}

	var stored Vehicle
	if err := s.call("create vehicle", func() (err error) {
		stored, err = s.backend.CreateVehicle(ctx, v)
		return err
	}); err != nil {
		return Vehicle{}, err
	}
	s.catalog.AddVehicle(stored)
	return stored, nil
}

// UpdateVehicle applies a partial update to an existing vehicle.
func (s *Service) UpdateVehicle(ctx context.Context, id ID, patch VehiclePatch) (Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.catalog.Vehicle(id)
	if !ok {
		return Vehicle{}, NotFound("vehicle", id)
	}
	patch = trimVehiclePatch(patch)
	merged := patch.Apply(existing)
	if err := s.validateVehicleLocked(merged, merged.CustomerID != existing.CustomerID); err != nil {
		return Vehicle{}, err
	}

	var stored Vehicle
	if err := s.call("update vehicle", func() (err error) {
		stored, err = s.backend.UpdateVehicle(ctx, id, patch)
		return err
	}); err != nil {
		return Vehicle{}, err
	}
	s.catalog.UpdateVehicle(stored)
	return stored, nil
}

// DeleteVehicle removes a vehicle without touching its orders.
func (s *Service) DeleteVehicle(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Vehicle(id); !ok {
		return NotFound("vehicle", id)
	}
	if err := s.call("delete vehicle", func() error {
		return s.backend.DeleteVehicle(ctx, id)
	}); err != nil {
		return err
	}
	s.catalog.DeleteVehicle(id)
	return nil
}

// ServiceTypes returns the service type labels.
func (s *Service) ServiceTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.ServiceTypes()
}

// AddServiceType appends a new label. Blank and duplicate labels are refused.
func (s *Service) AddServiceType(ctx context.Context, label string) ([]string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, requiredField("serviceType")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog.HasServiceType(label) {
		return nil, &ValidationError{Field: "serviceType", Message: "already exists"}
	}
	next := s.catalog.withServiceType(label)
	if err := s.call("save service types", func() error {
		return s.backend.SaveServiceTypes(ctx, next)
	}); err != nil {
		return nil, err
	}
	s.catalog.SetServiceTypes(next)
	return s.catalog.ServiceTypes(), nil
}

// RemoveServiceType deletes a label. Orders keep their own copy of it.
func (s *Service) RemoveServiceType(ctx context.Context, label string) ([]string, error) {
	label = strings.TrimSpace(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.HasServiceType(label) {
		return nil, NotFound("service type", ID(label))
	}
	next := s.catalog.withoutServiceType(label)
	if err := s.call("save service types", func() error {
		return s.backend.SaveServiceTypes(ctx, next)
	}); err != nil {
		return nil, err
	}
	s.catalog.SetServiceTypes(next)
	return s.catalog.ServiceTypes(), nil
}

func validateCustomer(c Customer) error {
	if c.Name == "" {
		return requiredField("name")
	}
	if c.Phone == "" {
		return requiredField("phone")
	}
	return nil
}

// validateVehicleLocked checks required fields. The owner must exist only
// when checkOwner is set; an unchanged owner may dangle after a delete.
func (s *Service) validateVehicleLocked(v Vehicle, checkOwner bool) error {
	switch {
	case v.CustomerID.IsZero():
		return requiredField("customerId")
	case v.Make == "":
		return requiredField("make")
	case v.Model == "":
		return requiredField("model")
	case v.Plate == "":
		return requiredField("plate")
	}
	if _, ok := s.catalog.Customer(v.CustomerID); checkOwner && !ok {
		return invalidReference("customerId", "customer", v.CustomerID)
	}
	return nil
}

func trimCustomer(c Customer) Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	return c
}

func trimVehicle(v Vehicle) Vehicle {
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.Plate = strings.TrimSpace(v.Plate)
	v.Color = strings.TrimSpace(v.Color)
	v.VIN = strings.TrimSpace(v.VIN)
	return v
}

func trimCustomerPatch(p CustomerPatch) CustomerPatch {
	p.Name = trimPtr(p.Name)
	p.Phone = trimPtr(p.Phone)
	p.Email = trimPtr(p.Email)
	p.Address = trimPtr(p.Address)
	return p
}

func trimVehiclePatch(p VehiclePatch) VehiclePatch {
	p.Make = trimPtr(p.Make)
	p.Model = trimPtr(p.Model)
	p.Plate = trimPtr(p.Plate)
	p.Color = trimPtr(p.Color)
	p.VIN = trimPtr(p.VIN)
	return p
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
