package core

import "strings"

// CatalogStore holds customers, vehicles and the service type list in
// memory. It is not safe for concurrent use; Service guards it.
type CatalogStore struct {
	customers    []Customer
	vehicles     []Vehicle
	serviceTypes []string
}

// NewCatalogStore returns a store seeded with the given collections.
func NewCatalogStore(customers []Customer, vehicles []Vehicle, serviceTypes []string) *CatalogStore {
	return &CatalogStore{
		customers:    append([]Customer(nil), customers...),
		vehicles:     append([]Vehicle(nil), vehicles...),
		serviceTypes: dedupeLabels(serviceTypes),
	}
}

// Customers returns a copy of all customers.
func (s *CatalogStore) Customers() []Customer {
	return append([]Customer{}, s.customers...)
}

// Customer looks a customer up by id.
func (s *CatalogStore) Customer(id ID) (Customer, bool) {
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// AddCustomer appends a stored customer.
func (s *CatalogStore) AddCustomer(c Customer) {
	s.customers = append(s.customers, c)
}

// UpdateCustomer replaces the customer with the same id. It is a no-op
// returning false when no such customer exists.
func (s *CatalogStore) UpdateCustomer(c Customer) bool {
	for i := range s.customers {
		if s.customers[i].ID == c.ID {
			s.customers[i] = c
			return true
		}
	}
	return false
}

// DeleteCustomer removes a customer. Vehicles and orders referencing it
// are left untouched.
func (s *CatalogStore) DeleteCustomer(id ID) bool {
	for i := range s.customers {
		if s.customers[i].ID == id {
			s.customers = append(s.customers[:i], s.customers[i+1:]...)
			return true
		}
	}
	return false
}

// Vehicles returns a copy of all vehicles.
func (s *CatalogStore) Vehicles() []Vehicle {
	return append([]Vehicle{}, s.vehicles...)
}

// VehiclesFor returns the vehicles owned by a customer.
func (s *CatalogStore) VehiclesFor(customerID ID) []Vehicle {
	out := []Vehicle{}
	for _, v := range s.vehicles {
		if v.CustomerID == customerID {
			out = append(out, v)
		}
	}
	return out
}

// Vehicle looks a vehicle up by id.
func (s *CatalogStore) Vehicle(id ID) (Vehicle, bool) {
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// AddVehicle appends a stored vehicle.
func (s *CatalogStore) AddVehicle(v Vehicle) {
	s.vehicles = append(s.vehicles, v)
}

// UpdateVehicle replaces the vehicle with the same id; no-op if absent.
func (s *CatalogStore) UpdateVehicle(v Vehicle) bool {
	for i := range s.vehicles {
		if s.vehicles[i].ID == v.ID {
			s.vehicles[i] = v
			return true
		}
	}
	return false
}

// DeleteVehicle removes a vehicle without touching orders that reference it.
func (s *CatalogStore) DeleteVehicle(id ID) bool {
	for i := range s.vehicles {
		if s.vehicles[i].ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return true
		}
	}
	return false
}

// ServiceTypes returns a copy of the service type labels.
func (s *CatalogStore) ServiceTypes() []string {
	return append([]string{}, s.serviceTypes...)
}

// HasServiceType reports whether label is already listed.
func (s *CatalogStore) HasServiceType(label string) bool {
	label = strings.TrimSpace(label)
	for _, t := range s.serviceTypes {
		if t == label {
			return true
		}
	}
	return false
}

// SetServiceTypes replaces the list, dropping blanks and duplicates.
func (s *CatalogStore) SetServiceTypes(types []string) {
	s.serviceTypes = dedupeLabels(types)
}

// withServiceType returns the list with label appended.
func (s *CatalogStore) withServiceType(label string) []string {
	return append(s.ServiceTypes(), label)
}

// withoutServiceType returns the list without label.
func (s *CatalogStore) withoutServiceType(label string) []string {
	out := make([]string, 0, len(s.serviceTypes))
	for _, t := range s.serviceTypes {
		if t != label {
			out = append(out, t)
		}
	}
	return out
}

func dedupeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
