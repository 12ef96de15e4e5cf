package core

import "context"

// Dataset is the full persisted state: the four collections. Orders holds
// both active and archived orders; the split is derived on load.
type Dataset struct {
	Customers    []Customer
	Vehicles     []Vehicle
	Orders       []Order
	ServiceTypes []string
}

// Backend persists the garage collections. Implementations assign
// identifiers on create, ignoring any id on the input, and report missing
// identifiers on update or delete with a *NotFoundError. Any other error is
// treated as a transport failure.
type Backend interface {
	Name() string

	ListCustomers(ctx context.Context) ([]Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, id ID, patch CustomerPatch) (Customer, error)
	DeleteCustomer(ctx context.Context, id ID) error

	ListVehicles(ctx context.Context) ([]Vehicle, error)
	CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
	UpdateVehicle(ctx context.Context, id ID, patch VehiclePatch) (Vehicle, error)
	DeleteVehicle(ctx context.Context, id ID) error

	ListOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, o Order) (Order, error)
	UpdateOrder(ctx context.Context, id ID, patch OrderPatch) (Order, error)
	DeleteOrder(ctx context.Context, id ID) error

	// ServiceTypes returns nil when no list was ever saved.
	ServiceTypes(ctx context.Context) ([]string, error)
	SaveServiceTypes(ctx context.Context, types []string) error

	// Replace discards all stored data and stores ds, returning it as
	// stored. Backends that cannot keep the given identifiers translate
	// them and rewrite references consistently.
	Replace(ctx context.Context, ds Dataset) (Dataset, error)

	Close() error
}
