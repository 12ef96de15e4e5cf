package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// memBackend is an in-memory Backend for tests. When fail is set every
// write returns it. The first loadFailures calls to ListCustomers return
// errUnreachable.
type memBackend struct {
	mu    sync.Mutex
	next  int
	ds    Dataset
	fail  error
	saved bool

	loadFailures int
	loadCalls    int
}

var errUnreachable = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func newMemBackend(ds Dataset) *memBackend {
	return &memBackend{ds: ds, saved: ds.ServiceTypes != nil}
}

func (b *memBackend) id() ID {
	b.next++
	return ID(fmt.Sprintf("m-%d", b.next))
}

func (b *memBackend) Name() string { return "memory" }
func (b *memBackend) Close() error { return nil }

func (b *memBackend) ListCustomers(context.Context) ([]Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadCalls++
	if b.loadCalls <= b.loadFailures {
		return nil, errUnreachable
	}
	return append([]Customer{}, b.ds.Customers...), nil
}

func (b *memBackend) CreateCustomer(_ context.Context, c Customer) (Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Customer{}, b.fail
	}
	c.ID = b.id()
	b.ds.Customers = append(b.ds.Customers, c)
	return c, nil
}

func (b *memBackend) UpdateCustomer(_ context.Context, id ID, p CustomerPatch) (Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Customer{}, b.fail
	}
	for i, c := range b.ds.Customers {
		if c.ID == id {
			b.ds.Customers[i] = p.Apply(c)
			return b.ds.Customers[i], nil
		}
	}
	return Customer{}, NotFound("customer", id)
}

func (b *memBackend) DeleteCustomer(_ context.Context, id ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	for i, c := range b.ds.Customers {
		if c.ID == id {
			b.ds.Customers = append(b.ds.Customers[:i], b.ds.Customers[i+1:]...)
			return nil
		}
	}
	return NotFound("customer", id)
}

func (b *memBackend) ListVehicles(context.Context) ([]Vehicle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Vehicle{}, b.ds.Vehicles...), nil
}

func (b *memBackend) CreateVehicle(_ context.Context, v Vehicle) (Vehicle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Vehicle{}, b.fail
	}
	v.ID = b.id()
	b.ds.Vehicles = append(b.ds.Vehicles, v)
	return v, nil
}

func (b *memBackend) UpdateVehicle(_ context.Context, id ID, p VehiclePatch) (Vehicle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Vehicle{}, b.fail
	}
	for i, v := range b.ds.Vehicles {
		if v.ID == id {
			b.ds.Vehicles[i] = p.Apply(v)
			return b.ds.Vehicles[i], nil
		}
	}
	return Vehicle{}, NotFound("vehicle", id)
}

func (b *memBackend) DeleteVehicle(_ context.Context, id ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	for i, v := range b.ds.Vehicles {
		if v.ID == id {
			b.ds.Vehicles = append(b.ds.Vehicles[:i], b.ds.Vehicles[i+1:]...)
			return nil
		}
	}
	return NotFound("vehicle", id)
}

func (b *memBackend) ListOrders(context.Context) ([]Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneOrders(b.ds.Orders), nil
}

func (b *memBackend) CreateOrder(_ context.Context, o Order) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Order{}, b.fail
	}
	o = o.Clone()
	o.ID = b.id()
	b.ds.Orders = append(b.ds.Orders, o)
	return o.Clone(), nil
}

func (b *memBackend) UpdateOrder(_ context.Context, id ID, p OrderPatch) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Order{}, b.fail
	}
	if i := indexOf(b.ds.Orders, id); i >= 0 {
		b.ds.Orders[i] = p.Apply(b.ds.Orders[i])
		return b.ds.Orders[i].Clone(), nil
	}
	return Order{}, NotFound("order", id)
}

func (b *memBackend) DeleteOrder(_ context.Context, id ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	if i := indexOf(b.ds.Orders, id); i >= 0 {
		b.ds.Orders = append(b.ds.Orders[:i], b.ds.Orders[i+1:]...)
		return nil
	}
	return NotFound("order", id)
}

func (b *memBackend) ServiceTypes(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.saved {
		return nil, nil
	}
	return append([]string{}, b.ds.ServiceTypes...), nil
}

func (b *memBackend) SaveServiceTypes(_ context.Context, types []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.ds.ServiceTypes = append([]string{}, types...)
	b.saved = true
	return nil
}

func (b *memBackend) Replace(_ context.Context, ds Dataset) (Dataset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return Dataset{}, b.fail
	}
	b.ds = Dataset{
		Customers:    append([]Customer{}, ds.Customers...),
		Vehicles:     append([]Vehicle{}, ds.Vehicles...),
		Orders:       cloneOrders(ds.Orders),
		ServiceTypes: append([]string{}, ds.ServiceTypes...),
	}
	b.saved = true
	return ds, nil
}
