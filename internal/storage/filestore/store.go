// Package filestore persists the garage collections as one JSON document
// on local disk. Every write replaces the file atomically.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/garazh/internal/core"
)

// Name identifies this backend in logs and metrics.
const Name = "file"

// document is the on-disk layout. Each collection sits under its own key.
type document struct {
	Customers    []core.Customer `json:"garazh_customers"`
	Vehicles     []core.Vehicle  `json:"garazh_vehicles"`
	Orders       []core.Order    `json:"garazh_orders"`
	ServiceTypes *[]string       `json:"garazh_serviceTypes,omitempty"`
}

// Store is a core.Backend over a JSON file.
type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

var _ core.Backend = (*Store)(nil)

// Open loads the document at path. A missing or empty file starts an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	doc, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", path, err)
	}
	return &Store{path: path, doc: doc}, nil
}

// Name implements core.Backend.
func (s *Store) Name() string { return Name }

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Close implements core.Backend. Every write is already on disk.
func (s *Store) Close() error { return nil }

func (s *Store) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Customer{}, s.doc.Customers...), nil
}

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	c.ID = newID()
	err := s.mutate(ctx, func(d *document) error {
		d.Customers = append(d.Customers, c)
		return nil
	})
	if err != nil {
		return core.Customer{}, err
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id core.ID, patch core.CustomerPatch) (core.Customer, error) {
	var out core.Customer
	err := s.mutate(ctx, func(d *document) error {
		for i := range d.Customers {
			if d.Customers[i].ID == id {
				d.Customers[i] = patch.Apply(d.Customers[i])
				out = d.Customers[i]
				return nil
			}
		}
		return core.NotFound("customer", id)
	})
	return out, err
}

func (s *Store) DeleteCustomer(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, func(d *document) error {
		for i := range d.Customers {
			if d.Customers[i].ID == id {
				d.Customers = append(d.Customers[:i:i], d.Customers[i+1:]...)
				return nil
			}
		}
		return core.NotFound("customer", id)
	})
}

func (s *Store) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Vehicle{}, s.doc.Vehicles...), nil
}

func (s *Store) CreateVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error) {
	v.ID = newID()
	err := s.mutate(ctx, func(d *document) error {
		d.Vehicles = append(d.Vehicles, v)
		return nil
	})
	if err != nil {
		return core.Vehicle{}, err
	}
	return v, nil
}

func (s *Store) UpdateVehicle(ctx context.Context, id core.ID, patch core.VehiclePatch) (core.Vehicle, error) {
	var out core.Vehicle
	err := s.mutate(ctx, func(d *document) error {
		for i := range d.Vehicles {
			if d.Vehicles[i].ID == id {
				d.Vehicles[i] = patch.Apply(d.Vehicles[i])
				out = d.Vehicles[i]
				return nil
			}
		}
		return core.NotFound("vehicle", id)
	})
	return out, err
}

func (s *Store) DeleteVehicle(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, func(d *document) error {
		for i := range d.Vehicles {
			if d.Vehicles[i].ID == id {
				d.Vehicles = append(d.Vehicles[:i:i], d.Vehicles[i+1:]...)
				return nil
			}
		}
		return core.NotFound("vehicle", id)
	})
}

func (s *Store) ListOrders(ctx context.Context) ([]core.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.doc.Orders), nil
}

func (s *Store) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	o = o.Clone()
	o.ID = newID()
	err := s.mutate(ctx, func(d *document) error {
		d.Orders = append(d.Orders, o.Clone())
		return nil
	})
	if err != nil {
		return core.Order{}, err
	}
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id core.ID, patch core.OrderPatch) (core.Order, error) {
	var out core.Order
	err := s.mutate(ctx, func(d *document) error {
		for i := range d.Orders {
			if d.Orders[i].ID == id {
				d.Orders[i] = patch.Apply(d.Orders[i])
				out = d.Orders[i].Clone()
				return nil
			}
		}
		return core.NotFound("order", id)
	})
	return out, err
}

func (s *Store) DeleteOrder(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, func(d *document) error {
		for i := range d.Orders {
			if d.Orders[i].ID == id {
				d.Orders = append(d.Orders[:i:i], d.Orders[i+1:]...)
				return nil
			}
		}
		return core.NotFound("order", id)
	})
}

// ServiceTypes returns nil until a list has been saved.
func (s *Store) ServiceTypes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.ServiceTypes == nil {
		return nil, nil
	}
	return append([]string{}, *s.doc.ServiceTypes...), nil
}

func (s *Store) SaveServiceTypes(ctx context.Context, types []string) error {
	saved := append([]string{}, types...)
	return s.mutate(ctx, func(d *document) error {
		d.ServiceTypes = &saved
		return nil
	})
}

// Replace stores ds verbatim. Records without an id get a fresh one.
func (s *Store) Replace(ctx context.Context, ds core.Dataset) (core.Dataset, error) {
	next := document{
		Customers: append([]core.Customer{}, ds.Customers...),
		Vehicles:  append([]core.Vehicle{}, ds.Vehicles...),
		Orders:    cloneOrders(ds.Orders),
	}
	types := append([]string{}, ds.ServiceTypes...)
	next.ServiceTypes = &types

	for i := range next.Customers {
		if next.Customers[i].ID.IsZero() {
			next.Customers[i].ID = newID()
		}
	}
	for i := range next.Vehicles {
		if next.Vehicles[i].ID.IsZero() {
			next.Vehicles[i].ID = newID()
		}
	}
	for i := range next.Orders {
		if next.Orders[i].ID.IsZero() {
			next.Orders[i].ID = newID()
		}
	}

	err := s.mutate(ctx, func(d *document) error {
		*d = next
		return nil
	})
	if err != nil {
		return core.Dataset{}, err
	}
	return core.Dataset{
		Customers:    append([]core.Customer{}, next.Customers...),
		Vehicles:     append([]core.Vehicle{}, next.Vehicles...),
		Orders:       cloneOrders(next.Orders),
		ServiceTypes: append([]string{}, types...),
	}, nil
}

// mutate applies fn to a copy of the document and persists it. The
// in-memory document changes only once the file was written.
func (s *Store) mutate(ctx context.Context, fn func(*document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := writeDocument(s.path, next); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.doc = next
	return nil
}

func (d document) clone() document {
	out := document{
		Customers: append([]core.Customer(nil), d.Customers...),
		Vehicles:  append([]core.Vehicle(nil), d.Vehicles...),
		Orders:    cloneOrders(d.Orders),
	}
	if d.ServiceTypes != nil {
		types := append([]string{}, *d.ServiceTypes...)
		out.ServiceTypes = &types
	}
	return out
}

// readDocument loads the persisted JSON file if it exists.
func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, nil
		}
		return document{}, err
	}
	if len(data) == 0 {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, err
	}
	return doc, nil
}

// writeDocument writes to a temporary file in the same directory and
// renames it over path.
func writeDocument(path string, doc document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func newID() core.ID {
	return core.ID(uuid.NewString())
}

func cloneOrders(src []core.Order) []core.Order {
	out := make([]core.Order, len(src))
	for i, o := range src {
		out[i] = o.Clone()
	}
	return out
}
