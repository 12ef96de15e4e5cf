// Package postgres stores the garage collections in PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/garazh/internal/core"
)

// Name identifies this backend in logs and metrics.
const Name = "postgres"

const serviceTypesKey = "service_types"

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect parses databaseURL, applies opts and verifies the connection.
func Connect(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(databaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// Store is a core.Backend over PostgreSQL. Identifiers are UUIDs; see
// Replace for how other identifiers are kept.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Backend = (*Store)(nil)

// New wraps an open pool. The store owns the pool and closes it on Close.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Name implements core.Backend.
func (s *Store) Name() string { return Name }

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const (
	customerColumns = `id, name, phone, email, address`
	vehicleColumns  = `id, customer_id, make, model, year, plate, color, vin`
	orderColumns    = `id, customer_id, vehicle_id, status, start_date, end_date, paid, notes, services`
)

// ============================================================================
// Customers
// ============================================================================

func scanCustomer(row pgx.Row) (core.Customer, error) {
	var (
		c  core.Customer
		id pgtype.UUID
	)
	if err := row.Scan(&id, &c.Name, &c.Phone, &c.Email, &c.Address); err != nil {
		return core.Customer{}, err
	}
	c.ID = fromPgUUID(id)
	return c, nil
}

func customerArgs(id pgtype.UUID, c core.Customer) []any {
	return []any{id, c.Name, c.Phone, c.Email, c.Address}
}

func (s *Store) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Customer, error) {
		return scanCustomer(row)
	})
}

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		customerArgs(pgUUID(id), c)...)
	if err != nil {
		return core.Customer{}, err
	}
	c.ID = core.ID(id.String())
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id core.ID, patch core.CustomerPatch) (core.Customer, error) {
	key, ok := lookupUUID(id)
	if !ok {
		return core.Customer{}, core.NotFound("customer", id)
	}
	var out core.Customer
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, key)
		current, err := scanCustomer(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return core.NotFound("customer", id)
		}
		if err != nil {
			return err
		}
		out = patch.Apply(current)
		_, err = tx.Exec(ctx,
			`UPDATE customers SET name = $2, phone = $3, email = $4, address = $5 WHERE id = $1`,
			customerArgs(key, out)...)
		return err
	})
	return out, err
}

func (s *Store) DeleteCustomer(ctx context.Context, id core.ID) error {
	return s.deleteByID(ctx, "customer", `DELETE FROM customers WHERE id = $1`, id)
}

// ============================================================================
// Vehicles
// ============================================================================

func scanVehicle(row pgx.Row) (core.Vehicle, error) {
	var (
		v       core.Vehicle
		id, cid pgtype.UUID
		year    int32
	)
	if err := row.Scan(&id, &cid, &v.Make, &v.Model, &year, &v.Plate, &v.Color, &v.VIN); err != nil {
		return core.Vehicle{}, err
	}
	v.ID = fromPgUUID(id)
	v.CustomerID = fromPgUUID(cid)
	v.Year = core.ModelYear(year)
	return v, nil
}

func vehicleArgs(id pgtype.UUID, v core.Vehicle) []any {
	return []any{id, refUUID("customer", v.CustomerID), v.Make, v.Model, int32(v.Year), v.Plate, v.Color, v.VIN}
}

func (s *Store) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Vehicle, error) {
		return scanVehicle(row)
	})
}

func (s *Store) CreateVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vehicles (`+vehicleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		vehicleArgs(pgUUID(id), v)...)
	if err != nil {
		return core.Vehicle{}, err
	}
	v.ID = core.ID(id.String())
	return v, nil
}

func (s *Store) UpdateVehicle(ctx context.Context, id core.ID, patch core.VehiclePatch) (core.Vehicle, error) {
	key, ok := lookupUUID(id)
	if !ok {
		return core.Vehicle{}, core.NotFound("vehicle", id)
	}
	var out core.Vehicle
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, key)
		current, err := scanVehicle(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return core.NotFound("vehicle", id)
		}
		if err != nil {
			return err
		}
		out = patch.Apply(current)
		_, err = tx.Exec(ctx,
			`UPDATE vehicles SET customer_id = $2, make = $3, model = $4, year = $5,
				plate = $6, color = $7, vin = $8 WHERE id = $1`,
			vehicleArgs(key, out)...)
		return err
	})
	return out, err
}

func (s *Store) DeleteVehicle(ctx context.Context, id core.ID) error {
	return s.deleteByID(ctx, "vehicle", `DELETE FROM vehicles WHERE id = $1`, id)
}

// ============================================================================
// Orders
// ============================================================================

func scanOrder(row pgx.Row) (core.Order, error) {
	var (
		o            core.Order
		id, cid, vid pgtype.UUID
		status       string
		start, end   pgtype.Date
		servicesJSON []byte
	)
	if err := row.Scan(&id, &cid, &vid, &status, &start, &end, &o.Paid, &o.Notes, &servicesJSON); err != nil {
		return core.Order{}, err
	}
	o.ID = fromPgUUID(id)
	o.CustomerID = fromPgUUID(cid)
	o.VehicleID = fromPgUUID(vid)
	o.Status = core.Status(status)
	o.StartDate = fromPgDate(start)
	o.EndDate = fromPgDate(end)
	services, err := decodeServices(servicesJSON)
	if err != nil {
		return core.Order{}, fmt.Errorf("order %s: %w", o.ID, err)
	}
	o.Services = services
	return o, nil
}

func orderArgs(id pgtype.UUID, o core.Order) ([]any, error) {
	services, err := encodeServices(o.Services)
	if err != nil {
		return nil, err
	}
	return []any{
		id,
		refUUID("customer", o.CustomerID),
		refUUID("vehicle", o.VehicleID),
		string(o.Status),
		pgDate(o.StartDate),
		pgDate(o.EndDate),
		o.Paid,
		o.Notes,
		services,
	}, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]core.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM service_orders ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Order, error) {
		return scanOrder(row)
	})
}

func (s *Store) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	id := uuid.New()
	args, err := orderArgs(pgUUID(id), o)
	if err != nil {
		return core.Order{}, err
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO service_orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		args...); err != nil {
		return core.Order{}, err
	}
	o = o.Clone()
	o.ID = core.ID(id.String())
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id core.ID, patch core.OrderPatch) (core.Order, error) {
	key, ok := lookupUUID(id)
	if !ok {
		return core.Order{}, core.NotFound("order", id)
	}
	var out core.Order
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1 FOR UPDATE`, key)
		current, err := scanOrder(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return core.NotFound("order", id)
		}
		if err != nil {
			return err
		}
		out = patch.Apply(current)
		args, err := orderArgs(key, out)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE service_orders SET customer_id = $2, vehicle_id = $3, status = $4,
				start_date = $5, end_date = $6, paid = $7, notes = $8, services = $9
			WHERE id = $1`,
			args...)
		return err
	})
	return out, err
}

func (s *Store) DeleteOrder(ctx context.Context, id core.ID) error {
	return s.deleteByID(ctx, "order", `DELETE FROM service_orders WHERE id = $1`, id)
}

// ============================================================================
// Service types
// ============================================================================

// ServiceTypes returns nil until a list has been saved.
func (s *Store) ServiceTypes(ctx context.Context) ([]string, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key = $1`, serviceTypesKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	types := []string{}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decode service types: %w", err)
	}
	return types, nil
}

func (s *Store) SaveServiceTypes(ctx context.Context, types []string) error {
	return saveServiceTypes(ctx, s.pool, types)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveServiceTypes(ctx context.Context, db execer, types []string) error {
	if types == nil {
		types = []string{}
	}
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		serviceTypesKey, raw)
	return err
}

// ============================================================================
// Bulk replace
// ============================================================================

// Replace empties every table and loads ds in one transaction. Identifiers
// that are not UUIDs are mapped to derived UUIDs, references included, and
// the returned dataset carries the stored identifiers.
func (s *Store) Replace(ctx context.Context, ds core.Dataset) (core.Dataset, error) {
	stored := translate(ds)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE customers, vehicles, service_orders`); err != nil {
			return err
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"customers"},
			strings.Split(customerColumns, ", "),
			pgx.CopyFromSlice(len(stored.Customers), func(i int) ([]any, error) {
				c := stored.Customers[i]
				return customerArgs(pgUUID(storedUUID("customer", c.ID)), c), nil
			})); err != nil {
			return fmt.Errorf("copy customers: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"vehicles"},
			strings.Split(vehicleColumns, ", "),
			pgx.CopyFromSlice(len(stored.Vehicles), func(i int) ([]any, error) {
				v := stored.Vehicles[i]
				return vehicleArgs(pgUUID(storedUUID("vehicle", v.ID)), v), nil
			})); err != nil {
			return fmt.Errorf("copy vehicles: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"service_orders"},
			strings.Split(orderColumns, ", "),
			pgx.CopyFromSlice(len(stored.Orders), func(i int) ([]any, error) {
				o := stored.Orders[i]
				return orderArgs(pgUUID(storedUUID("order", o.ID)), o)
			})); err != nil {
			return fmt.Errorf("copy orders: %w", err)
		}

		return saveServiceTypes(ctx, tx, stored.ServiceTypes)
	})
	if err != nil {
		return core.Dataset{}, err
	}
	return stored, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Store) deleteByID(ctx context.Context, entity, sql string, id core.ID) error {
	key, ok := lookupUUID(id)
	if !ok {
		return core.NotFound(entity, id)
	}
	tag, err := s.pool.Exec(ctx, sql, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}

func pgDate(d core.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPgDate(d pgtype.Date) core.Date {
	if !d.Valid {
		return ""
	}
	return core.DateOf(d.Time)
}

func encodeServices(services []core.ServiceLine) ([]byte, error) {
	if services == nil {
		services = []core.ServiceLine{}
	}
	return json.Marshal(services)
}

func decodeServices(raw []byte) ([]core.ServiceLine, error) {
	services := []core.ServiceLine{}
	if len(raw) == 0 {
		return services, nil
	}
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return services, nil
}
