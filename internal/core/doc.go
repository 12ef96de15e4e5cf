// Package core provides the business logic for the garage application.
//
// This package holds all domain logic. It does not depend on any UI,
// transport or storage layer, so web handlers, tools and tests can use it as is.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Money Aggregator: [Calc] derives labor, parts, revenue, COGS and profit
//     from an order's services. Totals are never stored.
//   - Order Lifecycle Rule: [IsArchivable] and [Partition] decide whether an
//     order belongs in the active set or in the daily log.
//   - Stores: [CatalogStore] holds customers, vehicles and service types;
//     [OrderStore] holds the two disjoint order sets.
//   - Service: the main entry point. It validates input, writes through a
//     [Backend] and applies a change in memory only once the backend accepted it.
//   - Reports: invoices, the dashboard, the daily log and customer history are
//     derived from a [State] copy and never persisted.
//
// # Lifecycle
//
// A completed order with an end date before today moves to the daily log.
// The rule runs when data is loaded, after every order change, and on the first
// read after the day changes:
//
//	svc := core.NewService(backend, core.WithLocation(loc))
//	if err := svc.Load(ctx); err != nil {
//	    return err
//	}
//	moved := svc.Rollover()
//
// # Error Handling
//
// Operations fail with one of three kinds, matched with errors.As:
// [ValidationError] for refused input, [NotFoundError] for unknown ids, and
// [TransportError] for backend failures. [MapError] turns any of them into a
// user-facing message with a support code.
package core
