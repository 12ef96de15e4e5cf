package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/garazh/internal/metrics"
)

// ResetConfirmation carries the two confirmations a reset needs.
type ResetConfirmation struct {
	First  bool `json:"confirm"`
	Second bool `json:"confirmAgain"`
}

type resetStep func(ctx context.Context, ds *Dataset) error

// Reset replaces persisted and in-memory state with the built-in seed set.
// Both confirmations must be given.
func (s *Service) Reset(ctx context.Context, c ResetConfirmation) error {
	if !c.First || !c.Second {
		return &ValidationError{Field: "confirm", Message: "confirmation required", Err: ErrConfirmationRequired}
	}

	ctx, cancel := context.WithTimeout(ctx, s.resetTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	var ds Dataset
	if err := s.runSteps(ctx, &ds, []resetStep{
		s.seedStep,
		s.replaceStep("reset"),
	}); err != nil {
		return err
	}
	s.applyDatasetLocked(ds)
	metrics.RecordOrderEvent("reset")
	slog.Info("garage data reset to seed",
		"customers", len(ds.Customers),
		"vehicles", len(ds.Vehicles),
		"orders", len(ds.Orders),
	)
	return nil
}

// Export returns a snapshot of everything the service holds.
func (s *Service) Export() Snapshot {
	return NewSnapshot(s.State(), s.now())
}

// Import replaces all data with the snapshot contents. Identifiers are kept
// where the backend allows it.
func (s *Service) Import(ctx context.Context, snap Snapshot) error {
	if snap.Version != "" && snap.Version != SnapshotVersion {
		slog.Warn("importing snapshot with different version", "version", snap.Version, "want", SnapshotVersion)
	}

	ctx, cancel := context.WithTimeout(ctx, s.resetTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	ds := snap.Data.Dataset()
	if err := s.runSteps(ctx, &ds, []resetStep{
		validateImport,
		s.replaceStep("import"),
	}); err != nil {
		return err
	}
	s.applyDatasetLocked(ds)
	metrics.RecordOrderEvent("imported")
	slog.Info("garage data imported",
		"customers", len(ds.Customers),
		"vehicles", len(ds.Vehicles),
		"orders", len(ds.Orders),
		"exported_at", snap.ExportDate.Format(time.RFC3339),
	)
	return nil
}

func (s *Service) runSteps(ctx context.Context, ds *Dataset, steps []resetStep) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return storageError("reset", err)
		}
		if err := step(ctx, ds); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedStep(_ context.Context, ds *Dataset) error {
	seed, err := SeedDataset(s.Today())
	if err != nil {
		return err
	}
	*ds = seed
	return nil
}

func (s *Service) replaceStep(op string) resetStep {
	return func(ctx context.Context, ds *Dataset) error {
		return s.call(op, func() (err error) {
			*ds, err = s.backend.Replace(ctx, *ds)
			return err
		})
	}
}

// validateImport refuses orders with unknown statuses.
func validateImport(_ context.Context, ds *Dataset) error {
	for i := range ds.Orders {
		o := &ds.Orders[i]
		if o.Status == "" {
			o.Status = StatusPending
		}
		if !o.Status.Valid() {
			return &ValidationError{
				Field:   "orders",
				Message: fmt.Sprintf("invalid status %q on order %s", o.Status, o.ID),
			}
		}
	}
	return nil
}
