package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchivable(t *testing.T) {
	const today Date = "2026-03-10"

	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{"completed yesterday", Order{Status: StatusCompleted, EndDate: "2026-03-09"}, true},
		{"completed today", Order{Status: StatusCompleted, EndDate: today}, false},
		{"completed in the future", Order{Status: StatusCompleted, EndDate: "2026-04-01"}, false},
		{"completed without end date", Order{Status: StatusCompleted}, false},
		{"pending with stale end date", Order{Status: StatusPending, EndDate: "2026-01-01"}, false},
		{"cancelled", Order{Status: StatusCancelled, StartDate: "2026-01-01"}, false},
		{"in progress", Order{Status: StatusInProgress, StartDate: "2026-01-01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArchivable(tt.order, today))
		})
	}
}

func TestPartition_KeepsOrderAndIsDisjoint(t *testing.T) {
	orders := []Order{
		{ID: "1", Status: StatusCompleted, EndDate: "2026-03-01"},
		{ID: "2", Status: StatusPending},
		{ID: "3", Status: StatusCompleted, EndDate: "2026-03-02"},
		{ID: "4", Status: StatusCompleted, EndDate: "2026-03-10"},
	}

	active, archived := Partition(orders, "2026-03-10")

	require.Len(t, active, 2)
	require.Len(t, archived, 2)
	assert.Equal(t, ID("2"), active[0].ID)
	assert.Equal(t, ID("4"), active[1].ID)
	assert.Equal(t, ID("1"), archived[0].ID)
	assert.Equal(t, ID("3"), archived[1].ID)
}

func TestEnforceEndDate(t *testing.T) {
	const today Date = "2026-03-10"

	t.Run("completed without date gets today", func(t *testing.T) {
		o := Order{Status: StatusCompleted}
		EnforceEndDate(&o, today)
		assert.Equal(t, today, o.EndDate)
	})

	t.Run("completed keeps its date", func(t *testing.T) {
		o := Order{Status: StatusCompleted, EndDate: "2026-03-01"}
		EnforceEndDate(&o, today)
		assert.Equal(t, Date("2026-03-01"), o.EndDate)
	})

	t.Run("other statuses clear the date", func(t *testing.T) {
		for _, st := range []Status{StatusPending, StatusInProgress, StatusCancelled} {
			o := Order{Status: st, EndDate: "2026-03-01"}
			EnforceEndDate(&o, today)
			assert.True(t, o.EndDate.IsZero(), "status %s", st)
		}
	})
}

func TestOrderStore_Rollover(t *testing.T) {
	store := NewOrderStore([]Order{
		{ID: "1", Status: StatusCompleted, EndDate: "2026-03-10"},
		{ID: "2", Status: StatusPending},
	}, "2026-03-10")

	assert.Equal(t, 0, store.Rollover("2026-03-10"))
	assert.Len(t, store.Active(), 2)

	assert.Equal(t, 1, store.Rollover("2026-03-11"))
	assert.Equal(t, 0, store.Rollover("2026-03-11"))

	archived := store.Archived()
	require.Len(t, archived, 1)
	assert.Equal(t, ID("1"), archived[0].ID)

	_, isArchived, ok := store.Find("1")
	assert.True(t, ok)
	assert.True(t, isArchived)
}
