package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDataset(t *testing.T) {
	ds, err := SeedDataset(testToday)
	require.NoError(t, err)

	assert.Len(t, ds.ServiceTypes, 10)
	assert.Len(t, ds.Customers, 3)
	assert.Len(t, ds.Vehicles, 4)
	require.Len(t, ds.Orders, 6)

	for _, o := range ds.Orders {
		assert.True(t, o.Status.Valid(), "order %s status %q", o.ID, o.Status)
		assert.NotEqual(t, seedToday, o.StartDate)
		if o.Status == StatusCompleted {
			assert.False(t, o.EndDate.IsZero(), "order %s", o.ID)
		} else {
			assert.True(t, o.EndDate.IsZero(), "order %s", o.ID)
		}
	}

	active, archived := Partition(ds.Orders, testToday)
	assert.Len(t, active, 2)
	assert.Len(t, archived, 4)
	for _, o := range active {
		assert.Equal(t, testToday, o.StartDate)
	}
}

func TestSeedDataset_ReturnsFreshCopies(t *testing.T) {
	a, err := SeedDataset(testToday)
	require.NoError(t, err)
	a.Customers[0].Name = "changed"
	a.Orders[0].Services[0].LaborPrice = 1

	b, err := SeedDataset(testToday)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", b.Customers[0].Name)
	assert.NotEqual(t, Amount(1), b.Orders[0].Services[0].LaborPrice)
}

func TestDefaultServiceTypes(t *testing.T) {
	types := DefaultServiceTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, "Ndërrimi i Vajit", types[0])

	types[0] = "changed"
	assert.Equal(t, "Ndërrimi i Vajit", DefaultServiceTypes()[0])
}
