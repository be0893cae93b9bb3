package core

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctValues(t *testing.T) {
	ds := occupancy()

	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, DistinctValues(ds, ColLocalDate))
	assert.Equal(t, []string{"HQ", "Lab"}, DistinctValues(ds, ColLocationName))
	assert.Equal(t, []string{"ble", "network"}, DistinctValues(ds, ColLocationType))
	assert.Equal(t, []string{"corp", "guest"}, DistinctValues(ds, ColSSID))
	assert.Equal(t, []string{"alice", "bob", "carol", "dave", "erin", "frank"}, DistinctValues(ds, ColUserName))
}

func TestDistinctValues_UnknownColumn(t *testing.T) {
	got := DistinctValues(occupancy(), "Floor")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, DistinctValues(occupancy(), "ssid"), "column names are case-sensitive")
}

func TestDistinctValues_SkipsEmpty(t *testing.T) {
	ds := dataset(
		row("2024-03-01", "HQ", "network", "", "alice"),
		row("2024-03-01", "HQ", "network", "corp", "bob"),
	)
	assert.Equal(t, []string{"corp"}, DistinctValues(ds, ColSSID))
}

func TestDistinctValues_NilDataset(t *testing.T) {
	assert.Empty(t, DistinctValues(nil, ColSSID))
}

func TestDistinctValues_OrderIndependent(t *testing.T) {
	rows := occupancy().Rows()
	want := DistinctValues(dataset(rows...), ColLocationName)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Row(nil), rows...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		for _, col := range RequiredColumns {
			got := DistinctValues(dataset(shuffled...), col)
			assert.True(t, sort.StringsAreSorted(got), "%s not sorted: %v", col, got)
			assert.Equal(t, DistinctValues(dataset(rows...), col), got)
		}
		assert.Equal(t, want, DistinctValues(dataset(shuffled...), ColLocationName))
	}
}

func TestDefaultLocationType(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{"network present", []string{"wifi", "network", "ble"}, "network"},
		{"network absent", []string{"wifi", "ble"}, "ble"},
		{"single value", []string{"zone"}, "zone"},
		{"none", nil, ""},
		{"case-sensitive", []string{"Network", "wifi"}, "Network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLocationType(tt.types))
		})
	}
}

func TestDataset_Dimensions(t *testing.T) {
	dims := occupancy().Dimensions()

	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, dims.Dates)
	assert.Equal(t, []string{"HQ", "Lab"}, dims.Locations)
	assert.Equal(t, []string{"ble", "network"}, dims.LocationTypes)
	assert.Equal(t, []string{"corp", "guest"}, dims.SSIDs)
	assert.Equal(t, "network", dims.DefaultLocationType)
}

func TestDataset_DimensionsAreCopies(t *testing.T) {
	ds := occupancy()

	first := ds.Dimensions()
	first.Dates[0] = "mutated"

	assert.Equal(t, "2024-03-01", ds.Dimensions().Dates[0])
}
