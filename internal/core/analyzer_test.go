package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(AnalyzerConfig{Workers: 2, CacheSize: 16})
	require.NoError(t, err)
	return a
}

func TestAnalyzer_LoadFile(t *testing.T) {
	a := newTestAnalyzer(t)

	ds, err := a.LoadFile(context.Background(), "log.csv", "text/csv", csvLog("2024-03-01,HQ,network,corp,alice"))
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, ds.Format())
	assert.Equal(t, 1, ds.Len())
}

func TestAnalyzer_LoadFile_TooLarge(t *testing.T) {
	a, err := NewAnalyzer(AnalyzerConfig{MaxFileSize: 10})
	require.NoError(t, err)

	_, err = a.LoadFile(context.Background(), "log.csv", "", csvLog("2024-03-01,HQ,network,corp,alice"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestAnalyzer_LoadFile_LimiterBusy(t *testing.T) {
	limiter := NewLoadLimiter(1, 20*time.Millisecond)
	a, err := NewAnalyzer(AnalyzerConfig{Limiter: limiter})
	require.NoError(t, err)

	require.True(t, limiter.TryAcquire())
	defer limiter.Release()

	_, err = a.LoadFile(context.Background(), "log.csv", "", csvLog("2024-03-01,HQ,network,corp,alice"))
	assert.ErrorIs(t, err, ErrTooManyLoads)
}

func TestAnalyzer_AggregateMemoized(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := occupancy()

	first := a.Aggregate(ds, fullSelection())
	assert.Equal(t, 1, a.CacheLen())

	first[0].DistinctCount = 999
	second := a.Aggregate(ds, fullSelection())
	assert.Equal(t, Aggregate(ds, fullSelection()), second, "cached copy must not be shared")
	assert.Equal(t, 1, a.CacheLen())

	other := fullSelection()
	other.LocationType = "ble"
	a.Aggregate(ds, other)
	assert.Equal(t, 2, a.CacheLen())
}

func TestAnalyzer_IncompleteSelectionNotCached(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.Empty(t, a.Aggregate(occupancy(), Selection{}))
	assert.Equal(t, 0, a.CacheLen())
}

func TestAnalyzer_Invalidate(t *testing.T) {
	a := newTestAnalyzer(t)
	ds1, ds2 := occupancy(), occupancy()

	a.Aggregate(ds1, fullSelection())
	other := fullSelection()
	other.LocationType = "ble"
	a.Aggregate(ds1, other)
	a.Aggregate(ds2, fullSelection())
	require.Equal(t, 3, a.CacheLen())

	assert.Equal(t, 2, a.Invalidate(ds1.CacheKey()))
	assert.Equal(t, 1, a.CacheLen())

	a.Purge()
	assert.Equal(t, 0, a.CacheLen())
}

func TestAnalyzer_RecomputeIsolatesBadFile(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	good1, err := a.LoadFile(ctx, "one.csv", "", csvLog(
		"2024-03-01,HQ,network,corp,alice",
		"2024-03-01,HQ,network,corp,bob",
	))
	require.NoError(t, err)
	_, badErr := a.LoadFile(ctx, "two.csv", "", []byte("Local Date,SSID\n2024-03-01,corp\n"))
	require.Error(t, badErr)
	good3, err := a.LoadFile(ctx, "three.csv", "", csvLog("2024-03-01,HQ,network,corp,carol"))
	require.NoError(t, err)

	settings := FileSettings{AllDates: true, Locations: []string{"HQ"}, SSIDs: []string{"corp"}}
	inputs := []FileInput{
		{Name: "one.csv", Dataset: good1, Settings: settings},
		{Name: "two.csv", Err: badErr, Settings: settings},
		{Name: "three.csv", Dataset: good3, Settings: settings},
	}

	batch := a.Recompute(ctx, inputs, nil)

	require.Len(t, batch.Files, 3)
	assert.Equal(t, "one.csv", batch.Files[0].Name)
	assert.Equal(t, ResultTable{{Date: "2024-03-01", LocationName: "HQ", DistinctCount: 2}}, batch.Files[0].Table)

	assert.True(t, batch.Files[1].Failed())
	assert.ErrorIs(t, batch.Files[1].Err, ErrMissingColumns)
	assert.Empty(t, batch.Files[1].Table)

	assert.Equal(t, ResultTable{{Date: "2024-03-01", LocationName: "HQ", DistinctCount: 1}}, batch.Files[2].Table)

	require.True(t, batch.HasMerged)
	assert.Equal(t, ResultTable{
		{Date: "2024-03-01", LocationName: "HQ", DistinctCount: 2},
		{Date: "2024-03-01", LocationName: "HQ", DistinctCount: 1},
	}, batch.Merged)
}

func TestAnalyzer_RecomputeSingleFileHasNoMerge(t *testing.T) {
	a := newTestAnalyzer(t)
	settings := FileSettings{AllDates: true, Locations: []string{"HQ"}, SSIDs: []string{"corp"}}

	batch := a.Recompute(context.Background(), []FileInput{{Name: "a.csv", Dataset: occupancy(), Settings: settings}}, nil)

	assert.False(t, batch.HasMerged)
	assert.Nil(t, batch.Merged)
	assert.True(t, batch.Files[0].Complete)
	assert.Len(t, batch.Files[0].Table, 2)
}

func TestAnalyzer_RecomputeIncompleteAndWarnings(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := occupancy()

	batch := a.Recompute(context.Background(), []FileInput{
		{Name: "a.csv", Dataset: ds, Settings: DefaultFileSettings()},
		{Name: "b.csv", Dataset: ds, Settings: FileSettings{AllDates: true, Locations: []string{"Annex"}, SSIDs: []string{"corp"}}},
	}, nil)

	assert.False(t, batch.Files[0].Complete)
	assert.Empty(t, batch.Files[0].Table)
	assert.False(t, batch.Files[0].Failed())

	assert.True(t, batch.Files[1].Complete)
	assert.Equal(t, []UnknownValue{{Column: ColLocationName, Value: "Annex"}}, batch.Files[1].Warnings)
	assert.Equal(t, ResultTable{
		{Date: "2024-03-01", LocationName: "Annex", DistinctCount: 0},
		{Date: "2024-03-02", LocationName: "Annex", DistinctCount: 0},
	}, batch.Merged)
}

func TestAnalyzer_RecomputeCommonFilter(t *testing.T) {
	a := newTestAnalyzer(t)
	common := &CommonFilter{Locations: []string{"Lab"}, SSIDs: []string{"corp", "guest"}}

	batch := a.Recompute(context.Background(), []FileInput{
		{Name: "a.csv", Dataset: occupancy(), Settings: DefaultFileSettings()},
	}, common)

	assert.Equal(t, ResultTable{
		{Date: "2024-03-01", LocationName: "Lab", DistinctCount: 1},
		{Date: "2024-03-02", LocationName: "Lab", DistinctCount: 1},
	}, batch.Files[0].Table)
}

func TestAnalyzer_RecomputeCancelled(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := a.Recompute(ctx, []FileInput{{Name: "a.csv", Dataset: occupancy()}}, nil)
	assert.ErrorIs(t, batch.Files[0].Err, context.Canceled)
}

func TestAnalyzer_RecomputeMissingDataset(t *testing.T) {
	a := newTestAnalyzer(t)

	batch := a.Recompute(context.Background(), []FileInput{{Name: "ghost.csv"}}, nil)
	assert.ErrorIs(t, batch.Files[0].Err, ErrNoFile)
}

func TestBatchResult_Table(t *testing.T) {
	batch := BatchResult{
		Files: []FileResult{
			{Name: "a", Table: ResultTable{{Date: "d", LocationName: "l", DistinctCount: 1}}},
			{Name: "b", Err: ErrEmptyFile, Table: ResultTable{}},
		},
		Merged:    ResultTable{{Date: "d", LocationName: "l", DistinctCount: 1}},
		HasMerged: true,
	}

	got, ok := batch.Table("0")
	assert.True(t, ok)
	assert.Len(t, got, 1)

	_, ok = batch.Table("1")
	assert.False(t, ok, "failed file has no table")
	_, ok = batch.Table("7")
	assert.False(t, ok)
	_, ok = batch.Table("x")
	assert.False(t, ok)

	got, ok = batch.Table(MergedTarget)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}

func TestCommonChoices(t *testing.T) {
	ds := occupancy()

	dims, ok := CommonChoices([]FileInput{{Name: "bad", Err: ErrEmptyFile}, {Name: "a", Dataset: ds}})
	require.True(t, ok)
	assert.Equal(t, ds.Dimensions(), dims)

	_, ok = CommonChoices([]FileInput{{Name: "bad", Err: ErrEmptyFile}})
	assert.False(t, ok)
}
