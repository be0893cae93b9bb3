package core

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Dataset is the immutable, parsed content of one uploaded file.
// It is safe for concurrent use; lookup structures are built on first use.
type Dataset struct {
	id          uuid.UUID
	name        string
	format      Format
	contentHash uint64
	rows        []Row

	dimsOnce sync.Once
	dims     Dimensions

	indexOnce sync.Once
	index     map[sliceKey][]int
}

// sliceKey addresses the rows of one (date, location, location type) slice.
type sliceKey struct {
	date         string
	location     string
	locationType string
}

func newDataset(name string, format Format, rows []Row, contentHash uint64) *Dataset {
	return &Dataset{
		id:          uuid.New(),
		name:        name,
		format:      format,
		contentHash: contentHash,
		rows:        rows,
	}
}

// NewDataset builds a Dataset from rows already in memory.
// The rows are copied; Date values are used as given.
func NewDataset(name string, rows []Row) *Dataset {
	return newDataset(name, FormatUnknown, append([]Row(nil), rows...), 0)
}

// ID uniquely identifies this load of a file.
func (d *Dataset) ID() uuid.UUID { return d.id }

// Name is the original file name.
func (d *Dataset) Name() string { return d.name }

// Format is the encoding the dataset was loaded from.
func (d *Dataset) Format() Format { return d.format }

// ContentHash is the xxhash of the raw file bytes, or 0 for in-memory datasets.
func (d *Dataset) ContentHash() uint64 { return d.contentHash }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns a copy of the dataset rows in file order.
func (d *Dataset) Rows() []Row {
	return append([]Row(nil), d.rows...)
}

// CacheKey identifies the dataset for result memoization.
func (d *Dataset) CacheKey() string {
	return d.id.String()
}

// String implements fmt.Stringer.
func (d *Dataset) String() string {
	return d.name + " (" + strconv.Itoa(len(d.rows)) + " rows)"
}

// Dimensions returns the sorted distinct values of every filterable column.
func (d *Dataset) Dimensions() Dimensions {
	d.dimsOnce.Do(func() {
		d.dims = Dimensions{
			Dates:         DistinctValues(d, ColLocalDate),
			Locations:     DistinctValues(d, ColLocationName),
			LocationTypes: DistinctValues(d, ColLocationType),
			SSIDs:         DistinctValues(d, ColSSID),
		}
		d.dims.DefaultLocationType = DefaultLocationType(d.dims.LocationTypes)
	})
	return d.dims.clone()
}

// slice returns the rows matching one (date, location, location type) triple.
func (d *Dataset) slice(date, location, locationType string) []int {
	d.indexOnce.Do(func() {
		idx := make(map[sliceKey][]int)
		for i, r := range d.rows {
			k := sliceKey{date: r.Date, location: r.LocationName, locationType: r.LocationType}
			idx[k] = append(idx[k], i)
		}
		d.index = idx
	})
	return d.index[sliceKey{date: date, location: location, locationType: locationType}]
}
