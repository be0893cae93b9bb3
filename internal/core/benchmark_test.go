package core

import (
	"fmt"
	"strings"
	"testing"
)

// generateLog returns a CSV log spread over days x locations with users
// repeating across rows.
func generateLog(rows, days, locations int) []byte {
	var b strings.Builder
	b.WriteString(logHeader + "\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "2024-03-%02d,Site %d,network,ssid-%d,user-%d\n",
			i%days+1, i%locations, i%3, i%(rows/4+1))
	}
	return []byte(b.String())
}

func benchSelection(ds *Dataset) Selection {
	dims := ds.Dimensions()
	return Selection{
		Dates:         dims.Dates,
		LocationNames: dims.Locations,
		NetworkIDs:    dims.SSIDs,
		LocationType:  dims.DefaultLocationType,
	}
}

func BenchmarkLoad_CSV(b *testing.B) {
	data := generateLog(20000, 28, 20)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load("bench.csv", data, FormatCSV); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAggregate(b *testing.B) {
	ds, err := Load("bench.csv", generateLog(20000, 28, 20), FormatCSV)
	if err != nil {
		b.Fatal(err)
	}
	sel := benchSelection(ds)
	Aggregate(ds, sel) // build the slice index

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(ds, sel)
	}
}

func BenchmarkAnalyzer_Aggregate_Cached(b *testing.B) {
	ds, err := Load("bench.csv", generateLog(20000, 28, 20), FormatCSV)
	if err != nil {
		b.Fatal(err)
	}
	a, err := NewAnalyzer(AnalyzerConfig{})
	if err != nil {
		b.Fatal(err)
	}
	sel := benchSelection(ds)
	a.Aggregate(ds, sel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Aggregate(ds, sel)
	}
}

func BenchmarkMerge(b *testing.B) {
	ds, err := Load("bench.csv", generateLog(20000, 28, 20), FormatCSV)
	if err != nil {
		b.Fatal(err)
	}
	t1 := Aggregate(ds, benchSelection(ds))
	t2 := append(ResultTable(nil), t1...)
	for i := range t2 {
		if i%2 == 0 {
			t2[i].DistinctCount++
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Merge(t1, t2)
	}
}

func BenchmarkDistinctValues(b *testing.B) {
	ds, err := Load("bench.csv", generateLog(20000, 28, 20), FormatCSV)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DistinctValues(ds, ColUserName)
	}
}

func BenchmarkCleanCell(b *testing.B) {
	inputs := []string{"HQ", "  Floor 2  ", `="00123"`, `"quoted"`}
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			CleanCell(in)
		}
	}
}

func BenchmarkNormalizeDate(b *testing.B) {
	inputs := []string{"2024-03-01", "3/1/2024", "2024-03-01 08:00:00"}
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			NormalizeDate(in)
		}
	}
}
