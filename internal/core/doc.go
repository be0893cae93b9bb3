// Package core provides the business logic for occupancy log analysis.
//
// This package is the heart of the user counter, containing all domain logic
// independent of any UI or transport layer. It is used by the web server and
// the batch CLI without modification.
//
// # Architecture
//
// The package is organized around a small pipeline:
//
//   - Loader: [Load] parses one uploaded file (CSV or spreadsheet) into an
//     immutable [Dataset], or fails with a [*LoadError].
//   - Dimension Indexer: [DistinctValues] and [Dataset.Dimensions] produce the
//     sorted choice lists used to build a [Selection].
//   - Aggregation Engine: [Aggregate] counts distinct users per
//     (date, location) pair for one Selection.
//   - Merger: [Merge] concatenates per-file tables and drops exact duplicate rows.
//   - Export: [WriteCSV] and [WriteXLSX] serialize a [ResultTable].
//
// # Parser Registry
//
// Parsers are registered per [Format] at init time using [RegisterParser]:
//
//	core.RegisterParser(core.FormatCSV, parseCSVRecords)
//
// # Recompute
//
// Hosts do not keep incremental state. Every input change calls
// [Analyzer.Recompute] with the loaded datasets, their settings and the
// optional [CommonFilter]; the Analyzer memoizes aggregation results keyed by
// dataset identity and selection hash, so repeated identical requests are cheap.
//
// # Error Handling
//
// Only loading can fail. Technical errors are mapped to user-friendly
// messages using [MapError]. Each error category has a unique code for
// support reference:
//
//   - FILE001-FILE007: File errors (size, format, parse, empty)
//   - VAL004: Missing required columns
//   - SEL001: Selection incomplete (nothing selected yet)
//   - SES001, UPL002, RATE001: Session, capacity and throttling errors
//
// A selection that is missing dates, locations or SSIDs is not an error:
// [Selection.Complete] reports it and aggregation returns an empty table.
package core
