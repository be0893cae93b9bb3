package core

// Merge concatenates tables in argument order and drops rows that are exact
// duplicates of an earlier row, keeping first-seen order.
//
// Rows sharing a date and location but differing in count are all kept:
// they come from different files and each file's count is reported as is.
func Merge(tables ...ResultTable) ResultTable {
	total := 0
	for _, t := range tables {
		total += len(t)
	}

	seen := make(map[ResultRow]struct{}, total)
	out := make(ResultTable, 0, total)
	for _, t := range tables {
		for _, r := range t {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// FilterLocations keeps the rows whose location is in names.
// An empty names list returns the table unchanged.
func FilterLocations(table ResultTable, names []string) ResultTable {
	if len(names) == 0 {
		return table
	}

	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}

	out := make(ResultTable, 0, len(table))
	for _, r := range table {
		if _, ok := keep[r.LocationName]; ok {
			out = append(out, r)
		}
	}
	return out
}
