package core

import "sort"

// Aggregate counts distinct users per (date, location) pair.
//
// Dates and locations are visited in selection order and every pair yields
// exactly one row, including zero counts. A row matches when its date,
// location and location type are equal to the pair and the selection's type,
// and its SSID is one of the selected SSIDs. Empty user names are not counted.
//
// An incomplete selection returns an empty table. Repeated dates or
// locations in the selection are collapsed to their first occurrence.
func Aggregate(ds *Dataset, sel Selection) ResultTable {
	if ds == nil || !sel.Complete() {
		return ResultTable{}
	}

	dates := uniqueInOrder(sel.Dates)
	locations := uniqueInOrder(sel.LocationNames)

	ssids := make(map[string]struct{}, len(sel.NetworkIDs))
	for _, id := range sel.NetworkIDs {
		ssids[id] = struct{}{}
	}

	out := make(ResultTable, 0, len(dates)*len(locations))
	users := make(map[string]struct{})

	for _, date := range dates {
		for _, location := range locations {
			clear(users)
			for _, i := range ds.slice(date, location, sel.LocationType) {
				r := ds.rows[i]
				if r.UserID == "" {
					continue
				}
				if _, ok := ssids[r.NetworkID]; !ok {
					continue
				}
				users[r.UserID] = struct{}{}
			}
			out = append(out, ResultRow{
				Date:          date,
				LocationName:  location,
				DistinctCount: len(users),
			})
		}
	}

	return out
}

// uniqueInOrder drops repeated values, keeping the first occurrence.
func uniqueInOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sortedUnique returns values deduplicated and in ascending order.
func sortedUnique(values []string) []string {
	out := uniqueInOrder(values)
	sort.Strings(out)
	return out
}
