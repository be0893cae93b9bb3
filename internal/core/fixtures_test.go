package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const logHeader = "Local Date,Location Name,Location Type,SSID,User Name"

// csvLog builds an occupancy log with the standard header.
func csvLog(lines ...string) []byte {
	return []byte(strings.Join(append([]string{logHeader}, lines...), "\n") + "\n")
}

// xlsxLog builds a workbook whose first sheet holds records.
func xlsxLog(t testing.TB, records [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func row(date, location, locationType, ssid, user string) Row {
	return Row{Date: date, LocationName: location, LocationType: locationType, NetworkID: ssid, UserID: user}
}

func dataset(rows ...Row) *Dataset {
	return NewDataset("test.csv", rows)
}

// occupancy is a small two-day, two-location log used across tests.
func occupancy() *Dataset {
	return dataset(
		row("2024-03-01", "HQ", "network", "corp", "alice"),
		row("2024-03-01", "HQ", "network", "corp", "alice"),
		row("2024-03-01", "HQ", "network", "guest", "bob"),
		row("2024-03-01", "HQ", "ble", "corp", "carol"),
		row("2024-03-01", "Lab", "network", "corp", "dave"),
		row("2024-03-02", "HQ", "network", "corp", "alice"),
		row("2024-03-02", "HQ", "network", "corp", "erin"),
		row("2024-03-02", "Lab", "network", "guest", "frank"),
	)
}
