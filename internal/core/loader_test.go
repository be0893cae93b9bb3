package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoad_CSV(t *testing.T) {
	data := csvLog(
		"2024-03-01,HQ,network,corp,alice",
		"3/2/2024,Lab,network,guest,bob",
	)

	ds, err := Load("log.csv", data, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "log.csv", ds.Name())
	assert.Equal(t, FormatCSV, ds.Format())
	assert.NotZero(t, ds.ContentHash())
	assert.Equal(t, []Row{
		row("2024-03-01", "HQ", "network", "corp", "alice"),
		row("2024-03-02", "Lab", "network", "guest", "bob"),
	}, ds.Rows())
}

func TestLoad_ExtraColumnsAndOrder(t *testing.T) {
	data := []byte("Device,User Name,SSID,Local Date,Location Type,Location Name,Signal\n" +
		"phone,alice,corp,2024-03-01,network,HQ,-60\n")

	ds, err := Load("log.csv", data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []Row{row("2024-03-01", "HQ", "network", "corp", "alice")}, ds.Rows())
}

func TestLoad_HeaderAfterPreamble(t *testing.T) {
	data := []byte("Occupancy export\nGenerated 2024-03-03\n\n" + string(csvLog("2024-03-01,HQ,network,corp,alice")))

	ds, err := Load("log.csv", data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoad_BOMAndBlankRows(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvLog(
		"2024-03-01,HQ,network,corp,alice",
		",,,,",
		"",
		"2024-03-01,HQ,network,corp,bob",
	)...)

	ds, err := Load("log.csv", data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoad_ShortRows(t *testing.T) {
	ds, err := Load("log.csv", csvLog("2024-03-01,HQ,network"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []Row{row("2024-03-01", "HQ", "network", "", "")}, ds.Rows())
}

func TestLoad_Spreadsheet(t *testing.T) {
	data := xlsxLog(t, [][]string{
		{"Local Date", "Location Name", "Location Type", "SSID", "User Name"},
		{"2024-03-01", "HQ", "network", "corp", "alice"},
		{"2024-03-01", "HQ", "network", "corp", "bob"},
	})

	ds, err := Load("log.xlsx", data, FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheet, ds.Format())
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "bob", ds.Rows()[1].UserID)
}

func TestLoad_SpreadsheetDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Local Date", "Location Name", "Location Type", "SSID", "User Name"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	entries := []struct {
		at   time.Time
		user string
	}{
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "alice"},
		{time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), "bob"},
		{time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), "alice"},
		{time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC), "carol"},
	}
	for i, e := range entries {
		values := []interface{}{e.at, "HQ", "network", "corp", e.user}
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values))
	}

	// Both formats show only month and year.
	monthYear, err := f.NewStyle(&excelize.Style{NumFmt: 17})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A3", monthYear))
	custom := `[$-409]mmm "of" yyyy`
	customStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A4", "A5", customStyle))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Load("log.xlsx", buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, ds.Dimensions().Dates)
	table := Aggregate(ds, Selection{
		Dates:         []string{"2024-03-01", "2024-03-02"},
		LocationNames: []string{"HQ"},
		NetworkIDs:    []string{"corp"},
		LocationType:  "network",
	})
	assert.Equal(t, ResultTable{
		{Date: "2024-03-01", LocationName: "HQ", DistinctCount: 2},
		{Date: "2024-03-02", LocationName: "HQ", DistinctCount: 1},
	}, table)
}

func TestLoad_SpreadsheetNumbersStayNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Local Date", "Location Name", "Location Type", "SSID", "User Name"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	values := []interface{}{"2024-03-01", "HQ", "network", "corp", 45352}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &values))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Load("log.xlsx", buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, "45352", ds.Rows()[0].UserID)
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"mmm-yy", true},
		{"[$-409]d-mmm", true},
		{"h:mm:ss", false},
		{"0.00", false},
		{`"day "0`, false},
		{`\d0`, false},
		{"[Red]0", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestLoad_IdentifiersKeptVerbatim(t *testing.T) {
	data := csvLog(
		"2024-03-01,HQ,network,corp,alice",
		"2024-03-01,HQ,network,corp,'alice'",
		"2024-03-01,HQ,network,corp,=alice",
		"2024-03-01,'HQ',network,corp,bob",
	)

	ds, err := Load("log.csv", data, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"'HQ'", "HQ"}, ds.Dimensions().Locations)
	table := Aggregate(ds, Selection{
		Dates:         []string{"2024-03-01"},
		LocationNames: []string{"HQ"},
		NetworkIDs:    []string{"corp"},
		LocationType:  "network",
	})
	assert.Equal(t, 3, table[0].DistinctCount)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		format  Format
		wantErr error
	}{
		{"empty bytes", nil, FormatCSV, ErrEmptyFile},
		{"header only", csvLog(), FormatCSV, ErrEmptyFile},
		{"blank lines only", []byte("\n\n,,\n"), FormatCSV, ErrEmptyFile},
		{"missing column", []byte("Local Date,Location Name,SSID,User Name\n2024-03-01,HQ,corp,alice\n"), FormatCSV, ErrMissingColumns},
		{"wrong case", []byte("local date,location name,location type,ssid,user name\nx,y,z,w,v\n"), FormatCSV, ErrMissingColumns},
		{"not a workbook", []byte("Local Date,SSID\n"), FormatSpreadsheet, ErrMalformedSpreadsheet},
		{"legacy xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0, 0, 0, 0, 0, 0, 0}, FormatSpreadsheet, ErrUnsupportedFormat},
		{"unknown format", []byte("x"), FormatUnknown, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load("bad.file", tt.data, tt.format)
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, tt.wantErr)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, "bad.file", le.FileName)
			assert.NotEmpty(t, le.Reason)
		})
	}
}

func TestLoad_MissingColumnsNamed(t *testing.T) {
	_, err := Load("x.csv", []byte("Local Date,Location Name,User Name\n2024-03-01,HQ,alice\n"), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location Type, SSID")
	assert.NotContains(t, err.Error(), "User Name,")
}

func TestLoad_HeaderBeyondSearchWindow(t *testing.T) {
	original := MaxHeaderSearchRows
	defer func() { MaxHeaderSearchRows = original }()
	MaxHeaderSearchRows = 2

	data := []byte("preamble\nmore preamble\n" + string(csvLog("2024-03-01,HQ,network,corp,alice")))
	_, err := Load("x.csv", data, FormatCSV)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestLoad_DistinctIdentities(t *testing.T) {
	data := csvLog("2024-03-01,HQ,network,corp,alice")

	a, err := Load("a.csv", data, FormatCSV)
	require.NoError(t, err)
	b, err := Load("a.csv", data, FormatCSV)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ContentHash(), b.ContentHash())
}

func TestLoadError_Message(t *testing.T) {
	err := newLoadError("a.csv", FormatCSV, ErrEmptyFile)
	assert.Equal(t, `load "a.csv": empty file`, err.Error())

	anon := newLoadError("", FormatCSV, ErrEmptyFile)
	assert.Equal(t, "load: empty file", anon.Error())
}
