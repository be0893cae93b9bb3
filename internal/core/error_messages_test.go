package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"too large", newLoadError("a.csv", FormatCSV, ErrFileTooLarge), "FILE001"},
		{"malformed csv", newLoadError("a.csv", FormatCSV, fmt.Errorf("%w: bare quote", ErrMalformedCSV)), "FILE002"},
		{"malformed workbook", newLoadError("a.xlsx", FormatSpreadsheet, ErrMalformedSpreadsheet), "FILE003"},
		{"no file", ErrNoFile, "FILE004"},
		{"empty file", newLoadError("a.csv", FormatCSV, ErrEmptyFile), "FILE005"},
		{"unsupported", newLoadError("a.xls", FormatSpreadsheet, ErrUnsupportedFormat), "FILE006"},
		{"file not found", ErrFileNotFound, "FILE007"},
		{"missing columns", newLoadError("a.csv", FormatCSV, fmt.Errorf("%w: SSID", ErrMissingColumns)), "VAL004"},
		{"invalid selection", errors.New("invalid selection: dates required"), "SEL001"},
		{"no results", errors.New("no analysis results: target \"7\""), "SEL002"},
		{"session", errors.New("session not found"), "SES001"},
		{"invalid upload", errors.New("invalid upload: at most 10 files"), "UPL001"},
		{"busy", ErrTooManyLoads, "UPL002"},
		{"cancelled", context.Canceled, "UPL004"},
		{"deadline", context.DeadlineExceeded, "UPL005"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("kaboom"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, MapError(tt.err).Code)
		})
	}
}

func TestMapError_IgnoresFileName(t *testing.T) {
	err := newLoadError("rate limit report.csv", FormatCSV, ErrEmptyFile)
	assert.Equal(t, "FILE005", MapError(err).Code)
}

func TestFormatUserError(t *testing.T) {
	assert.Equal(t, "", FormatUserError(nil))
	assert.Equal(t,
		"The uploaded file has no data (Code: FILE005). Upload an occupancy log with a header row and data rows",
		FormatUserError(ErrEmptyFile))
}

func TestIsUserFacing(t *testing.T) {
	assert.False(t, IsUserFacing(nil))
	assert.True(t, IsUserFacing(ErrNoFile))
	assert.False(t, IsUserFacing(errors.New("kaboom")))
}

func TestUserError(t *testing.T) {
	assert.Nil(t, NewUserError(nil))

	ue := NewUserError(ErrTooManyLoads)
	assert.Equal(t, "System is busy reading other files", ue.Error())
	assert.ErrorIs(t, ue, ErrTooManyLoads)
	assert.Equal(t, "UPL002", ue.User.Code)
}
