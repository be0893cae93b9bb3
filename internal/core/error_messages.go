package core

// error_messages.go maps technical errors to messages users can act on.
//
// # Error Codes Reference
//
// Users quote the code to support staff; the technical error is in the logs
// next to the request id.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: exceeds the upload size limit
//	          Patterns: "file too large"
//	FILE002 - Invalid CSV: text could not be parsed as comma-separated values
//	          Patterns: "invalid csv"
//	FILE003 - Invalid spreadsheet: workbook could not be opened
//	          Patterns: "invalid spreadsheet"
//	FILE004 - No file: nothing was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: no header or no data rows
//	          Patterns: "empty file"
//	FILE006 - Unsupported format: not CSV or .xlsx/.xlsm (includes legacy .xls)
//	          Patterns: "unsupported file format"
//	FILE007 - File not found: the file id is not part of this session
//	          Patterns: "file not found"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing columns: the header lacks a required column
//	         Patterns: "missing required columns"
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Invalid selection: the analysis request is malformed
//	         Patterns: "invalid selection"
//	SEL002 - No results: nothing has been analysed yet, or the target is unknown
//	         Patterns: "no analysis results"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: uploaded files are gone
//	         Patterns: "session not found"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Invalid upload: the multipart form could not be read or has too many files
//	         Patterns: "invalid upload"
//	UPL002 - System busy: too many files being read at once
//	         Patterns: "too many concurrent file loads"
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a shorter date range and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated text",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "Spreadsheet could not be opened",
			Action:  "Re-save the workbook as .xlsx and upload again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose one or more CSV or Excel files",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no data",
			Action:  "Upload an occupancy log with a header row and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv, .xlsx or .xlsm file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "The file is no longer available",
			Action:  "Upload the file again",
			Code:    "FILE007",
		},
	},

	// Validation errors
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "Required columns are missing from the file",
			Action:  "The file needs Local Date, Location Name, Location Type, SSID and User Name columns",
			Code:    "VAL004",
		},
	},

	// Selection errors
	{
		pattern: "invalid selection",
		msg: UserMessage{
			Message: "The analysis request is not valid",
			Action:  "Check the selected files and filter values",
			Code:    "SEL001",
		},
	},
	{
		pattern: "no analysis results",
		msg: UserMessage{
			Message: "There are no results to show",
			Action:  "Choose dates, locations and SSIDs, then run the analysis",
			Code:    "SEL002",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Upload your files again",
			Code:    "SES001",
		},
	},

	// Upload errors
	{
		pattern: "invalid upload",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Choose fewer files and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many concurrent file loads",
		msg: UserMessage{
			Message: "System is busy reading other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	// Match on the reason only so file names cannot trigger a pattern.
	text := err.Error()
	var le *LoadError
	if errors.As(err, &le) {
		text = le.Reason
	}
	errStr := strings.ToLower(text)

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a display string: "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
// Error returns the user message; Unwrap returns the technical error.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
