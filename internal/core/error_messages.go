// Package core error codes.
//
// Technical errors are mapped to short user messages with a code that can
// be quoted to support. Codes are grouped by area:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the configured limit
//	          Patterns: "file too large"
//	FILE002 - Invalid CSV: the text file could not be parsed
//	          Patterns: "invalid csv"
//	FILE003 - Invalid workbook: the spreadsheet is corrupt or not a workbook
//	          Patterns: "invalid workbook"
//	FILE004 - No file: the request carried no file
//	          Patterns: "no file provided"
//	FILE005 - Empty file: no bytes, or a workbook without sheets
//	          Patterns: "empty file"
//	FILE006 - File not found
//	          Patterns: "no such file"
//	FILE007 - Permission denied reading or writing a file
//	          Patterns: "permission denied"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: every import slot is taken
//	         Patterns: "too many concurrent imports"
//	IMP002 - Unknown collection: the kind is not clienti or partner
//	         Patterns: "unknown record kind"
//	IMP003 - Import crashed on an unexpected cell layout
//	         Patterns: "import panic"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Nothing flagged for courier shipment
//	         Patterns: "no records to export"
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Record not found
//	         Patterns: "record not found"
//	REC002 - Field cannot be edited in bulk
//	         Patterns: "field not editable"
//	REC003 - Several deleted records share the id
//	         Patterns: "record id is ambiguous"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Database unreachable
//	         Patterns: "connection refused"
//	STO002 - Disk full
//	         Patterns: "no space left"
//	STO003 - Storage timed out
//	         Patterns: "timeout"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	         Patterns: "context canceled"
//	REQ002 - Request timed out
//	         Patterns: "context deadline exceeded"
//	REQ003 - Malformed request body
//	         Patterns: "invalid request body"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific before general.
var errorPatterns = []errorPattern{
	// File errors
	{"file too large", UserMessage{"The file exceeds the maximum upload size", "Remove unused sheets or split the file", "FILE001"}},
	{"invalid csv", UserMessage{"The file is not a readable CSV", "Export the sheet again as CSV or xlsx", "FILE002"}},
	{"invalid workbook", UserMessage{"The spreadsheet could not be opened", "Open it in Excel or LibreOffice and save it again as xlsx", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Choose a spreadsheet to import", "FILE004"}},
	{"empty file", UserMessage{"The file is empty", "Choose a spreadsheet with at least one sheet", "FILE005"}},
	{"no such file", UserMessage{"The file was not found", "Check the path and try again", "FILE006"}},
	{"permission denied", UserMessage{"The file could not be accessed", "Check the file permissions", "FILE007"}},

	// Import errors
	{"too many concurrent imports", UserMessage{"Other imports are in progress", "Please wait a moment and try again", "IMP001"}},
	{"unknown record kind", UserMessage{"Unknown collection", "Use clienti or partner", "IMP002"}},
	{"import panic", UserMessage{"The spreadsheet layout could not be read", "Remove merged cells or formulas and try again", "IMP003"}},

	// Export errors
	{"no records to export", UserMessage{"No record is flagged for GLS shipment", "Flag at least one record for GLS and export again", "EXP001"}},

	// Record errors
	{"record not found", UserMessage{"The record does not exist", "Reload the list and try again", "REC001"}},
	{"field not editable", UserMessage{"This field cannot be changed in bulk", "Edit the id and collection of a record individually", "REC002"}},
	{"record id is ambiguous", UserMessage{"A client and a partner share this id", "Choose the collection to restore into", "REC003"}},

	// Request errors, before the generic timeout
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "REQ002"}},
	{"invalid request body", UserMessage{"The request could not be read", "Send a valid JSON body", "REQ003"}},

	// Storage errors
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "STO001"}},
	{"no space left", UserMessage{"The data directory is full", "Free disk space and retry the save", "STO002"}},
	{"timeout", UserMessage{"Storage operation timed out", "Please try again", "STO003"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The
// first matching pattern wins; ERR000 is returned when none match.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
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

// NewUserError maps err; it returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
