package core

// error_messages.go defines user-friendly messages with codes for support
// reference. When users see a message they can quote the code, and the
// server log carries the technical error for the same request.
//
// # Dataset Errors (DATA001-DATA099)
//
// Raised once per load attempt and shown on every search until a reload
// succeeds:
//
//	DATA001 - Not found: The dataset file does not exist at the configured path
//	DATA002 - Empty: The dataset has no data rows
//	DATA003 - Decode: No configured encoding could decode the file
//	DATA004 - Missing columns: One or more required columns are absent
//	DATA005 - Unexpected: Parse, I/O or internal failure while loading
//
// # Query Outcomes (QRY001-QRY099)
//
//	QRY001 - No criteria: Neither cuisine nor location was given (not an error)
//	QRY002 - No matches: Nothing matched the criteria (not an error)
//	QRY003 - Unavailable: The dataset is not loaded and the cause is unknown
//
// # Request Errors
//
//	RLD001  - Reload in progress: Another reload is running
//	RATE001 - Rate limited: Too many requests
//	REQ001  - Request timeout: The request took too long
//	REQ002  - Request cancelled: The client went away
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Mapping
//
// Typed errors (*LoadError, *QueryError) are mapped first, with details such
// as the missing column names folded into the message. Anything else is
// matched case-insensitively against errorPatterns; the first matching
// pattern wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/restaurants/internal/schema"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// String renders the message as "Message (Code: XXX). Action".
func (m UserMessage) String() string {
	if m.Message == "" {
		return ""
	}
	if m.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", m.Message, m.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", m.Message, m.Code, m.Action)
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var reloadInProgressMessage = UserMessage{
	Message: "A dataset reload is already in progress",
	Action:  "Wait for it to finish and check the dataset status",
	Code:    "RLD001",
}

var timeoutMessage = UserMessage{
	Message: "The request timed out",
	Action:  "Please try again",
	Code:    "REQ001",
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that carry no type. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "reload already in progress", msg: reloadInProgressMessage},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{pattern: "context deadline exceeded", msg: timeoutMessage},
	{pattern: "timeout", msg: timeoutMessage},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check the server log for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

var unavailableMessage = UserMessage{
	Message: "Restaurant data is not available",
	Action:  "Please check server logs",
	Code:    "QRY003",
}

// EmptyMessage returns the message shown for a search with no rows.
func EmptyMessage(reason EmptyReason) UserMessage {
	switch reason {
	case ReasonNoCriteria:
		return UserMessage{
			Message: "Please enter a cuisine (e.g., Italian, Pizza) and/or a location to search",
			Action:  "Type a cuisine, a locality, or both",
			Code:    "QRY001",
		}
	case ReasonNoMatches:
		return UserMessage{
			Message: "No restaurants found for the specified criteria",
			Action:  "Try broadening your search",
			Code:    "QRY002",
		}
	default:
		return UserMessage{}
	}
}

func loadErrorMessage(e *LoadError) UserMessage {
	switch e.Kind {
	case KindNotFound:
		return UserMessage{
			Message: fmt.Sprintf("Dataset file not found at %s", e.Path),
			Action:  "Place the dataset at the configured DATASET_PATH and reload",
			Code:    "DATA001",
		}
	case KindEmpty:
		return UserMessage{
			Message: fmt.Sprintf("Dataset file %s is empty", e.Path),
			Action:  "Provide a CSV file with a header row and at least one data row",
			Code:    "DATA002",
		}
	case KindDecode:
		return UserMessage{
			Message: fmt.Sprintf("Dataset file could not be decoded (tried %s)", strings.Join(e.Tried, ", ")),
			Action:  "Save the file as UTF-8 or Latin-1, or add its encoding to DATASET_ENCODINGS",
			Code:    "DATA003",
		}
	case KindMissingFields:
		return UserMessage{
			Message: fmt.Sprintf("Dataset is missing required columns: %s. Available columns: %s",
				strings.Join(e.Missing, ", "), strings.Join(e.Available, ", ")),
			Action: fmt.Sprintf("Ensure the header row names %s (case and surrounding spaces are ignored)",
				strings.Join(schema.Required, ", ")),
			Code: "DATA004",
		}
	default:
		return UserMessage{
			Message: "An unexpected error occurred while loading the dataset",
			Action:  "Please check server logs",
			Code:    "DATA005",
		}
	}
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := Load("missing.csv", LoadOptions{})
//	msg := MapError(err)
//	// msg.Code == "DATA001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		var le *LoadError
		if errors.As(qe.Cause, &le) {
			return loadErrorMessage(le)
		}
		return unavailableMessage
	}

	var le *LoadError
	if errors.As(err, &le) {
		return loadErrorMessage(le)
	}

	if errors.Is(err, ErrReloadInProgress) {
		return reloadInProgressMessage
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	return MapError(err).String()
}

// IsUserFacing reports whether an error maps to something more specific
// than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps it for logging. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
