// Package core provides the domain logic for the garage application.
//
// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Required field: A required field is empty
//	         Patterns: "required field"
//	VAL002 - Invalid reference: The selected customer or vehicle does not exist
//	         Patterns: "invalid reference"
//	VAL003 - Confirmation required: The action needs explicit confirmation
//	         Patterns: "confirmation required"
//	VAL004 - Invalid date: Date is not in YYYY-MM-DD form
//	         Patterns: "invalid date"
//	VAL005 - Invalid status: Status is not one of the known values
//	         Patterns: "invalid status"
//	VAL006 - Duplicate entry: The value is already in the list
//	         Patterns: "already exists"
//	VAL007 - No services: An order needs at least one service
//	         Patterns: "at least one service"
//	VAL008 - Bad request: The request body could not be read
//	         Patterns: "invalid request body"
//
// # Lookup Errors (NF001)
//
//	NF001 - Not found: The record no longer exists
//	        Patterns: "not found"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A record with this ID already exists
//	        Patterns: "duplicate key"
//	DB002 - Foreign key: Referenced record does not exist
//	        Patterns: "foreign key"
//	DB004 - Connection refused: Unable to connect to storage
//	        Patterns: "connection refused"
//	DB005 - Connection reset: Storage connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Timeout: Operation timed out
//	        Patterns: "deadline exceeded", "timeout"
//	DB010 - Storage failure: Saving or loading failed
//	        Patterns: "storage "
//
// # Authentication (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials: Wrong username or password
//	          Patterns: "invalid credentials"
//	AUTH002 - Session required: Not logged in or session expired
//	          Patterns: "session required", "session expired"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins, so specific patterns come before general ones.
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

var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "A required field is empty",
			Action:  "Fill in every required field and save again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid reference",
		msg: UserMessage{
			Message: "The selected customer or vehicle does not exist",
			Action:  "Pick an existing customer and vehicle",
			Code:    "VAL002",
		},
	},
	{
		pattern: "confirmation required",
		msg: UserMessage{
			Message: "This action needs confirmation",
			Action:  "Confirm the action to continue",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid status",
		msg: UserMessage{
			Message: "Unknown order status",
			Action:  "Use Pending, In Progress, Completed or Cancelled",
			Code:    "VAL005",
		},
	},

	// Database constraints come before the generic duplicate check.
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Reload the data and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Make sure the referenced customer or vehicle exists",
			Code:    "DB002",
		},
	},
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "This entry is already in the list",
			Action:  "Use the existing entry",
			Code:    "VAL006",
		},
	},
	{
		pattern: "at least one service",
		msg: UserMessage{
			Message: "An order needs at least one service",
			Action:  "Add a service line to the order",
			Code:    "VAL007",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the submitted data and try again",
			Code:    "VAL008",
		},
	},

	// Authentication
	{
		pattern: "invalid credentials",
		msg: UserMessage{
			Message: "Wrong username or password",
			Action:  "Check your credentials and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "session required",
		msg: UserMessage{
			Message: "You are not logged in",
			Action:  "Log in to continue",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "session expired",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Log in again",
			Code:    "AUTH002",
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

	// Connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to storage",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Storage connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},

	// Lookup
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The record no longer exists",
			Action:  "Reload the list and try again",
			Code:    "NF001",
		},
	},

	// Anything else the backend reported
	{
		pattern: "storage ",
		msg: UserMessage{
			Message: "Saving or loading data failed",
			Action:  "Your input was kept. Please try again",
			Code:    "DB010",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// The first matching pattern wins; ERR000 is returned when nothing matches.
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

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
