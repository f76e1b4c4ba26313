// Package models holds the wire types shared by the backend and its clients.
//
// Importing it sets decimal.MarshalJSONWithoutQuotes for the whole process, so
// every decimal.Decimal encodes as a JSON number rather than a quoted string.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// the backend expects money as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// ValidationError reports input rejected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
