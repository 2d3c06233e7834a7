package catalog

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed metric definition or expression tree.
// Field is the path of the offending node, e.g. "expressionJson.left.seriesCode".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SeriesNotFoundError reports expression series codes with no matching
// series row. It is an integrity violation, not a soft miss.
type SeriesNotFoundError struct {
	Codes []string
}

func (e *SeriesNotFoundError) Error() string {
	return "series not found: " + strings.Join(e.Codes, ", ")
}
