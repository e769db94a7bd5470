package parse

import (
	"fmt"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// ParseBoolean recognizes a literal true/false token, for formats that
// encode only an existence answer.
func ParseBoolean(data []byte) (result.Result, error) {
	switch strings.ToLower(strings.TrimSpace(string(data))) {
	case "true":
		return result.Boolean(true), nil
	case "false":
		return result.Boolean(false), nil
	default:
		return nil, newParseError(FormatBoolean, data, 0,
			fmt.Errorf("expected true or false"))
	}
}
