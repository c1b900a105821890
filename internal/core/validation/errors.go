package validation

import (
	"strings"

	"github.com/markdave123-py/Deskmate/internal/core"
)

// Field names as they appear in ValidationError.Field.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone_number"
)

// FieldErrors collects every failing field of one validation attempt.
type FieldErrors []*core.ValidationError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return ""
	}
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}
