package form

import "errors"

var (
	ErrFormInvalid  = errors.New("form is invalid")
	ErrValueType    = errors.New("value has the wrong type for field")
	ErrNotDateField = errors.New("field is not a date field")
)

// FieldError is the advisory message attached to an invalid field.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return string(e.Field) + ": " + e.Message
}
