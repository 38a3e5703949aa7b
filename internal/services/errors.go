package services

// FieldError attributes a business-rule failure to the input field that
// caused it. Field errors are expected outcomes; anything unexpected
// travels as a plain error instead.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldErr(field, message string) []FieldError {
	return []FieldError{{Field: field, Message: message}}
}
