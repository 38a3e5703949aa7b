package services

import "strings"

// validateRegister applies the registration input rules. It returns the
// first violation found, mirroring how the checks are ordered in the
// signup form.
func validateRegister(username, email, password string) []FieldError {
	if !strings.Contains(email, "@") {
		return fieldErr("email", "invalid email")
	}
	if strings.Contains(username, "@") {
		return fieldErr("username", "cannot include an @")
	}
	if len(username) <= 2 {
		return fieldErr("username", "length must be greater than 2")
	}
	if len(password) <= 2 {
		return fieldErr("password", "length must be greater than 2")
	}
	return nil
}
