package account

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxEmailLen    = 180
	minPasswordLen = 8
	maxPasswordLen = 128
	maxNameLen     = 80
)

// ValidationError maps request fields to their first failing rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed."
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Credentials is the body of the login and register endpoints.
type Credentials struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

func validateLogin(c Credentials) error {
	var v ValidationError
	checkEmail(&v, c.Email)
	checkPassword(&v, c.Password)
	return v.orNil()
}

func validateRegister(c Credentials) error {
	var v ValidationError
	checkEmail(&v, c.Email)
	checkPassword(&v, c.Password)
	if c.FirstName != nil && utf8.RuneCountInString(*c.FirstName) > maxNameLen {
		v.add("firstName", "First name is too long.")
	}
	if c.LastName != nil && utf8.RuneCountInString(*c.LastName) > maxNameLen {
		v.add("lastName", "Last name is too long.")
	}
	return v.orNil()
}

func checkEmail(v *ValidationError, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		v.add("email", "Email is required.")
	case !validEmail(email):
		v.add("email", "Email must be valid.")
	case utf8.RuneCountInString(email) > maxEmailLen:
		v.add("email", "Email is too long.")
	}
}

func checkPassword(v *ValidationError, password string) {
	n := utf8.RuneCountInString(password)
	switch {
	case strings.TrimSpace(password) == "":
		v.add("password", "Password is required.")
	case n < minPasswordLen || n > maxPasswordLen:
		v.add("password", "Password must be between 8 and 128 characters.")
	}
}

// validEmail accepts a bare address with a local part and a domain.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && at < len(email)-1
}

// NormalizeEmail trims and lower-cases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cleanName trims a name; blank values become nil.
func cleanName(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
