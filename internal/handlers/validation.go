package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgInvalidEmail     = "Please enter a valid email address"
	msgPasswordMismatch = "Passwords don't match"
)

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

type formErrors []string

func (f *formErrors) check(ok bool, msg string) {
	if !ok {
		*f = append(*f, msg)
	}
}

func (f *formErrors) add(msgs ...string) {
	*f = append(*f, msgs...)
}

func (f formErrors) message() string {
	return strings.Join(f, ", ")
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func minChars(s string, n int) bool {
	return utf8.RuneCountInString(s) >= n
}
