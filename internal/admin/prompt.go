package admin

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords don't match")

func PromptPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// PromptNewPassword asks twice and fails when the entries differ.
func PromptNewPassword(w io.Writer) (string, error) {
	first, err := PromptPassword(w, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := PromptPassword(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}
