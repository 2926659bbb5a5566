package validators

import "errors"

var (
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
)

const (
	minPasswordLength = 8
	// Caps the argon2 hashing cost, not a strength rule
	maxPasswordLength = 255
)

func PasswordValidator(p string) error {
	switch {
	case p == "":
		return ErrPasswordEmpty
	case len(p) < minPasswordLength:
		return ErrPasswordTooShort
	case len(p) > maxPasswordLength:
		return ErrPasswordTooLong
	}

	return nil
}
