package auth

import (
	"errors"
	"unicode"

	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPIN = errors.New("invalid pin")

const (
	minPINLength = 4
	maxPINLength = 12
)

// HashPIN returns a bcrypt hash for a numeric PIN.
func HashPIN(pin string) (string, error) {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return "", errors.New("pin must be 4 to 12 digits")
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return "", errors.New("pin must contain only digits")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PINChecker resolves a PIN to a role. An empty hash disables that role.
type PINChecker struct {
	ManagerHash string
	StaffHash   string
}

// RoleFor returns the role unlocked by pin. The manager hash is tried first.
func (c PINChecker) RoleFor(pin string) (string, error) {
	if pin == "" {
		return "", ErrInvalidPIN
	}
	if c.ManagerHash != "" && bcrypt.CompareHashAndPassword([]byte(c.ManagerHash), []byte(pin)) == nil {
		return enum.RoleManager, nil
	}
	if c.StaffHash != "" && bcrypt.CompareHashAndPassword([]byte(c.StaffHash), []byte(pin)) == nil {
		return enum.RoleStaff, nil
	}
	return "", ErrInvalidPIN
}
