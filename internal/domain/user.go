package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenSignature = errors.New("token signature is invalid")
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // never serialized across the API boundary
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername checks length bounds after trimming. Limits count
// characters, not bytes, so multibyte names get the full range.
func ValidateUsername(username string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(username))
	if length < UsernameMinLen || length > UsernameMaxLen {
		return &ValidationError{Field: "username", Message: "username must be 3-20 characters"}
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return &ValidationError{Field: "email", Message: "email is not valid"}
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < PasswordMinLen {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}
