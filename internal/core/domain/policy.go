package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	UsernameMinLen    = 3
	UsernameMaxLen    = 50
	PasswordMinLen    = 8
	NameMaxLen        = 100
	PasswordSymbols   = "@$!%*?&"
	tempPasswordLen   = 12
	tempPasswordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
	// TempPasswordSuffix is appended to every generated temporary password so
	// it satisfies the composition policy. It is fixed and therefore public:
	// it contributes no entropy.
	TempPasswordSuffix = "Aa1!"
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// UsernameProblems returns the policy violations for an already trimmed username.
func UsernameProblems(username string) []string {
	n := utf8.RuneCountInString(username)
	var problems []string
	if n < UsernameMinLen || n > UsernameMaxLen {
		problems = append(problems, fmt.Sprintf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen))
	}
	if username != "" && !usernameRE.MatchString(username) {
		problems = append(problems, "username may only contain letters, digits and underscores")
	}
	return problems
}

// PasswordProblems returns the composition policy violations for password.
func PasswordProblems(password string) []string {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}

	var problems []string
	if utf8.RuneCountInString(password) < PasswordMinLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", PasswordMinLen))
	}
	if !upper {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !lower {
		problems = append(problems, "password must contain a lowercase letter")
	}
	if !digit {
		problems = append(problems, "password must contain a digit")
	}
	if !symbol {
		problems = append(problems, "password must contain one of "+PasswordSymbols)
	}
	return problems
}

// ValidatePassword returns a *ValidationError when password breaks the policy.
func ValidatePassword(password string) error {
	if p := PasswordProblems(password); len(p) > 0 {
		return NewValidationError(p...)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateTempPassword draws tempPasswordLen characters uniformly from
// tempPasswordChars and appends TempPasswordSuffix.
func GenerateTempPassword() (string, error) {
	var b strings.Builder
	b.Grow(tempPasswordLen + len(TempPasswordSuffix))
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := 0; i < tempPasswordLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate temp password: %w", err)
		}
		b.WriteByte(tempPasswordChars[n.Int64()])
	}
	b.WriteString(TempPasswordSuffix)
	return b.String(), nil
}
