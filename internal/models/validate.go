package models

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const (
	MaxTitleLength    = 255
	MaxUserNameLength = 50
	MaxEmailLength    = 255
)

// DateLayouts are tried in order by ParseDate.
var DateLayouts = []string{"2006-01-02", "02/01/2006", "01/02/2006", "2006.01.02"}

const forbiddenChars = "<>{}"

func validateText(value, field string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", common.ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return "", fmt.Errorf("%w: %s cannot exceed %d characters", common.ErrInvalidInput, field, maxLen)
	}
	if strings.ContainsAny(value, forbiddenChars) {
		return "", fmt.Errorf("%w: %s contains invalid characters", common.ErrInvalidInput, field)
	}
	return value, nil
}

// ValidateTitle trims the title and checks it is non-empty, at most 255
// characters long and free of markup characters.
func ValidateTitle(title string) (string, error) {
	return validateText(title, "title", MaxTitleLength)
}

// ValidateUserName trims the username and checks length and characters.
// Usernames are case-sensitive and may not contain whitespace.
func ValidateUserName(name string) (string, error) {
	name, err := validateText(name, "username", MaxUserNameLength)
	if err != nil {
		return "", err
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: username cannot contain whitespace", common.ErrInvalidInput)
	}
	return name, nil
}

// ValidateEmail accepts an empty value (email is optional) or a single
// address without display name.
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	if len(email) > MaxEmailLength {
		return "", fmt.Errorf("%w: email cannot exceed %d characters", common.ErrInvalidInput, MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", common.ErrInvalidInput)
	}
	return email, nil
}

// ValidatePassword enforces the minimum-strength policy: at least minLen
// characters with at least one letter and one digit.
func ValidatePassword(password []byte, minLen int) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password cannot be empty", common.ErrInvalidInput)
	}
	if utf8.RuneCount(password) < minLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, minLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range string(password) {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain a letter and a digit", common.ErrInvalidInput)
	}
	return nil
}

// ParseDate parses a calendar date in any of DateLayouts and returns
// midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY or YYYY.MM.DD", common.ErrInvalidInput, s)
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// DateOf truncates t to midnight UTC of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	day := DateOf(*d)
	return &day
}

// ParseTaskID parses a positive task identifier.
func ParseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: task id must be a positive integer", common.ErrInvalidInput)
	}
	return id, nil
}
