// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxDisplayNameLen = 64

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

// DisplayName is the only identity a participant carries. Moderation
// records are keyed by it, so reconnecting does not reset a cooldown.
type DisplayName string

// NewDisplayName trims and validates a client supplied name.
func NewDisplayName(raw string) (DisplayName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return DisplayName(name), nil
}

// IsTrainer reports whether the name marks its owner as the room moderator.
// Any case-insensitive occurrence of "trainer" counts, "(trainer)" included.
func (n DisplayName) IsTrainer() bool {
	return strings.Contains(strings.ToLower(string(n)), "trainer")
}

var attendanceIDPattern = regexp.MustCompile(`\(([^)]+)\)\s*$`)

// AttendanceID extracts the identifier embedded as "name (id)".
// Trainers never have one.
func (n DisplayName) AttendanceID() (string, bool) {
	if n.IsTrainer() {
		return "", false
	}
	m := attendanceIDPattern.FindStringSubmatch(string(n))
	if m == nil {
		return "", false
	}
	return m[1], true
}
