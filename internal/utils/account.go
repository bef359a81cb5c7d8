package utils

import (
	"strconv"
	"strings"
)

// DeriveUsername builds the login name for a new member: the lowercased
// colloquial name with spaces replaced by dots ("Tony Stark" -> "tony.stark").
func DeriveUsername(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", ".")
}

// DeriveTempPassword builds the first-login password of a new member: the
// second token of the name followed by the roll number. Falls back to the
// last name when the name has a single token.
//
// This is a placeholder scheme. The value is guessable from roster data, so
// accounts are created with temp_password set and must change it.
func DeriveTempPassword(name, lastName string, rollnumber int) string {
	tokens := strings.Fields(name)
	second := lastName
	if len(tokens) > 1 {
		second = tokens[1]
	}
	return second + strconv.Itoa(rollnumber)
}
