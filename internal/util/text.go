// Package util holds small text helpers shared by the CLI and sources.
package util

import (
	"strconv"
	"strings"
)

// Counted formats n with the noun that fits it: "1 row", "6 rows".
func Counted(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return strconv.Itoa(n) + " " + noun
}

// JoinOrNone joins items with ", ", or returns "(none)" when there are none.
func JoinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
