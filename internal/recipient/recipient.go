package recipient

import "strings"

// localDigits is the number of digits a subscriber number carries before the
// country code is attached.
const localDigits = 9

// ID is a canonical recipient identifier: the configured country code
// followed by the 9-digit local number.
type ID string

// Parser normalizes raw number lists into canonical recipient IDs.
type Parser struct {
	countryCode string
}

func NewParser(countryCode string) *Parser {
	return &Parser{countryCode: countryCode}
}

// Parse splits a comma-separated list of numbers, trims each segment and
// keeps only those that are exactly 9 decimal digits, prefixed with the
// country code. Malformed segments are dropped silently; order is preserved
// and duplicates are kept. An empty result is a normal outcome that callers
// must handle, not an error.
func (p *Parser) Parse(input string) []ID {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	var ids []ID
	for _, segment := range strings.Split(input, ",") {
		segment = strings.TrimSpace(segment)
		if !isLocalNumber(segment) {
			continue
		}
		ids = append(ids, ID(p.countryCode+segment))
	}
	return ids
}

func isLocalNumber(s string) bool {
	if len(s) != localDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
