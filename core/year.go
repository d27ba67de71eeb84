package core

import (
	"regexp"
	"strconv"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ExtractYear returns the first standalone 19xx or 20xx year found in content.
func ExtractYear(content string) *int {
	match := yearPattern.FindString(content)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}
