package util

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens mark an absent observation in source files. FRED uses ".".
var missingTokens = map[string]bool{
	"":     true,
	".":    true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"#N/A": true,
}

// ParseCell parses a numeric cell. ok is false for a missing token.
func ParseCell(s string) (v float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if missingTokens[s] {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
