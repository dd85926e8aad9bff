package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	suffixRe = regexp.MustCompile(`-(\d+)\s*$`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// TruckNumber holds a truck number split into the unit it identifies and an
// optional trailer tag.
type TruckNumber struct {
	Raw    string
	Base   string
	Suffix string
}

// ParseTruckNumber strips a trailing "-<digits>" tag from raw. "151-1" is unit
// 151 pulling trailer tag 1. The tag is kept but never used to identify the
// unit. Any input is accepted, including the empty string.
func ParseTruckNumber(raw string) TruckNumber {
	s := strings.TrimSpace(raw)
	s = spaceRe.ReplaceAllString(s, " ")

	out := TruckNumber{Raw: raw, Base: s}
	if loc := suffixRe.FindStringSubmatchIndex(s); loc != nil {
		// loc: [fullStart, fullEnd, group1Start, group1End]
		base := strings.TrimSpace(s[:loc[0]])
		if base != "" {
			out.Base = base
			out.Suffix = s[loc[2]:loc[3]]
		}
	}
	return out
}

// Numeric returns the base as an integer when it is one.
func (t TruckNumber) Numeric() (int, bool) {
	n, err := strconv.Atoi(t.Base)
	if err != nil {
		return 0, false
	}
	return n, true
}
