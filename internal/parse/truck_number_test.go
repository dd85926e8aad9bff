package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTruckNumber(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected TruckNumber
	}{
		{
			name:     "Plain number",
			raw:      "151",
			expected: TruckNumber{Raw: "151", Base: "151"},
		},
		{
			name:     "Trailer tag",
			raw:      "151-1",
			expected: TruckNumber{Raw: "151-1", Base: "151", Suffix: "1"},
		},
		{
			name:     "Multi digit tag with spaces",
			raw:      "  T42-12 ",
			expected: TruckNumber{Raw: "  T42-12 ", Base: "T42", Suffix: "12"},
		},
		{
			name:     "Only the last tag is stripped",
			raw:      "3-4-5",
			expected: TruckNumber{Raw: "3-4-5", Base: "3-4", Suffix: "5"},
		},
		{
			name:     "Non numeric tag is part of the base",
			raw:      "200-A",
			expected: TruckNumber{Raw: "200-A", Base: "200-A"},
		},
		{
			name:     "Bare tag keeps the whole string",
			raw:      "-7",
			expected: TruckNumber{Raw: "-7", Base: "-7"},
		},
		{
			name:     "Empty",
			raw:      "",
			expected: TruckNumber{Raw: "", Base: ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseTruckNumber(tc.raw))
		})
	}
}

func TestTruckNumber_Numeric(t *testing.T) {
	n, ok := ParseTruckNumber("151-1").Numeric()
	assert.True(t, ok)
	assert.Equal(t, 151, n)

	_, ok = ParseTruckNumber("abc").Numeric()
	assert.False(t, ok)

	_, ok = ParseTruckNumber("").Numeric()
	assert.False(t, ok)
}
