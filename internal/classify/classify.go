// Package classify derives a truck's equipment type from its number.
package classify

import (
	"strings"

	"github.com/augesrob/Badger-sub000/internal/parse"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// Units numbered below this are box trucks unless a table says otherwise.
const boxTruckCeiling = 170

// Classify applies the rules in order, first match wins:
//
//  1. the fleet table pins the base number to a type;
//  2. a driver's tractor or trailer uses the base number: Semi;
//  3. a numeric base below 170: BoxTruck;
//  4. anything else: SemiTrailer.
//
// The base number is the truck number without its "-<digits>" trailer tag.
func Classify(truckNumber string, fleet []snapshot.FleetNumber, drivers []snapshot.Driver) snapshot.TruckType {
	parsed := parse.ParseTruckNumber(truckNumber)
	base := parsed.Base

	if base != "" {
		for _, f := range fleet {
			if strings.TrimSpace(f.Number) == base {
				return f.Type
			}
		}
		for _, d := range drivers {
			if matchesEquipment(d, base) {
				return snapshot.TruckTypeSemi
			}
		}
	}

	if n, ok := parsed.Numeric(); ok && n < boxTruckCeiling {
		return snapshot.TruckTypeBoxTruck
	}
	return snapshot.TruckTypeSemiTrailer
}

func matchesEquipment(d snapshot.Driver, base string) bool {
	for _, v := range []string{d.TractorNumber, d.Trailer1, d.Trailer2, d.Trailer3} {
		if v = strings.TrimSpace(v); v != "" && v == base {
			return true
		}
	}
	return false
}
