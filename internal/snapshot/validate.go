package snapshot

import (
	"fmt"
	"strings"
)

const (
	MinBatch           = 1
	MaxBatch           = 4
	MinStagingPosition = 1
	MaxStagingPosition = 4
)

// Layout is the warehouse vocabulary edits are checked against. An empty
// list accepts any value for that field.
type Layout struct {
	LoadingDoors []string
	Routes       []string
	StagingDoors []string
}

// ValidatePrintRoomTruck checks a print room row before it is applied.
func (l Layout) ValidatePrintRoomTruck(t PrintRoomTruck) error {
	if !oneOf(l.LoadingDoors, t.Door) {
		return &ValidationError{Field: "door", Reason: fmt.Sprintf("%q is not a loading door", t.Door)}
	}
	if !oneOf(l.Routes, t.Route) {
		return &ValidationError{Field: "route", Reason: fmt.Sprintf("%q is not a route", t.Route)}
	}
	if t.Pods < 0 {
		return &ValidationError{Field: "pods", Reason: "must not be negative"}
	}
	if t.Pallets < 0 {
		return &ValidationError{Field: "pallets", Reason: "must not be negative"}
	}
	if t.Batch < MinBatch || t.Batch > MaxBatch {
		return &ValidationError{Field: "batch", Reason: fmt.Sprintf("must be between %d and %d", MinBatch, MaxBatch)}
	}
	return nil
}

// ValidatePreShiftTruck checks a staging row before it is applied. Slot
// uniqueness is checked separately by StagingConflict.
func (l Layout) ValidatePreShiftTruck(t PreShiftTruck) error {
	if !oneOf(l.StagingDoors, t.StagingDoor) {
		return &ValidationError{Field: "stagingDoor", Reason: fmt.Sprintf("%q is not a staging door", t.StagingDoor)}
	}
	if t.StagingPosition < MinStagingPosition || t.StagingPosition > MaxStagingPosition {
		return &ValidationError{Field: "stagingPosition", Reason: fmt.Sprintf("must be between %d and %d", MinStagingPosition, MaxStagingPosition)}
	}
	if !ValidTruckType(t.TruckType) {
		return &ValidationError{Field: "truckType", Reason: fmt.Sprintf("unknown truck type %q", t.TruckType)}
	}
	return nil
}

// ValidateDriver checks a driver row.
func ValidateDriver(d Driver) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// ValidateFleetNumber checks a fleet override row. Only vans and semis can be
// pinned.
func ValidateFleetNumber(f FleetNumber) error {
	if strings.TrimSpace(f.Number) == "" {
		return &ValidationError{Field: "number", Reason: "must not be empty"}
	}
	if f.Type != TruckTypeVan && f.Type != TruckTypeSemi {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("fleet numbers are %s or %s, got %q", TruckTypeVan, TruckTypeSemi, f.Type)}
	}
	return nil
}

// StagingConflict returns the truck other than t that already holds t's
// staging door and position.
func StagingConflict(trucks []PreShiftTruck, t PreShiftTruck) (PreShiftTruck, bool) {
	for _, other := range trucks {
		if other.ID == t.ID {
			continue
		}
		if other.StagingDoor == t.StagingDoor && other.StagingPosition == t.StagingPosition {
			return other, true
		}
	}
	return PreShiftTruck{}, false
}

func ValidTruckType(t TruckType) bool {
	switch t {
	case TruckTypeVan, TruckTypeBoxTruck, TruckTypeSemiTrailer, TruckTypeSemi:
		return true
	}
	return false
}

func ValidMovementStatus(s MovementStatus) bool {
	switch s {
	case StatusMissing, StatusReady, StatusInDoor, StatusLoaded, StatusDeparted:
		return true
	}
	return false
}

func ValidDoorStatus(s DoorStatus) bool {
	switch s {
	case DoorLoading, DoorWaiting, DoorDone, DoorHold:
		return true
	}
	return false
}

func oneOf(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
