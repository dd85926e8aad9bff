// Package reconcile derives the movement board from the print room and
// pre-shift collections.
package reconcile

import (
	"strings"

	"github.com/augesrob/Badger-sub000/internal/classify"
	"github.com/augesrob/Badger-sub000/internal/parse"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// Recompute rebuilds the movement map from s's print room rows joined to its
// pre-shift rows by truck number. Sticky fields are taken from prev; trucks
// absent from prev get defaults. Rows with a blank truck number are skipped,
// and when two print room rows share a number the first one wins.
func Recompute(prev map[string]snapshot.MovementTruck, s snapshot.Snapshot) map[string]snapshot.MovementTruck {
	staged := make(map[string]snapshot.PreShiftTruck, len(s.PreShiftTrucks))
	for _, p := range s.PreShiftTrucks {
		num := strings.TrimSpace(p.TruckNumber)
		if num == "" {
			continue
		}
		if _, seen := staged[num]; !seen {
			staged[num] = p
		}
	}

	out := make(map[string]snapshot.MovementTruck, len(s.PrintRoomTrucks))
	for _, t := range s.PrintRoomTrucks {
		num := strings.TrimSpace(t.TruckNumber)
		if num == "" {
			continue
		}
		if _, dup := out[num]; dup {
			continue
		}

		m := snapshot.MovementTruck{
			TruckNumber: num,
			Trailer:     parse.ParseTruckNumber(num).Suffix,
			TruckType:   classify.Classify(num, s.FleetNumbers, s.Drivers),
			Door:        t.Door,
			Route:       t.Route,
			Pods:        t.Pods,
			Pallets:     t.Pallets,
			Notes:       t.Notes,
			Batch:       t.Batch,
		}

		p, isStaged := staged[num]
		if isStaged {
			m.StagingDoor = p.StagingDoor
			m.StagingPosition = p.StagingPosition
		}

		carrySticky(&m, prev[num], isStaged)
		out[num] = m
	}
	return out
}

func carrySticky(m *snapshot.MovementTruck, old snapshot.MovementTruck, staged bool) {
	m.Status = old.Status
	m.DoorStatus = old.DoorStatus
	m.Ignored = old.Ignored

	if m.Status == "" {
		m.Status = snapshot.StatusMissing
		if staged {
			m.Status = snapshot.StatusReady
		}
	}
	if m.DoorStatus == "" {
		m.DoorStatus = snapshot.DoorLoading
	}
}

// Equal reports whether two movement maps hold the same rows.
func Equal(a, b map[string]snapshot.MovementTruck) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
