package reconcile

import (
	"sort"

	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// StatusChange is a user-visible movement update worth notifying about.
type StatusChange struct {
	TruckNumber string
	Door        string
	Status      snapshot.MovementStatus
	DoorStatus  snapshot.DoorStatus
}

// StatusChanges lists trucks present in both maps whose status or door status
// differs. Ignored trucks and trucks that only appeared or disappeared are
// left out. The result is ordered by truck number.
func StatusChanges(before, after map[string]snapshot.MovementTruck) []StatusChange {
	var changes []StatusChange
	for num, next := range after {
		prev, ok := before[num]
		if !ok || next.Ignored {
			continue
		}
		if prev.Status == next.Status && prev.DoorStatus == next.DoorStatus {
			continue
		}
		changes = append(changes, StatusChange{
			TruckNumber: num,
			Door:        next.Door,
			Status:      next.Status,
			DoorStatus:  next.DoorStatus,
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].TruckNumber < changes[j].TruckNumber })
	return changes
}
