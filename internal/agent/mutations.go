package agent

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/augesrob/Badger-sub000/internal/classify"
	"github.com/augesrob/Badger-sub000/internal/reconcile"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// MovementUpdate sets any of the user-editable movement fields. Nil fields
// are left alone.
type MovementUpdate struct {
	Status     *snapshot.MovementStatus `json:"status"`
	DoorStatus *snapshot.DoorStatus     `json:"doorStatus"`
	Ignored    *bool                    `json:"ignored"`
}

// mutate applies fn to a copy of the snapshot, recomputes the board and arms
// the push. If fn fails nothing changes.
func (e *Engine) mutate(fn func(s *snapshot.Snapshot, now int64) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return ErrNotLoaded
	}

	next := e.snap.Clone()
	if err := fn(&next, e.clock.Now().UnixMilli()); err != nil {
		return err
	}
	next.MovementTrucks = reconcile.Recompute(next.MovementTrucks, next)

	e.snap = next
	e.pending = true
	e.generation++
	e.armLocked()
	return nil
}

func (e *Engine) AddPrintRoomTruck(t snapshot.PrintRoomTruck) (snapshot.PrintRoomTruck, error) {
	t.TruckNumber = strings.TrimSpace(t.TruckNumber)
	if t.TruckNumber == "" {
		return t, &snapshot.ValidationError{Field: "truckNumber", Reason: "must not be empty"}
	}
	if err := e.layout.ValidatePrintRoomTruck(t); err != nil {
		return t, err
	}

	t.ID = uuid.New().String()
	err := e.mutate(func(s *snapshot.Snapshot, now int64) error {
		t.LastUpdated = now
		s.PrintRoomTrucks = append(s.PrintRoomTrucks, t)
		return nil
	})
	return t, err
}

func (e *Engine) UpdatePrintRoomTruck(t snapshot.PrintRoomTruck) (snapshot.PrintRoomTruck, error) {
	t.TruckNumber = strings.TrimSpace(t.TruckNumber)
	if t.TruckNumber == "" {
		return t, &snapshot.ValidationError{Field: "truckNumber", Reason: "must not be empty"}
	}
	if err := e.layout.ValidatePrintRoomTruck(t); err != nil {
		return t, err
	}

	err := e.mutate(func(s *snapshot.Snapshot, now int64) error {
		for i := range s.PrintRoomTrucks {
			if s.PrintRoomTrucks[i].ID == t.ID {
				t.LastUpdated = now
				s.PrintRoomTrucks[i] = t
				return nil
			}
		}
		return fmt.Errorf("print room truck %q: %w", t.ID, snapshot.ErrNotFound)
	})
	return t, err
}

func (e *Engine) DeletePrintRoomTruck(id string) error {
	return e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.PrintRoomTrucks {
			if s.PrintRoomTrucks[i].ID == id {
				s.PrintRoomTrucks = append(s.PrintRoomTrucks[:i], s.PrintRoomTrucks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("print room truck %q: %w", id, snapshot.ErrNotFound)
	})
}

// AddPreShiftTruck stages a truck. A blank truck type is derived from the
// truck number. A slot that already holds a truck is rejected with
// snapshot.ErrStagingOccupied.
func (e *Engine) AddPreShiftTruck(t snapshot.PreShiftTruck) (snapshot.PreShiftTruck, error) {
	t.ID = uuid.New().String()
	err := e.putPreShiftTruck(&t, true)
	return t, err
}

// UpdatePreShiftTruck moves or retypes a staged truck under the same slot
// rule as AddPreShiftTruck.
func (e *Engine) UpdatePreShiftTruck(t snapshot.PreShiftTruck) (snapshot.PreShiftTruck, error) {
	err := e.putPreShiftTruck(&t, false)
	return t, err
}

func (e *Engine) putPreShiftTruck(t *snapshot.PreShiftTruck, create bool) error {
	t.TruckNumber = strings.TrimSpace(t.TruckNumber)
	if t.TruckNumber == "" {
		return &snapshot.ValidationError{Field: "truckNumber", Reason: "must not be empty"}
	}

	return e.mutate(func(s *snapshot.Snapshot, now int64) error {
		if t.TruckType == "" {
			t.TruckType = classify.Classify(t.TruckNumber, s.FleetNumbers, s.Drivers)
		}
		if err := e.layout.ValidatePreShiftTruck(*t); err != nil {
			return err
		}
		if holder, taken := snapshot.StagingConflict(s.PreShiftTrucks, *t); taken {
			return fmt.Errorf("door %s position %d is held by truck %s: %w",
				t.StagingDoor, t.StagingPosition, holder.TruckNumber, snapshot.ErrStagingOccupied)
		}

		t.LastUpdated = now
		if create {
			s.PreShiftTrucks = append(s.PreShiftTrucks, *t)
			return nil
		}
		for i := range s.PreShiftTrucks {
			if s.PreShiftTrucks[i].ID == t.ID {
				s.PreShiftTrucks[i] = *t
				return nil
			}
		}
		return fmt.Errorf("pre-shift truck %q: %w", t.ID, snapshot.ErrNotFound)
	})
}

func (e *Engine) DeletePreShiftTruck(id string) error {
	return e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.PreShiftTrucks {
			if s.PreShiftTrucks[i].ID == id {
				s.PreShiftTrucks = append(s.PreShiftTrucks[:i], s.PreShiftTrucks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("pre-shift truck %q: %w", id, snapshot.ErrNotFound)
	})
}

// UpdateMovement edits the sticky fields of a truck on the board.
func (e *Engine) UpdateMovement(truckNumber string, u MovementUpdate) (snapshot.MovementTruck, error) {
	if u.Status != nil && !snapshot.ValidMovementStatus(*u.Status) {
		return snapshot.MovementTruck{}, &snapshot.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *u.Status)}
	}
	if u.DoorStatus != nil && !snapshot.ValidDoorStatus(*u.DoorStatus) {
		return snapshot.MovementTruck{}, &snapshot.ValidationError{Field: "doorStatus", Reason: fmt.Sprintf("unknown door status %q", *u.DoorStatus)}
	}

	truckNumber = strings.TrimSpace(truckNumber)
	var updated snapshot.MovementTruck
	err := e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		m, ok := s.MovementTrucks[truckNumber]
		if !ok {
			return fmt.Errorf("truck %q is not on the board: %w", truckNumber, snapshot.ErrNotFound)
		}
		if u.Status != nil {
			m.Status = *u.Status
		}
		if u.DoorStatus != nil {
			m.DoorStatus = *u.DoorStatus
		}
		if u.Ignored != nil {
			m.Ignored = *u.Ignored
		}
		s.MovementTrucks[truckNumber] = m
		updated = m
		return nil
	})
	return updated, err
}

func (e *Engine) SetMovementStatus(truckNumber string, status snapshot.MovementStatus) error {
	_, err := e.UpdateMovement(truckNumber, MovementUpdate{Status: &status})
	return err
}

func (e *Engine) SetDoorStatus(truckNumber string, status snapshot.DoorStatus) error {
	_, err := e.UpdateMovement(truckNumber, MovementUpdate{DoorStatus: &status})
	return err
}

func (e *Engine) SetIgnored(truckNumber string, ignored bool) error {
	_, err := e.UpdateMovement(truckNumber, MovementUpdate{Ignored: &ignored})
	return err
}

func (e *Engine) AddDriver(d snapshot.Driver) (snapshot.Driver, error) {
	if err := snapshot.ValidateDriver(d); err != nil {
		return d, err
	}
	d.ID = uuid.New().String()
	err := e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		s.Drivers = append(s.Drivers, d)
		return nil
	})
	return d, err
}

func (e *Engine) UpdateDriver(d snapshot.Driver) (snapshot.Driver, error) {
	if err := snapshot.ValidateDriver(d); err != nil {
		return d, err
	}
	err := e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.Drivers {
			if s.Drivers[i].ID == d.ID {
				s.Drivers[i] = d
				return nil
			}
		}
		return fmt.Errorf("driver %q: %w", d.ID, snapshot.ErrNotFound)
	})
	return d, err
}

func (e *Engine) DeleteDriver(id string) error {
	return e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.Drivers {
			if s.Drivers[i].ID == id {
				s.Drivers = append(s.Drivers[:i], s.Drivers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("driver %q: %w", id, snapshot.ErrNotFound)
	})
}

func (e *Engine) AddFleetNumber(f snapshot.FleetNumber) (snapshot.FleetNumber, error) {
	f.Number = strings.TrimSpace(f.Number)
	if err := snapshot.ValidateFleetNumber(f); err != nil {
		return f, err
	}
	f.ID = uuid.New().String()
	err := e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		s.FleetNumbers = append(s.FleetNumbers, f)
		return nil
	})
	return f, err
}

func (e *Engine) UpdateFleetNumber(f snapshot.FleetNumber) (snapshot.FleetNumber, error) {
	f.Number = strings.TrimSpace(f.Number)
	if err := snapshot.ValidateFleetNumber(f); err != nil {
		return f, err
	}
	err := e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.FleetNumbers {
			if s.FleetNumbers[i].ID == f.ID {
				s.FleetNumbers[i] = f
				return nil
			}
		}
		return fmt.Errorf("fleet number %q: %w", f.ID, snapshot.ErrNotFound)
	})
	return f, err
}

func (e *Engine) DeleteFleetNumber(id string) error {
	return e.mutate(func(s *snapshot.Snapshot, _ int64) error {
		for i := range s.FleetNumbers {
			if s.FleetNumbers[i].ID == id {
				s.FleetNumbers = append(s.FleetNumbers[:i], s.FleetNumbers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("fleet number %q: %w", id, snapshot.ErrNotFound)
	})
}

// Classify types a truck number against the local fleet and driver tables.
func (e *Engine) Classify(truckNumber string) snapshot.TruckType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return classify.Classify(truckNumber, e.snap.FleetNumbers, e.snap.Drivers)
}
