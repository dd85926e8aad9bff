package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is the whole shared document. It is always read and written as a
// unit; there is no per-collection update.
type Snapshot struct {
	PrintRoomTrucks []PrintRoomTruck         `json:"printRoomTrucks"`
	PreShiftTrucks  []PreShiftTruck          `json:"preShiftTrucks"`
	MovementTrucks  map[string]MovementTruck `json:"movementTrucks"`
	Drivers         []Driver                 `json:"drivers"`
	FleetNumbers    []FleetNumber            `json:"fleetNumbers"`
	LastSync        int64                    `json:"lastSync"`
}

// Partition names a clearable collection of the document.
type Partition string

const (
	PartitionAll       Partition = "all"
	PartitionPrintRoom Partition = "printroom"
	PartitionPreShift  Partition = "preshift"
	PartitionMovement  Partition = "movement"
	PartitionDrivers   Partition = "drivers"
	PartitionFleet     Partition = "fleet"
)

// Partitions lists every target accepted by Clear.
var Partitions = []Partition{
	PartitionAll,
	PartitionPrintRoom,
	PartitionPreShift,
	PartitionMovement,
	PartitionDrivers,
	PartitionFleet,
}

// collection keys as they appear on the wire
var collectionKeys = []string{
	"printRoomTrucks",
	"preShiftTrucks",
	"movementTrucks",
	"drivers",
	"fleetNumbers",
}

// Empty returns a snapshot with every collection allocated.
func Empty() Snapshot {
	var s Snapshot
	s.Normalize()
	return s
}

// Normalize replaces nil collections with empty ones so the document always
// encodes as arrays and an object, never null.
func (s *Snapshot) Normalize() {
	if s.PrintRoomTrucks == nil {
		s.PrintRoomTrucks = []PrintRoomTruck{}
	}
	if s.PreShiftTrucks == nil {
		s.PreShiftTrucks = []PreShiftTruck{}
	}
	if s.MovementTrucks == nil {
		s.MovementTrucks = map[string]MovementTruck{}
	}
	if s.Drivers == nil {
		s.Drivers = []Driver{}
	}
	if s.FleetNumbers == nil {
		s.FleetNumbers = []FleetNumber{}
	}
}

// Clone returns a deep copy. Pushes hand a clone to the network so that local
// edits made while the write is in flight cannot leak into it.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		PrintRoomTrucks: append([]PrintRoomTruck{}, s.PrintRoomTrucks...),
		PreShiftTrucks:  append([]PreShiftTruck{}, s.PreShiftTrucks...),
		MovementTrucks:  make(map[string]MovementTruck, len(s.MovementTrucks)),
		Drivers:         append([]Driver{}, s.Drivers...),
		FleetNumbers:    append([]FleetNumber{}, s.FleetNumbers...),
		LastSync:        s.LastSync,
	}
	for k, v := range s.MovementTrucks {
		out.MovementTrucks[k] = v
	}
	return out
}

// Clear empties the named partition.
func (s *Snapshot) Clear(p Partition) error {
	switch p {
	case PartitionAll:
		*s = Snapshot{LastSync: s.LastSync}
	case PartitionPrintRoom:
		s.PrintRoomTrucks = nil
	case PartitionPreShift:
		s.PreShiftTrucks = nil
	case PartitionMovement:
		s.MovementTrucks = nil
	case PartitionDrivers:
		s.Drivers = nil
	case PartitionFleet:
		s.FleetNumbers = nil
	default:
		return fmt.Errorf("unknown partition %q", p)
	}
	s.Normalize()
	return nil
}

// ParsePartition validates a clear target.
func ParsePartition(raw string) (Partition, error) {
	for _, p := range Partitions {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown partition %q", raw)
}

// SortedTruckNumbers returns the movement map keys in order.
func (s Snapshot) SortedTruckNumbers() []string {
	keys := make([]string, 0, len(s.MovementTrucks))
	for k := range s.MovementTrucks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode parses a stored or received document. Collections that are absent
// or null are defaulted to empty; in that case the returned snapshot is
// usable and err is a *MalformedSnapshotError listing what was defaulted.
// Any other error means the payload was not a JSON object.
func Decode(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	var missing []string
	for _, key := range collectionKeys {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	s.Normalize()

	if len(missing) > 0 {
		return s, &MalformedSnapshotError{Missing: missing}
	}
	return s, nil
}

// Encode marshals the snapshot with every collection present.
func Encode(s Snapshot) ([]byte, error) {
	s.Normalize()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
