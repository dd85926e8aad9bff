package snapshot

// TruckType is the equipment class of a truck.
type TruckType string

const (
	TruckTypeVan         TruckType = "Van"
	TruckTypeBoxTruck    TruckType = "BoxTruck"
	TruckTypeSemiTrailer TruckType = "SemiTrailer"
	TruckTypeSemi        TruckType = "Semi"
)

// MovementStatus is the user-set progress of a truck on the movement board.
type MovementStatus string

const (
	StatusMissing  MovementStatus = "Missing"
	StatusReady    MovementStatus = "Ready"
	StatusInDoor   MovementStatus = "In Door"
	StatusLoaded   MovementStatus = "Loaded"
	StatusDeparted MovementStatus = "Departed"
)

// DoorStatus is the user-set state of the dock door a truck is assigned to.
type DoorStatus string

const (
	DoorLoading DoorStatus = "Loading"
	DoorWaiting DoorStatus = "Waiting"
	DoorDone    DoorStatus = "Done"
	DoorHold    DoorStatus = "Hold"
)

// PrintRoomTruck is a truck assigned to a dock door for a route and batch.
type PrintRoomTruck struct {
	ID          string `json:"id"`
	TruckNumber string `json:"truckNumber"`
	Door        string `json:"door"`
	Route       string `json:"route"`
	Pods        int    `json:"pods"`
	Pallets     int    `json:"pallets"`
	Notes       string `json:"notes"`
	Batch       int    `json:"batch"`
	LastUpdated int64  `json:"lastUpdated"`
}

// PreShiftTruck is a truck parked in a staging lane before the shift starts.
type PreShiftTruck struct {
	ID              string    `json:"id"`
	TruckNumber     string    `json:"truckNumber"`
	StagingDoor     string    `json:"stagingDoor"`
	StagingPosition int       `json:"stagingPosition"`
	TruckType       TruckType `json:"truckType"`
	LastUpdated     int64     `json:"lastUpdated"`
}

// MovementTruck is the derived live-status row for one truck number.
//
// Status, DoorStatus and Ignored are sticky: a recompute carries them over
// from the previous map. Every other field is rewritten from the print room
// and pre-shift rows on each pass.
type MovementTruck struct {
	TruckNumber     string         `json:"truckNumber"`
	Trailer         string         `json:"trailer,omitempty"`
	TruckType       TruckType      `json:"truckType"`
	Door            string         `json:"door"`
	Route           string         `json:"route"`
	Pods            int            `json:"pods"`
	Pallets         int            `json:"pallets"`
	Notes           string         `json:"notes"`
	Batch           int            `json:"batch"`
	StagingDoor     string         `json:"stagingDoor,omitempty"`
	StagingPosition int            `json:"stagingPosition,omitempty"`
	Status          MovementStatus `json:"status"`
	DoorStatus      DoorStatus     `json:"doorStatus"`
	Ignored         bool           `json:"ignored"`
}

// Driver is reference data; its tractor and trailer numbers mark semis.
type Driver struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	TractorNumber string `json:"tractorNumber"`
	Trailer1      string `json:"trailer1"`
	Trailer2      string `json:"trailer2"`
	Trailer3      string `json:"trailer3"`
	Notes         string `json:"notes"`
	Active        bool   `json:"active"`
}

// FleetNumber pins a truck number to a type, overriding the heuristics.
type FleetNumber struct {
	ID     string    `json:"id"`
	Number string    `json:"number"`
	Type   TruckType `json:"type"`
}
