package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augesrob/Badger-sub000/config"
	"github.com/augesrob/Badger-sub000/internal/reconcile"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

type writeResponse struct {
	Success  bool  `json:"success"`
	LastSync int64 `json:"lastSync"`
}

func TestSnapshotEndpoints(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	r := NewRouter(newTestStore(t), dispatcher, nil, config.Default().Server)

	w := do(t, r, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"printRoomTrucks":[],"preShiftTrucks":[],"movementTrucks":{},"drivers":[],"fleetNumbers":[],"lastSync":0}`, w.Body.String())

	doc := snapshot.Empty()
	doc.PrintRoomTrucks = append(doc.PrintRoomTrucks, snapshot.PrintRoomTruck{ID: "p1", TruckNumber: "151", Door: "13A", Batch: 1})
	doc.MovementTrucks["151"] = snapshot.MovementTruck{TruckNumber: "151", Door: "13A", Status: snapshot.StatusReady, DoorStatus: snapshot.DoorLoading}

	w = do(t, r, http.MethodPost, "/api/snapshot", doc)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[writeResponse](t, w)
	assert.True(t, first.Success)
	assert.Positive(t, first.LastSync)

	w = do(t, r, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[snapshot.Snapshot](t, w)
	assert.Len(t, got.PrintRoomTrucks, 1)
	assert.Equal(t, first.LastSync, got.LastSync)
	assert.Empty(t, dispatcher.all(), "new trucks are not status changes")

	doc.MovementTrucks["151"] = snapshot.MovementTruck{TruckNumber: "151", Door: "13A", Status: snapshot.StatusInDoor, DoorStatus: snapshot.DoorLoading}
	w = do(t, r, http.MethodPut, "/api/snapshot", doc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []reconcile.StatusChange{
		{TruckNumber: "151", Door: "13A", Status: snapshot.StatusInDoor, DoorStatus: snapshot.DoorLoading},
	}, dispatcher.all())

	got = decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot", nil))
	assert.Equal(t, snapshot.StatusInDoor, got.MovementTrucks["151"].Status, "writes drop the cached read")
}

func TestPutSnapshot_Validation(t *testing.T) {
	r := NewRouter(newTestStore(t), nil, nil, config.Default().Server)

	testCases := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{name: "Not JSON", body: `not json`, expectedCode: http.StatusBadRequest},
		{name: "Array", body: `[]`, expectedCode: http.StatusBadRequest},
		{name: "Missing collections are defaulted", body: `{"drivers":[{"id":"d1","name":"Sam"}]}`, expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/snapshot", tc.body)
			assert.Equal(t, tc.expectedCode, w.Code, w.Body.String())
		})
	}

	got := decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot", nil))
	assert.Len(t, got.Drivers, 1)
	assert.NotNil(t, got.PrintRoomTrucks)
}

func TestDeleteSnapshot(t *testing.T) {
	r := NewRouter(newTestStore(t), nil, nil, config.Default().Server)

	doc := snapshot.Empty()
	doc.PreShiftTrucks = append(doc.PreShiftTrucks, snapshot.PreShiftTruck{ID: "s1", TruckNumber: "151", StagingDoor: "20", StagingPosition: 1, TruckType: snapshot.TruckTypeVan})
	doc.Drivers = append(doc.Drivers, snapshot.Driver{ID: "d1", Name: "Sam"})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/snapshot", doc).Code)

	w := do(t, r, http.MethodDelete, "/api/snapshot?target=partitionA", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/api/snapshot?target=preshift", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[writeResponse](t, w).Success)

	got := decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot", nil))
	assert.Empty(t, got.PreShiftTrucks)
	assert.Len(t, got.Drivers, 1)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/snapshot?target=all", nil).Code)
	got = decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot", nil))
	assert.Empty(t, got.Drivers)
}

func TestSnapshotDatasets(t *testing.T) {
	r := NewRouter(newTestStore(t), nil, nil, config.Default().Server)

	doc := snapshot.Empty()
	doc.Drivers = append(doc.Drivers, snapshot.Driver{ID: "d1", Name: "Sam"})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/snapshot?dataset=north", doc).Code)

	north := decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot?dataset=north", nil))
	assert.Len(t, north.Drivers, 1)

	def := decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/api/snapshot", nil))
	assert.Empty(t, def.Drivers)
}

func TestHealth(t *testing.T) {
	r := NewRouter(newTestStore(t), nil, nil, config.Default().Server)
	w := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
