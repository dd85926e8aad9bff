package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augesrob/Badger-sub000/internal/agent"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
	"github.com/augesrob/Badger-sub000/internal/storeclient"
)

type stubRemote struct {
	mu      sync.Mutex
	doc     snapshot.Snapshot
	pushErr error
	pushes  int
}

func (r *stubRemote) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Clone(), nil
}

func (r *stubRemote) Push(ctx context.Context, s snapshot.Snapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes++
	if r.pushErr != nil {
		return 0, r.pushErr
	}
	r.doc = s.Clone()
	r.doc.LastSync = int64(r.pushes)
	return r.doc.LastSync, nil
}

func newTerminal(t *testing.T, load bool) (http.Handler, *agent.Engine, *stubRemote) {
	t.Helper()
	remote := &stubRemote{doc: snapshot.Empty()}
	layout := snapshot.Layout{
		LoadingDoors: []string{"13A", "13B"},
		StagingDoors: []string{"20", "21"},
	}
	e, err := agent.NewEngine(agent.Config{PullInterval: 5 * time.Second, Debounce: time.Second}, remote, layout, clockwork.NewFakeClockAt(time.Unix(1700000000, 0)))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	if load {
		require.NoError(t, e.Pull(context.Background()))
	}
	return NewTerminalRouter(e), e, remote
}

func TestTerminal_NotLoaded(t *testing.T) {
	r, _, _ := newTerminal(t, false)

	w := do(t, r, http.MethodPost, "/drivers", snapshot.Driver{Name: "Sam"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[agent.Status](t, w)
	assert.False(t, status.Loaded)
}

func TestTerminal_PrintRoomFeedsBoard(t *testing.T) {
	r, _, _ := newTerminal(t, true)

	w := do(t, r, http.MethodPost, "/print-room", snapshot.PrintRoomTruck{TruckNumber: "151", Door: "13A", Batch: 1, Pods: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[snapshot.PrintRoomTruck](t, w)
	assert.NotEmpty(t, created.ID)

	board := decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/snapshot", nil))
	require.Contains(t, board.MovementTrucks, "151")
	assert.Equal(t, "13A", board.MovementTrucks["151"].Door)
	assert.Equal(t, 2, board.MovementTrucks["151"].Pods)

	created.Pods = 5
	w = do(t, r, http.MethodPut, "/print-room/"+created.ID, created)
	require.Equal(t, http.StatusOK, w.Code)
	board = decode[snapshot.Snapshot](t, do(t, r, http.MethodGet, "/snapshot", nil))
	assert.Equal(t, 5, board.MovementTrucks["151"].Pods)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/print-room/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/print-room/"+created.ID, nil).Code)
}

func TestTerminal_ErrorMapping(t *testing.T) {
	r, _, _ := newTerminal(t, true)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/pre-shift",
		snapshot.PreShiftTruck{TruckNumber: "151", StagingDoor: "20", StagingPosition: 1}).Code)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/print-room",
		snapshot.PrintRoomTruck{TruckNumber: "705", Door: "13B", Batch: 2}).Code)

	testCases := []struct {
		name         string
		method       string
		target       string
		body         any
		expectedCode int
	}{
		{name: "Bad JSON", method: http.MethodPost, target: "/print-room", body: `{`, expectedCode: http.StatusBadRequest},
		{name: "Batch out of range", method: http.MethodPost, target: "/print-room", body: snapshot.PrintRoomTruck{TruckNumber: "1", Door: "13A", Batch: 9}, expectedCode: http.StatusBadRequest},
		{name: "Unknown door", method: http.MethodPost, target: "/print-room", body: snapshot.PrintRoomTruck{TruckNumber: "1", Door: "99", Batch: 1}, expectedCode: http.StatusBadRequest},
		{name: "Staging slot taken", method: http.MethodPost, target: "/pre-shift", body: snapshot.PreShiftTruck{TruckNumber: "152", StagingDoor: "20", StagingPosition: 1}, expectedCode: http.StatusConflict},
		{name: "Unknown pre-shift id", method: http.MethodPut, target: "/pre-shift/nope", body: snapshot.PreShiftTruck{TruckNumber: "152", StagingDoor: "21", StagingPosition: 1}, expectedCode: http.StatusNotFound},
		{name: "Movement status", method: http.MethodPatch, target: "/movement/705", body: map[string]string{"status": "Loaded"}, expectedCode: http.StatusOK},
		{name: "Unknown movement status", method: http.MethodPatch, target: "/movement/705", body: map[string]string{"status": "Lost"}, expectedCode: http.StatusBadRequest},
		{name: "Truck not on board", method: http.MethodPatch, target: "/movement/999", body: map[string]string{"doorStatus": "Hold"}, expectedCode: http.StatusNotFound},
		{name: "Driver without name", method: http.MethodPost, target: "/drivers", body: snapshot.Driver{}, expectedCode: http.StatusBadRequest},
		{name: "Unknown driver", method: http.MethodDelete, target: "/drivers/nope", expectedCode: http.StatusNotFound},
		{name: "Fleet box truck", method: http.MethodPost, target: "/fleet", body: snapshot.FleetNumber{Number: "300", Type: snapshot.TruckTypeBoxTruck}, expectedCode: http.StatusBadRequest},
		{name: "Fleet semi", method: http.MethodPost, target: "/fleet", body: snapshot.FleetNumber{Number: "300", Type: snapshot.TruckTypeSemi}, expectedCode: http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestTerminal_Classify(t *testing.T) {
	r, _, _ := newTerminal(t, true)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/fleet", snapshot.FleetNumber{Number: "300", Type: snapshot.TruckTypeSemi}).Code)

	w := do(t, r, http.MethodGet, "/classify/300", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"truckNumber":"300","truckType":"Semi"}`, w.Body.String())
}

func TestTerminal_Sync(t *testing.T) {
	r, _, remote := newTerminal(t, true)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/drivers", snapshot.Driver{Name: "Sam"}).Code)

	w := do(t, r, http.MethodPost, "/sync", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decode[agent.Status](t, w)
	assert.False(t, status.Pending)
	assert.Equal(t, agent.StateSynced, status.State)

	remote.mu.Lock()
	assert.Equal(t, 1, remote.pushes)
	assert.Len(t, remote.doc.Drivers, 1)
	remote.pushErr = &storeclient.TransientIOError{Op: "push", Err: errors.New("connection refused")}
	remote.mu.Unlock()

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/drivers", snapshot.Driver{Name: "Alex"}).Code)
	w = do(t, r, http.MethodPost, "/sync", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
