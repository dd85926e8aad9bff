package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/augesrob/Badger-sub000/internal/agent"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
	"github.com/augesrob/Badger-sub000/internal/storeclient"
)

// TerminalHandler exposes one agent's engine to its local UI.
type TerminalHandler struct {
	engine *agent.Engine
}

func NewTerminalHandler(e *agent.Engine) *TerminalHandler {
	return &TerminalHandler{engine: e}
}

func engineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case snapshot.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, snapshot.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, snapshot.ErrStagingOccupied):
		status = http.StatusConflict
	case errors.Is(err, agent.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case storeclient.IsTransient(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bind[T any](c *gin.Context) (T, bool) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return v, false
	}
	return v, true
}

// respond writes v, or the mapped error if err is set.
func respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		engineError(c, err)
		return
	}
	if v == nil {
		c.Status(status)
		return
	}
	c.JSON(status, v)
}

func (h *TerminalHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

func (h *TerminalHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

func (h *TerminalHandler) Classify(c *gin.Context) {
	num := c.Param("truckNumber")
	c.JSON(http.StatusOK, gin.H{"truckNumber": num, "truckType": h.engine.Classify(num)})
}

// Sync handles POST /sync: push pending edits now, then pull.
func (h *TerminalHandler) Sync(c *gin.Context) {
	err := h.engine.Sync(c.Request.Context())
	respond(c, http.StatusOK, h.engine.Status(), err)
}

func (h *TerminalHandler) AddPrintRoomTruck(c *gin.Context) {
	t, ok := bind[snapshot.PrintRoomTruck](c)
	if !ok {
		return
	}
	created, err := h.engine.AddPrintRoomTruck(t)
	respond(c, http.StatusCreated, created, err)
}

func (h *TerminalHandler) UpdatePrintRoomTruck(c *gin.Context) {
	t, ok := bind[snapshot.PrintRoomTruck](c)
	if !ok {
		return
	}
	t.ID = c.Param("id")
	updated, err := h.engine.UpdatePrintRoomTruck(t)
	respond(c, http.StatusOK, updated, err)
}

func (h *TerminalHandler) DeletePrintRoomTruck(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.engine.DeletePrintRoomTruck(c.Param("id")))
}

func (h *TerminalHandler) AddPreShiftTruck(c *gin.Context) {
	t, ok := bind[snapshot.PreShiftTruck](c)
	if !ok {
		return
	}
	created, err := h.engine.AddPreShiftTruck(t)
	respond(c, http.StatusCreated, created, err)
}

func (h *TerminalHandler) UpdatePreShiftTruck(c *gin.Context) {
	t, ok := bind[snapshot.PreShiftTruck](c)
	if !ok {
		return
	}
	t.ID = c.Param("id")
	updated, err := h.engine.UpdatePreShiftTruck(t)
	respond(c, http.StatusOK, updated, err)
}

func (h *TerminalHandler) DeletePreShiftTruck(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.engine.DeletePreShiftTruck(c.Param("id")))
}

// UpdateMovement handles PATCH /movement/:truckNumber.
func (h *TerminalHandler) UpdateMovement(c *gin.Context) {
	u, ok := bind[agent.MovementUpdate](c)
	if !ok {
		return
	}
	updated, err := h.engine.UpdateMovement(c.Param("truckNumber"), u)
	respond(c, http.StatusOK, updated, err)
}

func (h *TerminalHandler) AddDriver(c *gin.Context) {
	d, ok := bind[snapshot.Driver](c)
	if !ok {
		return
	}
	created, err := h.engine.AddDriver(d)
	respond(c, http.StatusCreated, created, err)
}

func (h *TerminalHandler) UpdateDriver(c *gin.Context) {
	d, ok := bind[snapshot.Driver](c)
	if !ok {
		return
	}
	d.ID = c.Param("id")
	updated, err := h.engine.UpdateDriver(d)
	respond(c, http.StatusOK, updated, err)
}

func (h *TerminalHandler) DeleteDriver(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.engine.DeleteDriver(c.Param("id")))
}

func (h *TerminalHandler) AddFleetNumber(c *gin.Context) {
	f, ok := bind[snapshot.FleetNumber](c)
	if !ok {
		return
	}
	created, err := h.engine.AddFleetNumber(f)
	respond(c, http.StatusCreated, created, err)
}

func (h *TerminalHandler) UpdateFleetNumber(c *gin.Context) {
	f, ok := bind[snapshot.FleetNumber](c)
	if !ok {
		return
	}
	f.ID = c.Param("id")
	updated, err := h.engine.UpdateFleetNumber(f)
	respond(c, http.StatusOK, updated, err)
}

func (h *TerminalHandler) DeleteFleetNumber(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.engine.DeleteFleetNumber(c.Param("id")))
}
