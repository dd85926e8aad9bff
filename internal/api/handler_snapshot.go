package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/augesrob/Badger-sub000/internal/snapshot"
	"github.com/augesrob/Badger-sub000/internal/store"
)

func dataset(c *gin.Context) string {
	return c.DefaultQuery("dataset", store.DefaultDataset)
}

// GetSnapshot handles GET /api/snapshot.
func (h *Handler) GetSnapshot(c *gin.Context) {
	s, err := h.store.Read(c.Request.Context(), dataset(c))
	if err != nil {
		log.Printf("Error reading snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// PutSnapshot handles POST and PUT /api/snapshot. The body replaces the whole
// document; collections it leaves out are stored empty.
func (h *Handler) PutSnapshot(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s, err := snapshot.Decode(body)
	if err != nil && !snapshot.IsMalformed(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.Write(c.Request.Context(), dataset(c), s)
	if err != nil {
		log.Printf("Error writing snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.dispatcher != nil && len(result.Changes) > 0 {
		log.Printf("Dispatching notifications for %d trucks", len(result.Changes))
		for _, change := range result.Changes {
			h.dispatcher.Dispatch(change)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lastSync": result.LastSync})
}

// DeleteSnapshot handles DELETE /api/snapshot?target=<partition>.
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	target, err := snapshot.ParsePartition(c.DefaultQuery("target", string(snapshot.PartitionAll)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.Clear(c.Request.Context(), dataset(c), target)
	if err != nil {
		log.Printf("Error clearing snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lastSync": result.LastSync})
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
