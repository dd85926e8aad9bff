package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/augesrob/Badger-sub000/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint      string   `json:"endpoint" binding:"required"`
	P256DH        string   `json:"p256dh" binding:"required"`
	Auth          string   `json:"auth" binding:"required"`
	WatchedTrucks []string `json:"watched_trucks"`
}

// PutSubscription handles the creation or replacement of a subscription. An
// empty watched_trucks list subscribes to every truck.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	watched := make([]model.WatchedTruck, 0, len(req.WatchedTrucks))
	seen := make(map[string]bool, len(req.WatchedTrucks))
	for _, num := range req.WatchedTrucks {
		num = strings.TrimSpace(num)
		if num == "" || seen[num] {
			continue
		}
		seen[num] = true
		watched = append(watched, model.WatchedTruck{PushSubscriptionEndpoint: req.Endpoint, TruckNumber: num})
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Omit("WatchedTrucks").Create(&subscription).Error; err != nil {
			return err
		}

		if err := tx.Where("push_subscription_endpoint = ?", req.Endpoint).Delete(&model.WatchedTruck{}).Error; err != nil {
			return err
		}
		if len(watched) > 0 {
			if err := tx.Create(&watched).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("push_subscription_endpoint = ?", req.Endpoint).Delete(&model.WatchedTruck{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query value without URL-decoding it. Push endpoints
// are URLs themselves and some clients send them unescaped.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription handles the retrieval of a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	if err := h.store.DB().Preload("WatchedTrucks").First(&subscription, "endpoint = ?", raw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	trucks := make([]string, len(subscription.WatchedTrucks))
	for i, w := range subscription.WatchedTrucks {
		trucks[i] = w.TruckNumber
	}

	c.JSON(http.StatusOK, gin.H{"watched_trucks": trucks})
}
