package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations. No rows means every truck is watched.
	WatchedTrucks []WatchedTruck `gorm:"foreignKey:PushSubscriptionEndpoint;constraint:OnDelete:CASCADE"`
}

// WatchedTruck limits a subscription to status changes of one truck number.
type WatchedTruck struct {
	PushSubscriptionEndpoint string `gorm:"primaryKey"`
	TruckNumber              string `gorm:"primaryKey;size:64"`
}
