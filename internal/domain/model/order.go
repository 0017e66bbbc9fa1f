package model

import "time"

// Order is the local mirror of a storefront order tracked against the
// warehouse provider.
type Order struct {
	ID             int64
	ExternalID     string
	Status         string
	TrackingNumber string
	// TrackingPushed marks that the tracking number has been delivered to
	// the warehouse API; pushed numbers are not re-sent.
	TrackingPushed bool
	UpdatedAt      time.Time
}

// OrderChange is one record from the warehouse API's incremental order
// status feed.
type OrderChange struct {
	ExternalID string
	Status     string
	ChangedAt  time.Time
}

// TrackingUpdate is the outbound payload pushed to the warehouse API when
// a local order gains a tracking number.
type TrackingUpdate struct {
	TrackingNumber string
	Carrier        string
}
