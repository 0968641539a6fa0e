package models

import "time"

// AccessNode is a physical controller (door lock or machine interlock) that
// gates access to at most one device at a time.
type AccessNode struct {
	ID                 string           `json:"id"`
	Type               DeviceType       `json:"type"`
	Name               string           `json:"name"`
	MacAddress         string           `json:"macAddress"`
	Status             AccessNodeStatus `json:"status"`
	DeviceID           *string          `json:"deviceId,omitempty"`
	LastAccessedUserID *string          `json:"lastAccessedUserId,omitempty"`
	LastAccessedAt     *time.Time       `json:"lastAccessedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}
