package models

import "time"

type Device struct {
	ID        string       `json:"id"`
	Type      DeviceType   `json:"type"`
	Name      string       `json:"name"`
	Status    DeviceStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// UserDevice is the current device assignment. Rows are hard-deleted on
// unassignment; history lives in device_assignment_logs.
type UserDevice struct {
	ID               string    `json:"id"`
	DeviceID         string    `json:"deviceId"`
	AssignedToUserID string    `json:"assignedToUserId"`
	AssignedByUserID string    `json:"assignedByUserId"`
	AssignedAt       time.Time `json:"assignedAt"`
}
