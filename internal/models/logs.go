package models

import "time"

// Audit log rows are append-only. Each captures the post-mutation snapshot of
// the fields that matter for that entity, plus who made the change and when.
// Nothing updates or deletes these tables.

// AccessCardLog records every card status or assignment change.
type AccessCardLog struct {
	ID               string           `json:"id"`
	AccessCardID     string           `json:"accessCardId"`
	Status           AccessCardStatus `json:"status"`
	AssignedToUserID *string          `json:"assignedToUserId,omitempty"`
	CreatedByUserID  string           `json:"createdByUserId"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// DeviceAssignmentLog records every device assignment change. Assigned is
// false for an unassignment entry.
type DeviceAssignmentLog struct {
	ID               string    `json:"id"`
	DeviceID         string    `json:"deviceId"`
	AssignedToUserID string    `json:"assignedToUserId"`
	Assigned         bool      `json:"assigned"`
	CreatedByUserID  string    `json:"createdByUserId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserEditLog records every administrative edit to a user.
type UserEditLog struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	Role              UserRole          `json:"role"`
	Status            UserStatus        `json:"status"`
	EmergeAccessLevel EmergeAccessLevel `json:"eMergeAccessLevel"`
	UpdatedByUserID   string            `json:"updatedByUserId"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// UserAccessLog records user sign-in and sign-out.
type UserAccessLog struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Action    UserAccessAction `json:"action"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AccessNodeLog records the outcome of a card scan at a node.
type AccessNodeLog struct {
	ID              string     `json:"id"`
	AccessNodeID    string     `json:"accessNodeId"`
	AccessCardID    string     `json:"accessCardId"`
	UserID          string     `json:"userId"`
	DeviceID        *string    `json:"deviceId,omitempty"`
	Action          ScanAction `json:"action"`
	Success         bool       `json:"success"`
	CreatedByUserID string     `json:"createdByUserId"`
	CreatedAt       time.Time  `json:"createdAt"`
}
