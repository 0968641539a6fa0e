package models

import "time"

type AccessCard struct {
	ID                  string           `json:"id"`
	CardNumber          int              `json:"cardNumber"`
	FacilityCode        int              `json:"facilityCode"`
	CardType            int              `json:"cardType"`
	Status              AccessCardStatus `json:"status"`
	LastUpdatedAt       time.Time        `json:"lastUpdatedAt"`
	LastUpdatedByUserID string           `json:"lastUpdatedByUserId"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// UserAccessCard is the current card assignment. Rows are hard-deleted on
// unassignment; history lives in access_card_logs.
type UserAccessCard struct {
	ID               string    `json:"id"`
	AccessCardID     string    `json:"accessCardId"`
	AssignedToUserID string    `json:"assignedToUserId"`
	AssignedByUserID string    `json:"assignedByUserId"`
	CreatedAt        time.Time `json:"createdAt"`
}
