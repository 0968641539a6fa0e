package models

import "time"

type User struct {
	ID                  string            `json:"id"`
	Username            string            `json:"username"`
	FirstName           string            `json:"firstName"`
	LastName            string            `json:"lastName"`
	PasswordHash        string            `json:"-"`
	Role                UserRole          `json:"role"`
	Status              UserStatus        `json:"status"`
	EmergeAccessLevel   EmergeAccessLevel `json:"eMergeAccessLevel"`
	LastLoggedInAt      *time.Time        `json:"lastLoggedInAt,omitempty"`
	LastUpdatedAt       time.Time         `json:"lastUpdatedAt"`
	LastUpdatedByUserID string            `json:"lastUpdatedByUserId"`
	CreatedAt           time.Time         `json:"createdAt"`
}
