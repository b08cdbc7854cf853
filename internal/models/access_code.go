package models

import "time"

type AccessCode struct {
	ID             string    `json:"id"`
	ProgramID      int64     `json:"program_id"`
	PhysioID       int64     `json:"physio_id"`
	Code           string    `json:"code"`
	MaxRedemptions int       `json:"max_redemptions"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type Redemption struct {
	ID         int64      `json:"id"`
	ProgramID  int64      `json:"program_id"`
	CustomerID int64      `json:"customer_id"`
	CodeID     *string    `json:"code_id,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
