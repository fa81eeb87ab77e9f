package models

import "time"

// UserProfile is the account document kept alongside the auth identity.
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FullName string
	Phone    string
	Address  string
}
