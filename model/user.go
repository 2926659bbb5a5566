// Package model defines database models and shared request/response structs
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"unique; not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	// Workspace the user was invited into. Empty for self-registered users
	// until an invite is accepted.
	WorkspaceCode    string    `json:"workspace_code"`
	Verified         bool      `gorm:"default:false" json:"verified"`
	Paid             bool      `gorm:"default:false" json:"paid"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
}
