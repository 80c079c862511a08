package domain

import "time"

// User is the stored credential record for buyers and sellers.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	Location     string
	PasswordHash string
	CreatedAt    time.Time
}
