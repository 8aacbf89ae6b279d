package models

import "time"

// User is an application account (the acting identity recorded by access
// tracking). Kept separate from Tiers: a Tiers is a party in a case, a User
// is someone who logs in.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Nom       string    `gorm:"size:255" json:"nom"`
	Prenom    string    `gorm:"size:255" json:"prenom"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
