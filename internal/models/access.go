package models

import (
	"time"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
)

// Access groups the "last accessed by / when" columns shared by Tiers and
// Dossier. It is embedded in both records so access tracking stays one
// capability instead of two copies of the same pair of fields.
type Access struct {
	AccesID   *uint      `gorm:"index:idx_acces" json:"acces_id"`
	AccesDate *time.Time `gorm:"index:idx_acces" json:"acces_date"`
}

// Touch stamps the record as accessed now by the given actor. The actor id is
// threaded in explicitly from the HTTP boundary (session user); a nil actor
// still refreshes the timestamp.
func (a *Access) Touch(actorID *uint) {
	now := time.Now()
	a.AccesID = actorID
	a.AccesDate = &now
}

// RecentlyAccessed reports whether the record was accessed within the window.
// A record never accessed is simply not recent, never an error.
func (a Access) RecentlyAccessed(window time.Duration) bool {
	if a.AccesDate == nil {
		return false
	}
	return a.AccesDate.After(time.Now().Add(-window))
}

// LastAccess renders the last access in human form ("3 days ago"), or nil if
// the record was never accessed.
func (a Access) LastAccess() *string {
	if a.AccesDate == nil {
		return nil
	}
	s := humanize.Time(*a.AccesDate)
	return &s
}

// ScopeRecentlyAccessed filters to records accessed within the last N hours.
func ScopeRecentlyAccessed(hours int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
		return db.Where("acces_date IS NOT NULL AND acces_date >= ?", cutoff)
	}
}

// ScopeAccessedBy filters to records last accessed by the given actor.
func ScopeAccessedBy(actorID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("acces_id = ?", actorID)
	}
}

// ScopeOrderByRecentAccess orders by access date, most recent first by default.
func ScopeOrderByRecentAccess(direction string) func(*gorm.DB) *gorm.DB {
	if direction != "asc" {
		direction = "desc"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("acces_date " + direction)
	}
}
