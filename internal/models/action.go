package models

import "time"

// Action is an activity entry attached to a dossier (meeting, call, note).
// Dossiers with actions cannot be deleted.
type Action struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DossierID uint      `gorm:"not null;index" json:"dossier_id"`
	Type      int       `gorm:"not null" json:"type"`
	Libelle   string    `gorm:"size:255;not null" json:"libelle"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is a file attached to a dossier. Dossiers with documents cannot
// be deleted.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DossierID uint      `gorm:"not null;index" json:"dossier_id"`
	Nom       string    `gorm:"size:255;not null" json:"nom"`
	Chemin    string    `gorm:"size:255;not null" json:"chemin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
