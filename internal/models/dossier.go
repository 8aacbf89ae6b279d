package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
)

// Dossier status codes. Stored data and external callers depend on the exact
// numbers; never renumber.
const (
	StatutOuvert    = 1
	StatutEnCours   = 2
	StatutSuspendu  = 3
	StatutEnAttente = 4
	StatutClos      = 9
	StatutArchive   = 99
)

// Mediation type codes (101–105).
const (
	TypeMediationCivile         = 101
	TypeMediationCommerciale    = 102
	TypeMediationAdministrative = 103
	TypeMediationFamiliale      = 104
	TypeMediationPenale         = 105
)

// StatutLabels and TypeLabels are the fixed enumeration tables.
var StatutLabels = map[int]string{
	StatutOuvert:    "Ouvert",
	StatutEnCours:   "En cours",
	StatutSuspendu:  "Suspendu",
	StatutEnAttente: "En attente",
	StatutClos:      "Clos",
	StatutArchive:   "Archivé",
}

var TypeLabels = map[int]string{
	TypeMediationCivile:         "Médiation Civile",
	TypeMediationCommerciale:    "Médiation Commerciale",
	TypeMediationAdministrative: "Médiation Administrative",
	TypeMediationFamiliale:      "Médiation Familiale",
	TypeMediationPenale:         "Médiation Pénale",
}

// ValidStatut reports whether the code is one of the known statuses.
func ValidStatut(code int) bool {
	_, ok := StatutLabels[code]
	return ok
}

// ValidType reports whether the code is one of the known mediation types.
func ValidType(code int) bool {
	_, ok := TypeLabels[code]
	return ok
}

// Dossier is a mediation case record.
type Dossier struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Type       int     `gorm:"not null;index:idx_type_statut" json:"type"`
	Reference  string  `gorm:"size:255;not null;uniqueIndex" json:"reference"`
	Titre      string  `gorm:"size:255;not null" json:"titre"`
	Descriptif *string `gorm:"type:text" json:"descriptif"`
	Statut     int     `gorm:"not null;default:1;index:idx_type_statut;index:idx_mediateur_statut" json:"statut"`

	MediateurID   uint   `gorm:"not null;index:idx_mediateur_statut" json:"mediateur_id"`
	Mediateur     *Tiers `gorm:"foreignKey:MediateurID" json:"mediateur,omitempty"`
	ComediateurID *uint  `json:"comediateur_id"`
	Comediateur   *Tiers `gorm:"foreignKey:ComediateurID" json:"comediateur,omitempty"`
	CentreID      *uint  `json:"centre_id"`
	Centre        *Tiers `gorm:"foreignKey:CentreID" json:"centre,omitempty"`
	AssistanteID  *uint  `json:"assistante_id"`
	Assistante    *Tiers `gorm:"foreignKey:AssistanteID" json:"assistante,omitempty"`

	Saisine *time.Time `gorm:"index:idx_saisine_cloture" json:"saisine"`
	Cloture *time.Time `gorm:"index:idx_saisine_cloture" json:"cloture"`

	Actions   []Action   `gorm:"foreignKey:DossierID" json:"actions,omitempty"`
	Documents []Document `gorm:"foreignKey:DossierID" json:"documents,omitempty"`

	Access
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Dossier) TableName() string { return "dossiers" }

// IsActif: a case is active until it carries a closure date or is archived.
// Archived cases stay inactive even without a closure date.
func (d *Dossier) IsActif() bool {
	return d.Cloture == nil && d.Statut != StatutArchive
}

// StatutLabel renders the status code; unknown codes render as "Inconnu".
func (d *Dossier) StatutLabel() string {
	if label, ok := StatutLabels[d.Statut]; ok {
		return label
	}
	return "Inconnu"
}

// TypeLabel renders the type code; unknown codes render as "Type <code>".
func (d *Dossier) TypeLabel() string {
	if label, ok := TypeLabels[d.Type]; ok {
		return label
	}
	return "Type " + strconv.Itoa(d.Type)
}

// DureeTraitement is the humanized elapsed time between saisine and cloture
// (or now while the case is open). Nil when saisine is unset.
func (d *Dossier) DureeTraitement() *string {
	if d.Saisine == nil {
		return nil
	}
	fin := time.Now()
	if d.Cloture != nil {
		fin = *d.Cloture
	}
	s := strings.TrimSpace(humanize.RelTime(*d.Saisine, fin, "", ""))
	if s == "" {
		s = "now"
	}
	return &s
}

func (d *Dossier) ToSelectOption() SelectOption {
	actif := d.IsActif()
	return SelectOption{
		Value:   d.ID,
		Label:   d.Reference + " - " + d.Titre,
		Type:    d.TypeLabel(),
		Statut:  d.StatutLabel(),
		IsActif: &actif,
	}
}

// Summary is the dashboard projection. Like ToSelectOption it is a pure
// read; access tracking is the caller's business.
type Summary struct {
	ID         uint    `json:"id"`
	Reference  string  `json:"reference"`
	Titre      string  `json:"titre"`
	Mediateur  string  `json:"mediateur"`
	Statut     string  `json:"statut"`
	Type       string  `json:"type"`
	Saisine    *string `json:"saisine"`
	Duree      *string `json:"duree"`
	IsActif    bool    `json:"is_actif"`
	LastAccess *string `json:"last_access"`
}

func (d *Dossier) ToSummary() Summary {
	s := Summary{
		ID:         d.ID,
		Reference:  d.Reference,
		Titre:      d.Titre,
		Statut:     d.StatutLabel(),
		Type:       d.TypeLabel(),
		Duree:      d.DureeTraitement(),
		IsActif:    d.IsActif(),
		LastAccess: d.LastAccess(),
	}
	if d.Mediateur != nil {
		s.Mediateur = d.Mediateur.FullName()
	}
	if d.Saisine != nil {
		formatted := d.Saisine.Format("02/01/2006")
		s.Saisine = &formatted
	}
	return s
}

// Lifecycle scopes.

func ScopeActifs(db *gorm.DB) *gorm.DB {
	return db.Where("cloture IS NULL AND statut != ?", StatutArchive)
}

func ScopeClos(db *gorm.DB) *gorm.DB {
	return db.Where("cloture IS NOT NULL OR statut = ?", StatutArchive)
}

func ScopeParMediateur(mediateurID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("mediateur_id = ?", mediateurID)
	}
}

func ScopeParType(code int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("type = ?", code)
	}
}

func ScopeParStatut(code int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("statut = ?", code)
	}
}
