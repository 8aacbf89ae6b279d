package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// TiersKind is the explicit discriminant for what a Tiers row represents.
// The stored row encodes the kind implicitly in which of
// (nom, denomination, parent_id) are set; Classify derives it once so the
// four-way split stays testable in a single place.
type TiersKind int

const (
	KindPersonne TiersKind = iota
	KindTribunal
	KindChambre
	KindPersonneMorale
)

func (k TiersKind) String() string {
	switch k {
	case KindPersonne:
		return "Personne"
	case KindTribunal:
		return "Tribunal"
	case KindChambre:
		return "Chambre"
	default:
		return "Personne morale"
	}
}

// Tiers is any party entity: individual, organization, court or court
// chamber, all in one self-referential table.
type Tiers struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Reference    *string `gorm:"size:255;uniqueIndex" json:"reference"`
	Nom          *string `gorm:"size:255;index:idx_nom_prenom" json:"nom"`
	Prenom       *string `gorm:"size:255;index:idx_nom_prenom" json:"prenom"`
	Denomination *string `gorm:"size:255;index" json:"denomination"`
	Avatar       *string `gorm:"size:255" json:"avatar"`
	Identifiant  *string `gorm:"size:255" json:"identifiant"`
	Siret        *string `gorm:"size:14" json:"siret"`

	ParentID *uint   `gorm:"index" json:"parent_id"`
	Parent   *Tiers  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Tiers `gorm:"foreignKey:ParentID" json:"children,omitempty"`

	DossiersMediateur   []Dossier `gorm:"foreignKey:MediateurID" json:"-"`
	DossiersComediateur []Dossier `gorm:"foreignKey:ComediateurID" json:"-"`

	Access
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tiers) TableName() string { return "tiers" }

// Classify derives the kind from the raw field state. Evaluation order
// matters: personne, then tribunal, then chambre, with personne morale as the
// fallback when no identifying combination matches.
func (t *Tiers) Classify() TiersKind {
	switch {
	case t.IsPersonne():
		return KindPersonne
	case t.IsTribunal():
		return KindTribunal
	case t.IsJuridiction():
		return KindChambre
	default:
		return KindPersonneMorale
	}
}

// IsPersonne: an individual has a surname and no place in the hierarchy.
func (t *Tiers) IsPersonne() bool {
	return t.Nom != nil && t.ParentID == nil
}

// IsJuridiction: any node with a parent, or a root named only by denomination.
func (t *Tiers) IsJuridiction() bool {
	return t.ParentID != nil || (t.Nom == nil && t.Denomination != nil)
}

// IsTribunal: a jurisdiction at the root of the hierarchy.
func (t *Tiers) IsTribunal() bool {
	return t.IsJuridiction() && t.ParentID == nil
}

// IsChambre: a jurisdiction below a tribunal.
func (t *Tiers) IsChambre() bool {
	return t.IsJuridiction() && !t.IsTribunal()
}

// TypeEntity returns the display label for the derived kind.
func (t *Tiers) TypeEntity() string { return t.Classify().String() }

// FullName renders "Prenom Nom" for individuals, falling back to nom alone,
// then denomination, then a fixed placeholder.
func (t *Tiers) FullName() string {
	if t.Prenom != nil && t.Nom != nil {
		return strings.TrimSpace(*t.Prenom + " " + *t.Nom)
	}
	if t.Nom != nil {
		return *t.Nom
	}
	if t.Denomination != nil {
		return *t.Denomination
	}
	return "Sans nom"
}

// SelectOption is the projection consumed by selection widgets. Pure read,
// no access tracking side effect.
type SelectOption struct {
	Value         uint   `json:"value"`
	Label         string `json:"label"`
	Type          string `json:"type"`
	Statut        string `json:"statut,omitempty"`
	IsActif       *bool  `json:"isActif,omitempty"`
	IsJuridiction *bool  `json:"isJuridiction,omitempty"`
}

func (t *Tiers) ToSelectOption() SelectOption {
	isJur := t.IsJuridiction()
	return SelectOption{
		Value:         t.ID,
		Label:         t.FullName(),
		Type:          t.TypeEntity(),
		IsJuridiction: &isJur,
	}
}

// Partition scopes. These follow the classification predicates exactly, so
// for any row precisely one of Personnes / Tribunaux / Chambres /
// PersonnesMorales matches, and Juridictions = Tribunaux + Chambres.

func ScopePersonnes(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL AND nom IS NOT NULL")
}

func ScopeJuridictions(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NOT NULL OR (nom IS NULL AND denomination IS NOT NULL)")
}

func ScopeTribunaux(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL AND nom IS NULL AND denomination IS NOT NULL")
}

func ScopeChambres(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NOT NULL")
}

func ScopePersonnesMorales(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL AND nom IS NULL AND denomination IS NULL")
}
