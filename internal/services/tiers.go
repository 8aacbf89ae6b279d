package services

import (
	"errors"
	"strings"

	"github.com/diewo77/mediation-app/internal/models"
	"gorm.io/gorm"
)

// TiersService owns creation, update, hierarchy and deletion rules for
// party records.
type TiersService struct{ DB *gorm.DB }

func NewTiersService(db *gorm.DB) *TiersService { return &TiersService{DB: db} }

// TiersInput is the field-level command payload for create/update. Type is
// the declared kind on creation: "personne", "juridiction" or "tribunal".
type TiersInput struct {
	Type         string  `json:"type"`
	Nom          *string `json:"nom"`
	Prenom       *string `json:"prenom"`
	Denomination *string `json:"denomination"`
	ParentID     *uint   `json:"parent_id"`
	Reference    *string `json:"reference"`
	Identifiant  *string `json:"identifiant"`
	Siret        *string `json:"siret"`
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

// Create validates the declared kind, clears the fields the kind does not
// carry, checks the parent reference and persists the record.
func (s *TiersService) Create(in TiersInput) (*models.Tiers, error) {
	switch in.Type {
	case "personne":
		if blank(in.Nom) {
			return nil, &ValidationError{Field: "nom", Code: "required_for_personne"}
		}
		in.Denomination = nil
		in.ParentID = nil
	case "juridiction", "tribunal":
		if blank(in.Denomination) {
			return nil, &ValidationError{Field: "denomination", Code: "required_for_juridiction"}
		}
		in.Nom = nil
		in.Prenom = nil
		if in.Type == "tribunal" {
			in.ParentID = nil
		}
	default:
		return nil, &ValidationError{Field: "type", Code: "unknown_kind"}
	}

	if in.ParentID != nil {
		if err := s.checkExists(*in.ParentID, "parent_id"); err != nil {
			return nil, err
		}
	}

	t := models.Tiers{
		Reference:    in.Reference,
		Nom:          in.Nom,
		Prenom:       in.Prenom,
		Denomination: in.Denomination,
		ParentID:     in.ParentID,
		Identifiant:  in.Identifiant,
		Siret:        in.Siret,
	}
	if err := s.DB.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Update applies field changes while keeping the record's current kind
// satisfiable: an existing personne keeps a nom, an existing juridiction
// keeps a denomination. Changing the derived kind through parent_id or the
// naming fields is allowed.
func (s *TiersService) Update(id uint, in TiersInput) (*models.Tiers, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if t.IsPersonne() && blank(in.Nom) {
		return nil, &ValidationError{Field: "nom", Code: "required_for_personne"}
	}
	if t.IsJuridiction() && blank(in.Denomination) {
		return nil, &ValidationError{Field: "denomination", Code: "required_for_juridiction"}
	}
	if in.ParentID != nil {
		if *in.ParentID == t.ID {
			return nil, ErrSelfReference
		}
		if err := s.checkExists(*in.ParentID, "parent_id"); err != nil {
			return nil, err
		}
	}

	t.Nom = in.Nom
	t.Prenom = in.Prenom
	t.Denomination = in.Denomination
	t.ParentID = in.ParentID
	t.Reference = in.Reference
	t.Identifiant = in.Identifiant
	t.Siret = in.Siret
	if err := s.DB.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// SetParent re-attaches a node in the hierarchy. Only direct self-reference
// is rejected here; the stored graph is expected to be a forest.
func (s *TiersService) SetParent(t *models.Tiers, parentID *uint) error {
	if parentID != nil {
		if *parentID == t.ID {
			return ErrSelfReference
		}
		if err := s.checkExists(*parentID, "parent_id"); err != nil {
			return err
		}
	}
	t.ParentID = parentID
	return s.DB.Save(t).Error
}

// HierarchyPath returns the ancestry names root-first, e.g.
// ["TGI Paris", "1ère Chambre"]. The walk keeps a visited set so it
// terminates even if the stored graph ever carries a cycle.
func (s *TiersService) HierarchyPath(t *models.Tiers) ([]string, error) {
	path := []string{t.FullName()}
	seen := map[uint]bool{t.ID: true}
	current := t
	for current.ParentID != nil {
		if seen[*current.ParentID] {
			break
		}
		var parent models.Tiers
		if err := s.DB.First(&parent, *current.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		seen[parent.ID] = true
		path = append([]string{parent.FullName()}, path...)
		current = &parent
	}
	return path, nil
}

// Delete removes a tiers unless anything still depends on it: children in
// the hierarchy, or dossiers referencing it as mediator.
func (s *TiersService) Delete(id uint) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.Dossier{}).Where("mediateur_id = ?", t.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &DependencyExistsError{Dependency: "dossiers_mediateur"}
	}
	if err := s.DB.Model(&models.Tiers{}).Where("parent_id = ?", t.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &DependencyExistsError{Dependency: "children"}
	}
	return s.DB.Delete(t).Error
}

// Get loads a tiers by id, mapping missing records to ErrNotFound.
func (s *TiersService) Get(id uint) (*models.Tiers, error) {
	var t models.Tiers
	if err := s.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Touch records an access by the given actor and persists it.
func (s *TiersService) Touch(t *models.Tiers, actorID *uint) error {
	t.Access.Touch(actorID)
	return s.DB.Model(t).Updates(map[string]any{
		"acces_id":   t.AccesID,
		"acces_date": t.AccesDate,
	}).Error
}

func (s *TiersService) checkExists(id uint, field string) error {
	var count int64
	if err := s.DB.Model(&models.Tiers{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &ReferentialIntegrityError{Field: field}
	}
	return nil
}
