package services

import (
	"errors"
	"strings"
	"time"

	"github.com/diewo77/mediation-app/internal/models"
	"gorm.io/gorm"
)

// DossierService owns the case lifecycle: creation defaults, the
// status/closure coupling, close/reopen, and deletion rules.
type DossierService struct{ DB *gorm.DB }

func NewDossierService(db *gorm.DB) *DossierService { return &DossierService{DB: db} }

// DossierInput is the field-level command payload for create/update.
type DossierInput struct {
	Type          int        `json:"type"`
	Reference     string     `json:"reference"`
	Titre         string     `json:"titre"`
	Descriptif    *string    `json:"descriptif"`
	Statut        *int       `json:"statut"`
	MediateurID   uint       `json:"mediateur_id"`
	ComediateurID *uint      `json:"comediateur_id"`
	CentreID      *uint      `json:"centre_id"`
	AssistanteID  *uint      `json:"assistante_id"`
	Saisine       *time.Time `json:"saisine"`
	Cloture       *time.Time `json:"cloture"`
}

// Create opens a new case: statut Ouvert, saisine defaulting to now, all
// tiers references checked before the write.
func (s *DossierService) Create(in DossierInput) (*models.Dossier, error) {
	if !models.ValidType(in.Type) {
		return nil, &ValidationError{Field: "type", Code: "unknown_type"}
	}
	if strings.TrimSpace(in.Reference) == "" {
		return nil, &ValidationError{Field: "reference", Code: "required"}
	}
	if strings.TrimSpace(in.Titre) == "" {
		return nil, &ValidationError{Field: "titre", Code: "required"}
	}
	var count int64
	if err := s.DB.Model(&models.Dossier{}).Where("reference = ?", in.Reference).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ValidationError{Field: "reference", Code: "already_taken"}
	}
	if err := s.checkReferences(in); err != nil {
		return nil, err
	}

	saisine := in.Saisine
	if saisine == nil {
		now := time.Now()
		saisine = &now
	}
	d := models.Dossier{
		Type:          in.Type,
		Reference:     in.Reference,
		Titre:         in.Titre,
		Descriptif:    in.Descriptif,
		Statut:        models.StatutOuvert,
		MediateurID:   in.MediateurID,
		ComediateurID: in.ComediateurID,
		CentreID:      in.CentreID,
		AssistanteID:  in.AssistanteID,
		Saisine:       saisine,
	}
	if err := s.DB.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// Update applies field changes and the closure coupling for the requested
// status (see ApplyStatus).
func (s *DossierService) Update(id uint, in DossierInput) (*models.Dossier, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Titre) == "" {
		return nil, &ValidationError{Field: "titre", Code: "required"}
	}
	statut := d.Statut
	if in.Statut != nil {
		if !models.ValidStatut(*in.Statut) {
			return nil, &ValidationError{Field: "statut", Code: "unknown_statut"}
		}
		statut = *in.Statut
	}
	if err := s.checkReferences(in); err != nil {
		return nil, err
	}

	d.Titre = in.Titre
	d.Descriptif = in.Descriptif
	d.MediateurID = in.MediateurID
	d.ComediateurID = in.ComediateurID
	d.CentreID = in.CentreID
	d.AssistanteID = in.AssistanteID
	if in.Saisine != nil {
		d.Saisine = in.Saisine
	}
	ApplyStatus(d, statut, in.Cloture)
	if err := s.DB.Save(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ApplyStatus sets the status and keeps the closure date coupled to it:
// moving to Clos without an explicit date stamps now, moving anywhere else
// clears the date even if the caller supplied one. Archived is deliberately
// not given the Clos treatment: an archived case may stay without a closure
// date and is still inactive through IsActif.
func ApplyStatus(d *models.Dossier, statut int, explicitCloture *time.Time) {
	d.Statut = statut
	if statut == models.StatutClos {
		if explicitCloture != nil {
			d.Cloture = explicitCloture
		} else if d.Cloture == nil {
			now := time.Now()
			d.Cloture = &now
		}
		return
	}
	d.Cloture = nil
}

// Cloturer closes the case unconditionally. Re-closing an already closed
// case just refreshes the closure timestamp.
func (s *DossierService) Cloturer(d *models.Dossier) error {
	now := time.Now()
	d.Statut = models.StatutClos
	d.Cloture = &now
	return s.DB.Save(d).Error
}

// Reouvrir puts the case back in progress and clears the closure date,
// whatever the prior status (including Archivé).
func (s *DossierService) Reouvrir(d *models.Dossier) error {
	d.Statut = models.StatutEnCours
	d.Cloture = nil
	return s.DB.Save(d).Error
}

// Delete removes a case unless actions or documents still hang off it.
func (s *DossierService) Delete(id uint) error {
	d, err := s.Get(id)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.Action{}).Where("dossier_id = ?", d.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &DependencyExistsError{Dependency: "actions"}
	}
	if err := s.DB.Model(&models.Document{}).Where("dossier_id = ?", d.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &DependencyExistsError{Dependency: "documents"}
	}
	return s.DB.Delete(d).Error
}

// Get loads a dossier by id, mapping missing records to ErrNotFound.
func (s *DossierService) Get(id uint) (*models.Dossier, error) {
	var d models.Dossier
	if err := s.DB.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Touch records an access by the given actor and persists it.
func (s *DossierService) Touch(d *models.Dossier, actorID *uint) error {
	d.Access.Touch(actorID)
	return s.DB.Model(d).Updates(map[string]any{
		"acces_id":   d.AccesID,
		"acces_date": d.AccesDate,
	}).Error
}

// checkReferences validates every tiers reference the payload carries.
// Referential integrity on write is the storage layer's job too, but
// checking up front yields a field-level error instead of a driver error.
func (s *DossierService) checkReferences(in DossierInput) error {
	if in.MediateurID == 0 {
		return &ValidationError{Field: "mediateur_id", Code: "required"}
	}
	refs := map[string]*uint{
		"mediateur_id":   &in.MediateurID,
		"comediateur_id": in.ComediateurID,
		"centre_id":      in.CentreID,
		"assistante_id":  in.AssistanteID,
	}
	for field, id := range refs {
		if id == nil {
			continue
		}
		var count int64
		if err := s.DB.Model(&models.Tiers{}).Where("id = ?", *id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &ReferentialIntegrityError{Field: field}
		}
	}
	return nil
}
