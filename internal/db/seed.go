package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/diewo77/mediation-app/internal/models"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func ref(prefix string) *string {
	r := prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
	return &r
}

// Seed inserts a small development data set: a couple of mediators, a court
// with one chamber, and one open dossier. Idempotent per denomination/nom.
func Seed(db *gorm.DB) {
	var count int64
	db.Model(&models.Tiers{}).Count(&count)
	if count > 0 {
		return
	}

	mediateur := models.Tiers{Nom: strPtr("Dupont"), Prenom: strPtr("Jean"), Reference: ref("TRS")}
	db.Create(&mediateur)
	assistante := models.Tiers{Nom: strPtr("Martin"), Prenom: strPtr("Claire"), Reference: ref("TRS")}
	db.Create(&assistante)

	tribunal := models.Tiers{Denomination: strPtr("TGI Paris"), Reference: ref("TRS")}
	db.Create(&tribunal)
	chambre := models.Tiers{Denomination: strPtr("1ère Chambre"), ParentID: &tribunal.ID, Reference: ref("TRS")}
	db.Create(&chambre)

	now := time.Now()
	dossier := models.Dossier{
		Type:         models.TypeMediationCivile,
		Reference:    *ref("DOS"),
		Titre:        "Litige contractuel",
		Statut:       models.StatutOuvert,
		MediateurID:  mediateur.ID,
		CentreID:     &tribunal.ID,
		AssistanteID: &assistante.ID,
		Saisine:      &now,
	}
	db.Create(&dossier)
}
