package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/mediation-app/internal/auth"
	"github.com/diewo77/mediation-app/internal/httpx"
	"github.com/diewo77/mediation-app/internal/i18n"
	"github.com/diewo77/mediation-app/internal/middleware"
	"github.com/diewo77/mediation-app/internal/models"
	"github.com/diewo77/mediation-app/internal/services"
	"gorm.io/gorm"
)

type DossierHandler struct {
	DB  *gorm.DB
	Svc *services.DossierService
}

func NewDossierHandler(db *gorm.DB, svc *services.DossierService) *DossierHandler {
	return &DossierHandler{DB: db, Svc: svc}
}

// dossierJSON augments the raw record with its derived lifecycle attributes.
func dossierJSON(d *models.Dossier) map[string]any {
	payload := map[string]any{
		"id":               d.ID,
		"type":             d.Type,
		"reference":        d.Reference,
		"titre":            d.Titre,
		"descriptif":       d.Descriptif,
		"statut":           d.Statut,
		"mediateur_id":     d.MediateurID,
		"comediateur_id":   d.ComediateurID,
		"centre_id":        d.CentreID,
		"assistante_id":    d.AssistanteID,
		"saisine":          d.Saisine,
		"cloture":          d.Cloture,
		"acces_date":       d.AccesDate,
		"is_actif":         d.IsActif(),
		"statut_label":     d.StatutLabel(),
		"type_label":       d.TypeLabel(),
		"duree_traitement": d.DureeTraitement(),
	}
	if d.Mediateur != nil {
		payload["mediateur"] = d.Mediateur.FullName()
	}
	return payload
}

// List: GET /dossiers – search, statut/type/mediateur filters, pagination
// and a stats block.
func (h *DossierHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 15
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}

	dbq := h.DB.Model(&models.Dossier{})
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("reference LIKE ? OR titre LIKE ? OR descriptif LIKE ?", like, like, like)
	}
	switch statut := r.URL.Query().Get("statut"); statut {
	case "", "all":
	case "actifs":
		dbq = dbq.Scopes(models.ScopeActifs)
	case "clos":
		dbq = dbq.Scopes(models.ScopeClos)
	default:
		if code, err := strconv.Atoi(statut); err == nil {
			dbq = dbq.Scopes(models.ScopeParStatut(code))
		}
	}
	if v := r.URL.Query().Get("type"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			dbq = dbq.Scopes(models.ScopeParType(code))
		}
	}
	if v := r.URL.Query().Get("mediateur_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			dbq = dbq.Scopes(models.ScopeParMediateur(uint(id)))
		}
	}

	var total int64
	dbq.Count(&total)
	query := dbq.Preload("Mediateur").Preload("Comediateur").Preload("Centre").Preload("Assistante")
	if r.URL.Query().Get("sort") == "recent_access" {
		query = query.Scopes(models.ScopeOrderByRecentAccess(r.URL.Query().Get("direction")))
	} else {
		query = query.Order("saisine desc")
	}
	var dossiers []models.Dossier
	if err := query.Limit(limit).Offset(offset).Find(&dossiers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_dossiers", nil)
		return
	}
	items := make([]map[string]any, 0, len(dossiers))
	for i := range dossiers {
		items = append(items, dossierJSON(&dossiers[i]))
	}

	stats := map[string]int64{"total": 0}
	var n int64
	h.DB.Model(&models.Dossier{}).Count(&n)
	stats["total"] = n
	h.DB.Model(&models.Dossier{}).Scopes(models.ScopeActifs).Count(&n)
	stats["actifs"] = n
	h.DB.Model(&models.Dossier{}).Scopes(models.ScopeClos).Count(&n)
	stats["clos"] = n
	h.DB.Model(&models.Dossier{}).Scopes(models.ScopeRecentlyAccessed(24)).Count(&n)
	stats["recent_access"] = n

	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  total,
		"stats":  stats,
		"limit":  limit,
		"offset": offset,
	})
}

// Create: POST /dossiers
func (h *DossierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.DossierInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	d, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = h.Svc.Touch(d, auth.ActorID(r.Context()))
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"dossier": dossierJSON(d),
		"message": i18n.T(lang, "dossier_created"),
	})
}

// Show: GET /dossiers/show?id=...
func (h *DossierHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var d models.Dossier
	if err := h.DB.Preload("Mediateur").Preload("Comediateur").Preload("Centre").Preload("Assistante").
		First(&d, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	_ = h.Svc.Touch(&d, auth.ActorID(r.Context()))

	stats := map[string]any{}
	var n int64
	h.DB.Model(&models.Action{}).Where("dossier_id = ?", d.ID).Count(&n)
	stats["actions"] = n
	h.DB.Model(&models.Document{}).Where("dossier_id = ?", d.ID).Count(&n)
	stats["documents"] = n
	stats["duree"] = d.DureeTraitement()

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dossier": dossierJSON(&d),
		"summary": d.ToSummary(),
		"stats":   stats,
	})
}

// Update: POST /dossiers/update?id=...
func (h *DossierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.DossierInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	d, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = h.Svc.Touch(d, auth.ActorID(r.Context()))
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"dossier": dossierJSON(d),
		"message": i18n.T(lang, "dossier_updated"),
	})
}

// Delete: POST /dossiers/delete?id=...
func (h *DossierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": i18n.T(lang, "dossier_deleted")})
}

// Cloturer: POST /dossiers/cloturer?id=...
func (h *DossierHandler) Cloturer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	d, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.Svc.Cloturer(d); err != nil {
		writeServiceError(w, err)
		return
	}
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"dossier": dossierJSON(d),
		"message": i18n.T(lang, "dossier_closed"),
	})
}

// Reouvrir: POST /dossiers/reouvrir?id=...
func (h *DossierHandler) Reouvrir(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	d, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.Svc.Reouvrir(d); err != nil {
		writeServiceError(w, err)
		return
	}
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"dossier": dossierJSON(d),
		"message": i18n.T(lang, "dossier_reopened"),
	})
}
