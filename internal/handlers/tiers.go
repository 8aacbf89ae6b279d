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

type TiersHandler struct {
	DB  *gorm.DB
	Svc *services.TiersService
}

func NewTiersHandler(db *gorm.DB, svc *services.TiersService) *TiersHandler {
	return &TiersHandler{DB: db, Svc: svc}
}

func parseID(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// List: GET /tiers – search, type filter, pagination and stats.
func (h *TiersHandler) List(w http.ResponseWriter, r *http.Request) {
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

	dbq := h.DB.Model(&models.Tiers{})
	switch r.URL.Query().Get("type") {
	case "personnes":
		dbq = dbq.Scopes(models.ScopePersonnes)
	case "juridictions":
		dbq = dbq.Scopes(models.ScopeJuridictions)
	case "tribunaux":
		dbq = dbq.Scopes(models.ScopeTribunaux)
	case "chambres":
		dbq = dbq.Scopes(models.ScopeChambres)
	case "personnes_morales":
		dbq = dbq.Scopes(models.ScopePersonnesMorales)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("nom LIKE ? OR prenom LIKE ? OR denomination LIKE ? OR reference LIKE ?", like, like, like, like)
	}
	if v := r.URL.Query().Get("accessed_by"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			dbq = dbq.Scopes(models.ScopeAccessedBy(uint(id)))
		}
	}

	var total int64
	dbq.Count(&total)
	var tiers []models.Tiers
	if err := dbq.Preload("Parent").Preload("Children").
		Order("nom").Order("denomination").
		Limit(limit).Offset(offset).Find(&tiers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_tiers", nil)
		return
	}

	items := make([]map[string]any, 0, len(tiers))
	for i := range tiers {
		items = append(items, tiersJSON(&tiers[i]))
	}

	stats := map[string]int64{}
	h.DB.Model(&models.Tiers{}).Count(&total)
	stats["total"] = total
	var n int64
	h.DB.Model(&models.Tiers{}).Scopes(models.ScopePersonnes).Count(&n)
	stats["personnes"] = n
	h.DB.Model(&models.Tiers{}).Scopes(models.ScopeJuridictions).Count(&n)
	stats["juridictions"] = n
	h.DB.Model(&models.Tiers{}).Scopes(models.ScopeTribunaux).Count(&n)
	stats["tribunaux"] = n
	h.DB.Model(&models.Tiers{}).Scopes(models.ScopeRecentlyAccessed(24)).Count(&n)
	stats["recent_access"] = n

	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"stats":  stats,
		"limit":  limit,
		"offset": offset,
	})
}

// tiersJSON augments the raw record with its derived attributes so every
// serialized row carries the computed classification.
func tiersJSON(t *models.Tiers) map[string]any {
	return map[string]any{
		"id":             t.ID,
		"reference":      t.Reference,
		"nom":            t.Nom,
		"prenom":         t.Prenom,
		"denomination":   t.Denomination,
		"parent_id":      t.ParentID,
		"acces_date":     t.AccesDate,
		"full_name":      t.FullName(),
		"type_entity":    t.TypeEntity(),
		"is_personne":    t.IsPersonne(),
		"is_juridiction": t.IsJuridiction(),
		"is_tribunal":    t.IsTribunal(),
	}
}

// Options: GET /tiers/options – select options for a partition (default
// tribunaux, for the parent picker).
func (h *TiersHandler) Options(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Tiers{})
	switch r.URL.Query().Get("type") {
	case "personnes":
		dbq = dbq.Scopes(models.ScopePersonnes).Order("nom")
	default:
		dbq = dbq.Scopes(models.ScopeTribunaux).Order("denomination")
	}
	var tiers []models.Tiers
	if err := dbq.Find(&tiers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_tiers", nil)
		return
	}
	options := make([]models.SelectOption, 0, len(tiers))
	for i := range tiers {
		options = append(options, tiers[i].ToSelectOption())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"options": options})
}

// Create: POST /tiers
func (h *TiersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TiersInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	t, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = h.Svc.Touch(t, auth.ActorID(r.Context()))
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"tiers":   tiersJSON(t),
		"message": i18n.T(lang, "tiers_created"),
	})
}

// Show: GET /tiers/show?id=...
func (h *TiersHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var t models.Tiers
	if err := h.DB.Preload("Parent").Preload("Children").First(&t, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	_ = h.Svc.Touch(&t, auth.ActorID(r.Context()))

	path, err := h.Svc.HierarchyPath(&t)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_tiers", nil)
		return
	}

	stats := map[string]int64{}
	var n int64
	h.DB.Model(&models.Dossier{}).Scopes(models.ScopeParMediateur(t.ID)).Count(&n)
	stats["dossiers_mediateur"] = n
	h.DB.Model(&models.Dossier{}).Scopes(models.ScopeParMediateur(t.ID)).Scopes(models.ScopeActifs).Count(&n)
	stats["dossiers_actifs"] = n
	h.DB.Model(&models.Dossier{}).Where("comediateur_id = ?", t.ID).Count(&n)
	stats["dossiers_comediateur"] = n
	h.DB.Model(&models.Tiers{}).Where("parent_id = ?", t.ID).Count(&n)
	stats["enfants"] = n

	payload := tiersJSON(&t)
	payload["hierarchy_path"] = strings.Join(path, " > ")
	httpx.JSON(w, http.StatusOK, map[string]any{"tiers": payload, "stats": stats})
}

// Update: POST /tiers/update?id=...
func (h *TiersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.TiersInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	t, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = h.Svc.Touch(t, auth.ActorID(r.Context()))
	lang := middleware.LangFrom(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tiers":   tiersJSON(t),
		"message": i18n.T(lang, "tiers_updated"),
	})
}

// Delete: POST /tiers/delete?id=...
func (h *TiersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	httpx.JSON(w, http.StatusOK, map[string]string{"message": i18n.T(lang, "tiers_deleted")})
}
