package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/diewo77/mediation-app/internal/auth"
	"github.com/diewo77/mediation-app/internal/models"
	"github.com/diewo77/mediation-app/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Tiers{}, &models.Dossier{}, &models.Action{}, &models.Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func itoa(id uint) string { return strconv.Itoa(int(id)) }

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Email: "u@test", Password: "x", Nom: "Test", Prenom: "U"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return &user
}

func authed(r *http.Request, userID uint) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

func TestTiersCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)

	req := httptest.NewRequest(http.MethodPost, "/tiers", strings.NewReader(`{"type":"personne","nom":"Dupont","prenom":"Jean"}`))
	req.Header.Set("Content-Type", "application/json")
	req = authed(req, user.ID)
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Tiers map[string]any `json:"tiers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Tiers["full_name"] != "Jean Dupont" || created.Tiers["type_entity"] != "Personne" {
		t.Fatalf("unexpected payload: %v", created.Tiers)
	}
	// Creation records the actor's access.
	if created.Tiers["acces_date"] == nil {
		t.Fatalf("expected acces_date recorded on create")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/tiers", nil)
	w2 := httptest.NewRecorder()
	h.List(w2, authed(req2, user.ID))
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
	var payload struct {
		Items []map[string]any `json:"items"`
		Stats map[string]int64 `json:"stats"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 tiers got %d", len(payload.Items))
	}
	if payload.Stats["total"] != 1 || payload.Stats["personnes"] != 1 {
		t.Fatalf("unexpected stats: %v", payload.Stats)
	}
}

func TestTiersListFilterAndSearch(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)
	svc := services.NewTiersService(db)

	if _, err := svc.Create(services.TiersInput{Type: "personne", Nom: strPtr("Dupont"), Prenom: strPtr("Jean")}); err != nil {
		t.Fatalf("personne: %v", err)
	}
	tribunal, err := svc.Create(services.TiersInput{Type: "tribunal", Denomination: strPtr("TGI Paris")})
	if err != nil {
		t.Fatalf("tribunal: %v", err)
	}
	if _, err := svc.Create(services.TiersInput{Type: "juridiction", Denomination: strPtr("1ère Chambre"), ParentID: &tribunal.ID}); err != nil {
		t.Fatalf("chambre: %v", err)
	}

	list := func(query string) []map[string]any {
		req := httptest.NewRequest(http.MethodGet, "/tiers?"+query, nil)
		w := httptest.NewRecorder()
		h.List(w, authed(req, user.ID))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", w.Code)
		}
		var payload struct {
			Items []map[string]any `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return payload.Items
	}

	if items := list("type=juridictions"); len(items) != 2 {
		t.Fatalf("expected 2 juridictions got %d", len(items))
	}
	if items := list("type=tribunaux"); len(items) != 1 {
		t.Fatalf("expected 1 tribunal got %d", len(items))
	}
	items := list("search=Dupont")
	if len(items) != 1 || items[0]["full_name"] != "Jean Dupont" {
		t.Fatalf("unexpected search result: %v", items)
	}

	if err := svc.Touch(tribunal, &user.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	items = list("accessed_by=" + itoa(user.ID))
	if len(items) != 1 || items[0]["denomination"] != "TGI Paris" {
		t.Fatalf("unexpected accessed_by result: %v", items)
	}
}

func TestTiersShowHierarchyAndStats(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)
	svc := services.NewTiersService(db)

	tribunal, _ := svc.Create(services.TiersInput{Type: "tribunal", Denomination: strPtr("TGI Paris")})
	chambre, err := svc.Create(services.TiersInput{Type: "juridiction", Denomination: strPtr("1ère Chambre"), ParentID: &tribunal.ID})
	if err != nil {
		t.Fatalf("chambre: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tiers/show?id="+itoa(chambre.ID), nil)
	w := httptest.NewRecorder()
	h.Show(w, authed(req, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var payload struct {
		Tiers map[string]any   `json:"tiers"`
		Stats map[string]int64 `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tiers["hierarchy_path"] != "TGI Paris > 1ère Chambre" {
		t.Fatalf("unexpected hierarchy: %v", payload.Tiers["hierarchy_path"])
	}

	// Consultation counts as an access.
	var stored models.Tiers
	if err := db.First(&stored, chambre.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.AccesID == nil || *stored.AccesID != user.ID || stored.AccesDate == nil {
		t.Fatalf("expected access recorded for user %d, got %+v", user.ID, stored.Access)
	}

	// The parent's stats must count the chambre.
	req2 := httptest.NewRequest(http.MethodGet, "/tiers/show?id="+itoa(tribunal.ID), nil)
	w2 := httptest.NewRecorder()
	h.Show(w2, authed(req2, user.ID))
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Stats["enfants"] != 1 {
		t.Fatalf("expected 1 enfant, got %d", payload.Stats["enfants"])
	}
}

func TestTiersOptions(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)
	svc := services.NewTiersService(db)

	if _, err := svc.Create(services.TiersInput{Type: "tribunal", Denomination: strPtr("TGI Paris")}); err != nil {
		t.Fatalf("tribunal: %v", err)
	}
	if _, err := svc.Create(services.TiersInput{Type: "personne", Nom: strPtr("Dupont")}); err != nil {
		t.Fatalf("personne: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tiers/options", nil)
	w := httptest.NewRecorder()
	h.Options(w, authed(req, user.ID))
	var payload struct {
		Options []models.SelectOption `json:"options"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Default partition is tribunaux (parent picker).
	if len(payload.Options) != 1 || payload.Options[0].Label != "TGI Paris" {
		t.Fatalf("unexpected options: %v", payload.Options)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/tiers/options?type=personnes", nil)
	w2 := httptest.NewRecorder()
	h.Options(w2, authed(req2, user.ID))
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Options) != 1 || payload.Options[0].Label != "Dupont" {
		t.Fatalf("unexpected options: %v", payload.Options)
	}
}

func TestTiersValidationErrorPayload(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)

	req := httptest.NewRequest(http.MethodPost, "/tiers", strings.NewReader(`{"type":"personne"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, authed(req, user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") || !strings.Contains(w.Body.String(), "nom") {
		t.Fatalf("expected field error on nom, body=%s", w.Body.String())
	}
}

func TestTiersDeleteConflict(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)
	svc := services.NewTiersService(db)

	tribunal, _ := svc.Create(services.TiersInput{Type: "tribunal", Denomination: strPtr("TGI Paris")})
	if _, err := svc.Create(services.TiersInput{Type: "juridiction", Denomination: strPtr("1ère Chambre"), ParentID: &tribunal.ID}); err != nil {
		t.Fatalf("chambre: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tiers/delete?id="+itoa(tribunal.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, authed(req, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "children") {
		t.Fatalf("expected children dependency, body=%s", w.Body.String())
	}
}

func TestTiersShowNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewTiersHandler(db, services.NewTiersService(db))
	user := seedUser(t, db)

	req := httptest.NewRequest(http.MethodGet, "/tiers/show?id=999", nil)
	w := httptest.NewRecorder()
	h.Show(w, authed(req, user.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
