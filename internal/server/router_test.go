package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/mediation-app/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Tiers{}, &models.Dossier{}, &models.Action{}, &models.Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db), db
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := setupRouter(t)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	handler, _ := setupRouter(t)

	for _, path := range []string{"/tiers", "/dossiers", "/tiers/show?id=1", "/dossiers/cloturer?id=1"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, w.Code)
		}
	}
}

func TestRegisterLoginAndAccess(t *testing.T) {
	handler, _ := setupRouter(t)

	// Register opens a session directly.
	reg := httptest.NewRecorder()
	regReq := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"m@test","password":"secret","nom":"Test"}`))
	regReq.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(reg, regReq)
	if reg.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body=%s", reg.Code, reg.Body.String())
	}
	cookies := reg.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie on register")
	}

	// The session grants access to the protected surface.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tiers", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	// Login with the same credentials works too.
	login := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"m@test","password":"secret"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(login, loginReq)
	if login.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", login.Code)
	}

	// Wrong password is rejected.
	bad := httptest.NewRecorder()
	badReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"m@test","password":"wrong"}`))
	badReq.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(bad, badReq)
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401 got %d", bad.Code)
	}
}

func TestSessionOfDeletedUserIsRejected(t *testing.T) {
	handler, db := setupRouter(t)

	reg := httptest.NewRecorder()
	regReq := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"gone@test","password":"secret"}`))
	regReq.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(reg, regReq)
	cookie := reg.Result().Cookies()[0]

	if err := db.Where("email = ?", "gone@test").Delete(&models.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tiers", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler, _ := setupRouter(t)

	reg := httptest.NewRecorder()
	regReq := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"m@test","password":"secret"}`))
	regReq.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(reg, regReq)
	cookie := reg.Result().Cookies()[0]

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tiers", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "method_not_allowed" {
		t.Fatalf("unexpected body: %v", body)
	}
}
