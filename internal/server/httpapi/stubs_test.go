package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/auth"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

type stubUsers struct {
	register      func(services.RegisterInput) (*models.User, string, error)
	login         func(email, password string) (*models.User, string, error)
	profile       func(userID int64) (*models.User, []services.AssetView, error)
	updateProfile func(userID int64, upd models.UserUpdate) (*models.User, error)
	deactivate    func(userID int64) error
	publicUser    func(userID int64) (*models.User, error)
	publicProfile func(userID int64) (*models.User, []services.AssetView, error)
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, string, error) {
	return s.register(in)
}

func (s *stubUsers) Login(_ context.Context, email, password string) (*models.User, string, error) {
	return s.login(email, password)
}

func (s *stubUsers) Profile(_ context.Context, userID int64) (*models.User, []services.AssetView, error) {
	return s.profile(userID)
}

func (s *stubUsers) UpdateProfile(_ context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	return s.updateProfile(userID, upd)
}

func (s *stubUsers) Deactivate(_ context.Context, userID int64) error {
	return s.deactivate(userID)
}

func (s *stubUsers) PublicUser(_ context.Context, userID int64) (*models.User, error) {
	return s.publicUser(userID)
}

func (s *stubUsers) PublicProfile(_ context.Context, userID int64) (*models.User, []services.AssetView, error) {
	return s.publicProfile(userID)
}

type stubAssets struct {
	upload        func(ownerID int64, encoded, folder string) (*models.Asset, error)
	listMine      func(ownerID int64) ([]services.AssetView, error)
	listPublic    func() ([]services.AssetView, error)
	get           func(id int64) (*services.AssetView, error)
	del           func(ownerID, id int64) error
	deleteAllMine func(ownerID int64) (int64, error)
}

func (s *stubAssets) Upload(_ context.Context, ownerID int64, encoded, folder string) (*models.Asset, error) {
	return s.upload(ownerID, encoded, folder)
}

func (s *stubAssets) ListMine(_ context.Context, ownerID int64) ([]services.AssetView, error) {
	return s.listMine(ownerID)
}

func (s *stubAssets) ListPublic(context.Context) ([]services.AssetView, error) {
	return s.listPublic()
}

func (s *stubAssets) Get(_ context.Context, id int64) (*services.AssetView, error) {
	return s.get(id)
}

func (s *stubAssets) Delete(_ context.Context, ownerID, id int64) error {
	return s.del(ownerID, id)
}

func (s *stubAssets) DeleteAllMine(_ context.Context, ownerID int64) (int64, error) {
	return s.deleteAllMine(ownerID)
}

const testSecret = "test-secret"

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	server   *Server
	handler  http.Handler
	users    *stubUsers
	assets   *stubAssets
	tokens   *auth.Manager
	registry *prometheus.Registry
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()

	reg := prometheus.NewRegistry()
	o := Options{Address: "127.0.0.1:0", Gatherer: reg}
	for _, fn := range opts {
		fn(&o)
	}

	h := &harness{
		users:    &stubUsers{},
		assets:   &stubAssets{},
		tokens:   auth.NewManager(testSecret),
		registry: reg,
	}
	h.server = NewServer(o, logging.Nop{}, h.users, h.assets, h.tokens)
	h.server.now = func() time.Time { return testTime }
	h.handler = h.server.Handler()
	return h
}

func (h *harness) tokenFor(t *testing.T, id int64) string {
	t.Helper()
	token, err := h.tokens.Issue(&models.User{ID: id, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (h *harness) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }

func sampleView(id int64) services.AssetView {
	return services.AssetView{
		ID:          id,
		Filename:    "gallery/abc",
		Key:         "gallery/abc",
		URL:         "https://images-gallery.s3.us-east-1.amazonaws.com/gallery/abc",
		SignedURL:   "https://signed.test/gallery/abc",
		ContentType: strPtr("image/png"),
		Size:        i64Ptr(6),
		UserID:      7,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
		Owner:       &models.Owner{FirstName: "Ann", LastName: "Lee"},
	}
}

func sampleUser(id int64) *models.User {
	return &models.User{
		ID:           id,
		Email:        "ann@example.com",
		PasswordHash: "$argon2id$secret",
		FirstName:    "Ann",
		LastName:     "Lee",
		IsActive:     true,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

var errTransport = errors.New("connection reset by peer")
