package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/infrastructure/auth"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/erp/dropship/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRegistry answers List and Create; other methods are not exercised here
type stubRegistry struct {
	handler.SupplierRegistry
}

func (stubRegistry) List(context.Context, dropshipapp.SupplierListFilter) ([]dropshipapp.SupplierResponse, int64, error) {
	return []dropshipapp.SupplierResponse{}, 0, nil
}

func (stubRegistry) Create(_ context.Context, req dropshipapp.CreateSupplierRequest) (*dropshipapp.SupplierResponse, error) {
	return &dropshipapp.SupplierResponse{ID: uuid.New(), Name: req.Name, Code: req.Code}, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestEngine(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	return NewEngine(opts, Handlers{
		Health:    handler.NewHealthHandler(okPinger{}),
		Suppliers: handler.NewSupplierHandler(stubRegistry{}, nil, nil),
	})
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Enabled:               true,
		Secret:                "router-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "dropship-test",
	})
}

func request(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_Health(t *testing.T) {
	engine := newTestEngine(t, Options{Verifier: newJWT()})

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := request(engine, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	}
}

func TestNewEngine_Authentication(t *testing.T) {
	jwtSvc := newJWT()
	engine := newTestEngine(t, Options{Verifier: jwtSvc})

	readOnly, err := jwtSvc.Issue("viewer@example.com", 0, auth.ScopeRead)
	require.NoError(t, err)
	readWrite, err := jwtSvc.Issue("ops@example.com", 0)
	require.NoError(t, err)

	createBody := `{"name":"Acme","code":"ACME"}`

	tests := []struct {
		name       string
		method     string
		token      string
		body       string
		wantStatus int
	}{
		{"no token", http.MethodGet, "", "", http.StatusUnauthorized},
		{"read token can list", http.MethodGet, readOnly.AccessToken, "", http.StatusOK},
		{"read token cannot create", http.MethodPost, readOnly.AccessToken, createBody, http.StatusForbidden},
		{"write token can create", http.MethodPost, readWrite.AccessToken, createBody, http.StatusCreated},
		{"write token implies read", http.MethodGet, readWrite.AccessToken, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(engine, tt.method, "/api/v1/dropship/suppliers", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestNewEngine_AuthenticationDisabled(t *testing.T) {
	engine := newTestEngine(t, Options{})

	w := request(engine, http.MethodGet, "/api/v1/dropship/suppliers", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_CORSPreflight(t *testing.T) {
	engine := newTestEngine(t, Options{
		Verifier: newJWT(),
		HTTP: config.HTTPConfig{
			CORSAllowOrigins: []string{"https://admin.example.com"},
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/dropship/suppliers", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEngine_OptionalRoutes(t *testing.T) {
	t.Run("sync jobs absent without scheduler", func(t *testing.T) {
		engine := newTestEngine(t, Options{})
		assert.Equal(t, http.StatusNotFound, request(engine, http.MethodGet, "/api/v1/dropship/sync/jobs", "", "").Code)
	})

	t.Run("orders absent without order handler", func(t *testing.T) {
		engine := newTestEngine(t, Options{})
		assert.Equal(t, http.StatusNotFound, request(engine, http.MethodGet, "/api/v1/dropship/orders/"+uuid.NewString(), "", "").Code)
	})

	t.Run("swagger disabled", func(t *testing.T) {
		engine := newTestEngine(t, Options{})
		assert.Equal(t, http.StatusNotFound, request(engine, http.MethodGet, "/swagger/index.html", "", "").Code)
	})

	t.Run("swagger enabled", func(t *testing.T) {
		engine := newTestEngine(t, Options{SwaggerEnabled: true})
		assert.Equal(t, http.StatusOK, request(engine, http.MethodGet, "/swagger/index.html", "", "").Code)
	})
}
