package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/campus-registration/internal/api/handlers"
	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/auth"
	"github.com/baharkarakas/campus-registration/internal/config"
	"github.com/baharkarakas/campus-registration/internal/logger"
	"github.com/baharkarakas/campus-registration/internal/models"
	"github.com/baharkarakas/campus-registration/internal/repository/memory"
	"github.com/baharkarakas/campus-registration/internal/services"
	"github.com/baharkarakas/campus-registration/internal/worker"
)

const ada = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@x.com","password":"abcd"}`

func testConfig(requireValid bool) config.Config {
	return config.Config{
		Env: "test", // RateRPS 0 turns the limiter off
		JWT: config.JWT{
			Secret:       "router-secret",
			Issuer:       "campus-registration",
			TTL:          time.Hour,
			Header:       "Authorization",
			Prefix:       "Bearer ",
			RequireValid: requireValid,
		},
	}
}

type server struct {
	h    http.Handler
	logs *memory.AuditLogs
	pool *worker.Pool
}

func newServer(t *testing.T, cfg config.Config, users handlers.UserService) *server {
	t.Helper()
	logs := memory.NewAuditLogs()
	pool := worker.NewPool(1, 64)
	t.Cleanup(pool.Stop)

	if users == nil {
		users = services.NewUserService(memory.NewUsers())
	}
	h := NewRouter(RouterDeps{
		Cfg:    cfg,
		Users:  users,
		Tokens: auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		Audit:  services.NewAuditService(logs, pool, logger.Discard()),
		Log:    logger.Discard(),
	})
	return &server{h: h, logs: logs, pool: pool}
}

func (s *server) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 1 {
		req.Header.Set("Authorization", header[0])
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	e := decode[apiError](t, rec)
	assert.Equal(t, status, e.Status)
	assert.Equal(t, msg, e.Message)
}

func TestHealth(t *testing.T) {
	s := newServer(t, testConfig(false), nil)

	rec := s.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "UP"}, decode[map[string]string](t, rec))
}

func TestRegister(t *testing.T) {
	s := newServer(t, testConfig(false), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/students", ada)
	require.Equal(t, http.StatusCreated, rec.Code)
	raw := rec.Body.String()
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "abcd")

	var p models.Principal
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.RoleStudent, p.Role)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "ada@x.com", p.Email)

	t.Run("same email again", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students", ada)
		assertError(t, rec, http.StatusBadRequest, services.MsgEmailRegistered)
	})

	t.Run("same email other variant", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/faculty", ada)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, models.RoleFaculty, decode[models.Principal](t, rec).Role)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students", strings.Replace(ada, "ada@x.com", "no-at-sign", 1))
		assertError(t, rec, http.StatusBadRequest, services.MsgInvalidEmail)
	})

	t.Run("missing field", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students", `{"firstName":"Ada"}`)
		assertError(t, rec, http.StatusBadRequest, services.MsgMissingField)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students", `{"firstName":`)
		assertError(t, rec, http.StatusBadRequest, "malformed request body")
	})
}

// conflictUsers passes validation but loses the race at save time.
type conflictUsers struct {
	*services.UserService
	err error
}

func (c conflictUsers) Register(context.Context, models.Role, models.Candidate) (models.Principal, error) {
	return models.Principal{}, c.err
}

func TestRegister_StoreErrors(t *testing.T) {
	svc := services.NewUserService(memory.NewUsers())

	t.Run("conflict", func(t *testing.T) {
		s := newServer(t, testConfig(false), conflictUsers{svc, errors.Join(errors.New("users.Save"), apperr.ErrStoreConflict)})
		rec := s.do(t, http.MethodPost, "/api/v1/faculty", ada)
		assertError(t, rec, http.StatusConflict, "email already registered")
	})

	t.Run("unclassified", func(t *testing.T) {
		s := newServer(t, testConfig(false), conflictUsers{svc, errors.New("pq: connection reset by 10.0.0.3")})
		rec := s.do(t, http.MethodPost, "/api/v1/faculty", ada)
		assertError(t, rec, http.StatusInternalServerError, "internal error")
	})
}

func login(t *testing.T, s *server, path, body string) (models.Principal, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	h := rec.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(h, "Bearer "), h)
	return decode[models.Principal](t, rec), h
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t, testConfig(false), nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/students", ada).Code)

	p, bearer := login(t, s, "/api/v1/students/login", `{"email":"ada@x.com","password":"abcd"}`)
	assert.Equal(t, "ada@x.com", p.Email)

	t.Run("me with token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/students/me", "", bearer)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, p, decode[models.Principal](t, rec))
	})

	t.Run("token of other variant", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/faculty/me", "", bearer)
		assertError(t, rec, http.StatusUnauthorized, "not authenticated as faculty")
	})

	t.Run("me without token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/students/me", "")
		assertError(t, rec, http.StatusUnauthorized, "not authenticated as student")
	})

	t.Run("tampered token continues anonymous", func(t *testing.T) {
		parts := strings.Split(strings.TrimPrefix(bearer, "Bearer "), ".")
		require.Len(t, parts, 3)
		parts[2] = strings.Repeat("A", len(parts[2]))
		rec := s.do(t, http.MethodGet, "/api/v1/students/me", "", "Bearer "+strings.Join(parts, "."))
		assertError(t, rec, http.StatusUnauthorized, "not authenticated as student")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"ada@x.com","password":"nope"}`)
		assertError(t, rec, http.StatusUnauthorized, services.MsgInvalidCredentials)
		assert.Empty(t, rec.Header().Get("Authorization"))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"bob@x.com","password":"abcd"}`)
		assertError(t, rec, http.StatusUnauthorized, services.MsgInvalidCredentials)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"ada@x.com"}`)
		assertError(t, rec, http.StatusBadRequest, "password: required")
	})

	t.Run("empty credentials are a malformed request", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"","password":""}`)
		assertError(t, rec, http.StatusBadRequest, "email: required; password: required")
	})
}

func TestRegister_LongPasswords(t *testing.T) {
	s := newServer(t, testConfig(false), nil)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{name: "80 ascii chars", email: "long@x.com", pass: strings.Repeat("a", 80)},
		{name: "30 multibyte runes", email: "runes@x.com", pass: strings.Repeat("ñ日", 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{
				"firstName": "Ada", "lastName": "Lovelace", "email": tt.email, "password": tt.pass,
			})
			require.NoError(t, err)
			rec := s.do(t, http.MethodPost, "/api/v1/students", string(body))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			creds, err := json.Marshal(map[string]string{"email": tt.email, "password": tt.pass})
			require.NoError(t, err)
			p, _ := login(t, s, "/api/v1/students/login", string(creds))
			assert.Equal(t, tt.email, p.Email)
		})
	}
}

func TestAuditTrail(t *testing.T) {
	s := newServer(t, testConfig(false), nil)

	s.do(t, http.MethodPost, "/api/v1/students", ada)
	s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"ada@x.com","password":"abcd"}`)
	s.do(t, http.MethodPost, "/api/v1/students/login", `{"email":"ada@x.com","password":"nope"}`)
	s.pool.Stop()

	var actions []models.AuditAction
	for _, l := range s.logs.Entries() {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []models.AuditAction{models.ActionRegisterOK, models.ActionLoginOK, models.ActionLoginFailed}, actions)
}

func TestFailClosed(t *testing.T) {
	s := newServer(t, testConfig(true), nil)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/faculty", ada).Code)
	_, bearer := login(t, s, "/api/v1/faculty/login", `{"email":"ada@x.com","password":"abcd"}`)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "").Code)

	rec := s.do(t, http.MethodPost, "/api/v1/students/", ada)
	require.Equal(t, http.StatusCreated, rec.Code, "trailing slash stays public")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/faculty/me", "", bearer).Code)

	rec = s.do(t, http.MethodGet, "/api/v1/faculty/me", "", "Bearer garbage")
	assertError(t, rec, http.StatusUnauthorized, "missing or invalid token")
}
