package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"booknet.org/internal/auth"
)

type stubStore struct {
	users   map[string]*auth.User
	roles   []auth.Role
	findErr error
	saveErr error
	saved   *auth.User
}

func (s *stubStore) FindUserByEmail(_ context.Context, email string) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, auth.ErrNotFound
}

func (s *stubStore) FindRolesByName(_ context.Context, names []string) ([]auth.Role, error) {
	var out []auth.Role
	for _, role := range s.roles {
		if slices.Contains(names, role.Name) {
			out = append(out, role)
		}
	}
	return out, nil
}

func (s *stubStore) SaveUser(_ context.Context, user *auth.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	user.ID = "01TESTULID"
	s.saved = user
	if s.users == nil {
		s.users = make(map[string]*auth.User)
	}
	s.users[user.Email] = user
	return nil
}

func testAPI(t *testing.T, store auth.Store) (*API, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec("test-secret", "booknet-auth")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	api := New(Options{
		Service:       auth.NewService(store, codec),
		Authenticator: auth.NewAuthenticator(codec),
		Version:       "test",
	})
	return api, codec
}

func seededStore(t *testing.T) *stubStore {
	t.Helper()
	hash, err := auth.HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	role := auth.Role{ID: "r1", Name: "USER", Permissions: []auth.Permission{{ID: "p1", Name: "READ"}}}
	return &stubStore{
		users: map[string]*auth.User{
			"user@test.com": {
				ID:           "u1",
				Email:        "user@test.com",
				PasswordHash: hash,
				Enabled:      true,
				Roles:        []auth.Role{role},
			},
		},
		roles: []auth.Role{role},
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestLoginSuccess(t *testing.T) {
	api, codec := testAPI(t, seededStore(t))

	rr := postJSON(t, api.Handler(), "/v1/auth/login", loginRequest{
		Username: "user@test.com",
		Password: "123456",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Status || resp.Username != "user@test.com" || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	subject, authorities, err := codec.Validate(resp.Token)
	if err != nil {
		t.Fatalf("Validate issued token: %v", err)
	}
	if subject != "user@test.com" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if auth.JoinAuthorities(authorities) != "ROLE_USER,READ" {
		t.Fatalf("unexpected authorities: %v", authorities)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	api, _ := testAPI(t, seededStore(t))
	handler := api.Handler()

	unknown := postJSON(t, handler, "/v1/auth/login", loginRequest{Username: "ghost@test.com", Password: "123456"})
	wrong := postJSON(t, handler, "/v1/auth/login", loginRequest{Username: "user@test.com", Password: "654321"})

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrong.Code)
	}
	var a, b map[string]any
	if err := json.Unmarshal(unknown.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if err := json.Unmarshal(wrong.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if a["error"] != b["error"] {
		t.Fatalf("failure bodies leak the cause: %v vs %v", a["error"], b["error"])
	}
}

func TestLoginStoreFailureIsServerError(t *testing.T) {
	store := seededStore(t)
	store.findErr = errors.New("pg: connection refused")
	api, _ := testAPI(t, store)

	rr := postJSON(t, api.Handler(), "/v1/auth/login", loginRequest{
		Username: "user@test.com",
		Password: "123456",
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a store outage, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "invalid username or password" {
		t.Fatalf("outage must not be reported as bad credentials")
	}
}

func TestLoginLockedAccount(t *testing.T) {
	store := seededStore(t)
	store.users["user@test.com"].AccountLocked = true
	api, _ := testAPI(t, store)

	rr := postJSON(t, api.Handler(), "/v1/auth/login", loginRequest{
		Username: "user@test.com",
		Password: "123456",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for locked account, got %d", rr.Code)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	store := &stubStore{roles: []auth.Role{
		{ID: "r1", Name: "USER", Permissions: []auth.Permission{{ID: "p1", Name: "READ"}}},
	}}
	api, codec := testAPI(t, store)
	handler := api.Handler()

	rr := postJSON(t, handler, "/v1/auth/register", registerRequest{
		Firstname:   "Test",
		Lastname:    "Reader",
		DateOfBirth: "1990-04-02",
		Email:       "user@test.com",
		Password:    "123456",
		Roles:       []string{"USER"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	_, authorities, err := codec.Validate(resp.Token)
	if err != nil {
		t.Fatalf("Validate issued token: %v", err)
	}
	if auth.JoinAuthorities(authorities) != "ROLE_USER,READ" {
		t.Fatalf("unexpected authority claim: %q", auth.JoinAuthorities(authorities))
	}
	if store.saved == nil || store.saved.PasswordHash == "123456" {
		t.Fatalf("user not persisted with hashed password")
	}

	login := postJSON(t, handler, "/v1/auth/login", loginRequest{Username: "user@test.com", Password: "123456"})
	if login.Code != http.StatusOK {
		t.Fatalf("login after register: expected 200, got %d", login.Code)
	}
}

func TestRegisterUnknownRoles(t *testing.T) {
	store := &stubStore{roles: []auth.Role{{ID: "r1", Name: "USER"}}}
	api, _ := testAPI(t, store)

	rr := postJSON(t, api.Handler(), "/v1/auth/register", registerRequest{
		Email:    "ghost@test.com",
		Password: "123456",
		Roles:    []string{"GHOST"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if store.saved != nil {
		t.Fatalf("no user may be persisted for unknown roles")
	}
}

func TestRegisterRoleCapEnforced(t *testing.T) {
	api, _ := testAPI(t, seededStore(t))

	rr := postJSON(t, api.Handler(), "/v1/auth/register", registerRequest{
		Email:    "user2@test.com",
		Password: "123456",
		Roles:    []string{"USER", "ADMIN", "AUDITOR"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for exceeding role cap, got %d", rr.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := seededStore(t)
	store.saveErr = auth.ErrDuplicateEmail
	api, _ := testAPI(t, store)

	rr := postJSON(t, api.Handler(), "/v1/auth/register", registerRequest{
		Email:    "user@test.com",
		Password: "123456",
		Roles:    []string{"USER"},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	api, codec := testAPI(t, seededStore(t))
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	token, _, err := codec.Issue("user@test.com", []string{"ROLE_USER", "READ"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(authHeader, bearer+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Subject     string   `json:"subject"`
		Authorities []string `json:"authorities"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Subject != "user@test.com" || !slices.Contains(body.Authorities, "READ") {
		t.Fatalf("unexpected principal: %+v", body)
	}
}
