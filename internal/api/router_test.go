package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mysteremeal/recipe-api/internal/api/handler"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
	"github.com/mysteremeal/recipe-api/internal/core/service"
	"github.com/mysteremeal/recipe-api/internal/infrastructure/security"
)

// --- in-memory stores ---

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*domain.User
	seq  int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*domain.User{}} }

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	m.seq++
	cp := *user
	cp.ID = fmt.Sprintf("u%d", m.seq)
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) List(_ context.Context, _ ports.ListUsersFilter) ([]*domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *memUsers) SetLocked(_ context.Context, id string, locked bool) (*domain.User, error) {
	return m.update(id, func(u *domain.User) { u.IsLocked = locked })
}

func (m *memUsers) SetAdmin(_ context.Context, id string, admin bool) (*domain.User, error) {
	return m.update(id, func(u *domain.User) { u.IsAdmin = admin })
}

func (m *memUsers) update(id string, fn func(*domain.User)) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	cp := *u
	return &cp, nil
}

type memRecipes struct {
	mu   sync.Mutex
	byID map[string]*domain.Recipe
	seq  int
}

func (m *memRecipes) Create(_ context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *r
	cp.ID = fmt.Sprintf("r%d", m.seq)
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memRecipes) FindByID(_ context.Context, id string) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecipes) List(_ context.Context, _ ports.ListRecipesFilter) ([]*domain.Recipe, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Recipe, 0, len(m.byID))
	for _, r := range m.byID {
		cp := *r
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *memRecipes) Sample(ctx context.Context, f ports.ListRecipesFilter) (*domain.Recipe, error) {
	items, _, _ := m.List(ctx, f)
	if len(items) == 0 {
		return nil, domain.ErrRecipeNotFound
	}
	return items[0], nil
}

func (m *memRecipes) Update(_ context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return nil, domain.ErrRecipeNotFound
	}
	cp := *r
	m.byID[r.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memRecipes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrRecipeNotFound
	}
	delete(m.byID, id)
	return nil
}

type noEvents struct{}

func (noEvents) InsertEvent(context.Context, *domain.AuthEvent) error { return nil }
func (noEvents) ListByUser(context.Context, string, int) ([]domain.AuthEvent, error) {
	return nil, nil
}

// countingLimiter allows max attempts per key.
type countingLimiter struct {
	mu   sync.Mutex
	max  int
	seen map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key]++
	return l.seen[key] <= l.max, time.Minute, nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 30 * time.Second, nil
}

// --- harness ---

type testAPI struct {
	e     *echo.Echo
	users *memUsers
}

func newTestAPI(t *testing.T, opts service.AuthOptions) *testAPI {
	t.Helper()
	users := newMemUsers()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := security.NewJWTIssuer("test-secret", security.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	log := zerolog.Nop()

	e := NewRouter(Dependencies{
		Auth:    service.NewAuthService(users, hasher, tokens, nil, opts, log),
		Gate:    service.NewAccessService(users),
		Tokens:  tokens,
		Users:   service.NewUserService(users, noEvents{}, nil, log),
		Recipes: service.NewRecipeService(&memRecipes{byID: map[string]*domain.Recipe{}}, log),
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(context.Context) error { return nil }),
		},
		Version: "test",
		Logger:  log,
	})
	return &testAPI{e: e, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// --- tests ---

func TestSignupLoginLockScenario(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})

	rec := api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusCreated)
	signup := decode(t, rec)
	for _, k := range []string{"id", "name", "email", "isAdmin", "token"} {
		if _, ok := signup[k]; !ok {
			t.Fatalf("signup response missing %q: %v", k, signup)
		}
	}
	if signup["isAdmin"] != false {
		t.Fatalf("new account must not be admin")
	}
	if _, ok := signup["password"]; ok {
		t.Fatalf("signup response leaks password")
	}

	rec = api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusOK)
	login := decode(t, rec)
	if login["isLocked"] != false || login["id"] != signup["id"] {
		t.Fatalf("unexpected login body: %v", login)
	}
	t2 := login["token"].(string)

	// profile works before the lock
	expectStatus(t, api.do(t, http.MethodGet, "/api/users/profile", t2, nil), http.StatusOK)

	if _, err := api.users.SetLocked(context.Background(), signup["id"].(string), true); err != nil {
		t.Fatalf("lock: %v", err)
	}

	rec = api.do(t, http.MethodGet, "/api/admin/users", t2, nil)
	expectStatus(t, rec, http.StatusForbidden)
	rec = api.do(t, http.MethodGet, "/api/users/profile", t2, nil)
	expectStatus(t, rec, http.StatusForbidden)
	if msg := decode(t, rec)["message"]; msg != "Account is locked" {
		t.Fatalf("unexpected message: %v", msg)
	}

	// login still reports the lock under the default policy
	rec = api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusOK)
	if decode(t, rec)["isLocked"] != true {
		t.Fatalf("expected isLocked:true")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})
	expectStatus(t, api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "password": "pw1",
	}), http.StatusCreated)

	unknown := api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "nobody@x.com", "password": "pw1",
	})
	wrong := api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "nope",
	})

	expectStatus(t, unknown, http.StatusUnauthorized)
	expectStatus(t, wrong, http.StatusUnauthorized)
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", unknown.Body.String(), wrong.Body.String())
	}
	if got := strings.TrimSpace(wrong.Body.String()); got != `{"message":"Invalid email or password"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestSignupErrors(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})
	expectStatus(t, api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "password": "pw1",
	}), http.StatusCreated)

	rec := api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Other", "email": "A@X.com", "password": "pw2",
	})
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode(t, rec)["message"]; msg != "User already exists" {
		t.Fatalf("unexpected message: %v", msg)
	}

	rec = api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"email": "b@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode(t, rec)["message"]; msg != "name is required" {
		t.Fatalf("unexpected message: %v", msg)
	}

	expectStatus(t, api.do(t, http.MethodPost, "/api/users/signup", "", "not-json"), http.StatusBadRequest)

	// privilege flags in the body are ignored
	rec = api.do(t, http.MethodPost, "/api/users/signup", "", map[string]any{
		"name": "Eve", "email": "eve@x.com", "password": "pw1", "isAdmin": true,
	})
	expectStatus(t, rec, http.StatusCreated)
	if decode(t, rec)["isAdmin"] != false {
		t.Fatalf("client must not be able to self-grant admin")
	}
}

func TestLoginRejectsLockedAccountWhenConfigured(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{RejectLockedLogin: true})
	rec := api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusCreated)
	id := decode(t, rec)["id"].(string)
	_, _ = api.users.SetLocked(context.Background(), id, true)

	expectStatus(t, api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	}), http.StatusForbidden)

	// a wrong password still yields the uniform 401
	expectStatus(t, api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "bad",
	}), http.StatusUnauthorized)
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})

	tests := []struct {
		method, path, token string
	}{
		{http.MethodGet, "/api/users/profile", ""},
		{http.MethodGet, "/api/users/profile", "garbage"},
		{http.MethodPost, "/api/recipes", ""},
		{http.MethodGet, "/api/admin/users", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.token, func(t *testing.T) {
			expectStatus(t, api.do(t, tt.method, tt.path, tt.token, nil), http.StatusUnauthorized)
		})
	}
}

func TestAdminAndRecipeFlow(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})
	signup := func(name, email string) (string, string) {
		rec := api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
			"name": name, "email": email, "password": "pw1",
		})
		expectStatus(t, rec, http.StatusCreated)
		body := decode(t, rec)
		return body["id"].(string), body["token"].(string)
	}
	adminID, adminTok := signup("Root", "root@x.com")
	bobID, bobTok := signup("Bob", "bob@x.com")
	_, eveTok := signup("Eve", "eve@x.com")

	// non-admin is refused
	expectStatus(t, api.do(t, http.MethodGet, "/api/admin/users", bobTok, nil), http.StatusForbidden)

	// promotion takes effect on the existing token
	_, _ = api.users.SetAdmin(context.Background(), adminID, true)
	rec := api.do(t, http.MethodGet, "/api/admin/users", adminTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if total := decode(t, rec)["total"]; total != float64(3) {
		t.Fatalf("expected 3 users, got %v", total)
	}

	recipe := map[string]any{
		"title":        "Pancakes",
		"ingredients":  []map[string]string{{"name": "flour", "measure": "200g"}},
		"instructions": "Mix and fry.",
	}
	rec = api.do(t, http.MethodPost, "/api/recipes", bobTok, recipe)
	expectStatus(t, rec, http.StatusCreated)
	created := decode(t, rec)
	if created["createdBy"] != bobID {
		t.Fatalf("expected recipe owned by bob, got %v", created["createdBy"])
	}
	path := "/api/recipes/" + created["id"].(string)

	expectStatus(t, api.do(t, http.MethodGet, path, "", nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/api/recipes/random", "", nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/api/recipes?page=x", "", nil), http.StatusBadRequest)

	recipe["title"] = "Hijacked"
	expectStatus(t, api.do(t, http.MethodPut, path, eveTok, recipe), http.StatusForbidden)
	recipe["title"] = "Fluffy pancakes"
	expectStatus(t, api.do(t, http.MethodPut, path, bobTok, recipe), http.StatusOK)

	rec = api.do(t, http.MethodPost, "/api/recipes", bobTok, map[string]any{"title": "Empty"})
	expectStatus(t, rec, http.StatusBadRequest)

	// lock bob through the admin API; his token stops working
	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/users/"+bobID+"/lock", adminTok, nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodDelete, path, bobTok, nil), http.StatusForbidden)

	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/users/"+adminID+"/lock", adminTok, nil), http.StatusBadRequest)
	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/users/"+bobID+"/admin", adminTok, `{}`), http.StatusBadRequest)
	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/users/nope/unlock", adminTok, nil), http.StatusNotFound)

	// admin may delete anyone's recipe
	rec = api.do(t, http.MethodDelete, path, adminTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode(t, rec)["message"]; msg != "Recipe removed" {
		t.Fatalf("unexpected message: %v", msg)
	}
	expectStatus(t, api.do(t, http.MethodGet, path, "", nil), http.StatusNotFound)

	rec = api.do(t, http.MethodGet, "/api/admin/users/"+bobID+"/events", adminTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if events, ok := decode(t, rec)["events"].([]any); !ok || len(events) != 0 {
		t.Fatalf("expected empty events array")
	}
}

func TestThrottledSignup(t *testing.T) {
	users := newMemUsers()
	tokens, _ := security.NewJWTIssuer("test-secret", time.Hour)
	log := zerolog.Nop()
	e := NewRouter(Dependencies{
		Auth:    service.NewAuthService(users, security.NewBcryptHasher(bcrypt.MinCost), tokens, nil, service.AuthOptions{}, log),
		Gate:    service.NewAccessService(users),
		Tokens:  tokens,
		Users:   service.NewUserService(users, noEvents{}, nil, log),
		Recipes: service.NewRecipeService(&memRecipes{byID: map[string]*domain.Recipe{}}, log),
		Limiter: denyAll{},
		Logger:  log,
	})
	api := &testAPI{e: e, users: users}

	rec := api.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "password": "pw1",
	})
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get(echo.HeaderRetryAfter) != "30" {
		t.Fatalf("expected Retry-After 30, got %q", rec.Header().Get(echo.HeaderRetryAfter))
	}
	if users.seq != 0 {
		t.Fatalf("throttled signup must not reach the store")
	}
}

func TestServiceEndpoints(t *testing.T) {
	api := newTestAPI(t, service.AuthOptions{})

	rec := api.do(t, http.MethodGet, "/", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if decode(t, rec)["version"] != "test" {
		t.Fatalf("unexpected info body: %s", rec.Body.String())
	}
	expectStatus(t, api.do(t, http.MethodGet, "/health", "", nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/health/ready", "", nil), http.StatusOK)

	rec = api.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "recipes_http_requests_total") {
		t.Fatalf("expected http metrics in /metrics output")
	}
}

func newThrottledAPI(limiter *countingLimiter, trustProxy bool) *testAPI {
	users := newMemUsers()
	tokens, _ := security.NewJWTIssuer("test-secret", time.Hour)
	log := zerolog.Nop()
	e := NewRouter(Dependencies{
		Auth:       service.NewAuthService(users, security.NewBcryptHasher(bcrypt.MinCost), tokens, nil, service.AuthOptions{}, log),
		Gate:       service.NewAccessService(users),
		Tokens:     tokens,
		Users:      service.NewUserService(users, noEvents{}, nil, log),
		Recipes:    service.NewRecipeService(&memRecipes{byID: map[string]*domain.Recipe{}}, log),
		Limiter:    limiter,
		TrustProxy: trustProxy,
		Logger:     log,
	})
	return &testAPI{e: e, users: users}
}

func loginFrom(api *testAPI, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/users/login",
		strings.NewReader(`{"email":"a@x.com","password":"pw1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	return rec
}

func TestThrottleIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := &countingLimiter{max: 3, seen: map[string]int{}}
	api := newThrottledAPI(limiter, false)

	throttled := 0
	for i := 0; i < 10; i++ {
		rec := loginFrom(api, "203.0.113.7:4000", fmt.Sprintf("198.51.100.%d", i))
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}

	if throttled != 7 {
		t.Fatalf("expected 7 throttled attempts, got %d", throttled)
	}
	if len(limiter.seen) != 1 || limiter.seen["203.0.113.7"] != 10 {
		t.Fatalf("expected all attempts keyed on the peer address, got %v", limiter.seen)
	}
}

func TestThrottleUsesForwardedForBehindTrustedProxy(t *testing.T) {
	limiter := &countingLimiter{max: 3, seen: map[string]int{}}
	api := newThrottledAPI(limiter, true)

	loginFrom(api, "10.0.0.5:4000", "198.51.100.1")
	loginFrom(api, "10.0.0.5:4000", "198.51.100.2")

	if limiter.seen["198.51.100.1"] != 1 || limiter.seen["198.51.100.2"] != 1 {
		t.Fatalf("expected keys per forwarded client, got %v", limiter.seen)
	}

	// a public peer is not a trusted proxy, so its header is ignored
	loginFrom(api, "203.0.113.7:4000", "198.51.100.3")
	if limiter.seen["203.0.113.7"] != 1 || limiter.seen["198.51.100.3"] != 0 {
		t.Fatalf("untrusted peer header must be ignored, got %v", limiter.seen)
	}
}
