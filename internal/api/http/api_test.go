package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-platform/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-platform/helpdesk-service/internal/auth"
	"github.com/helpdesk-platform/helpdesk-service/internal/config"
	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	"github.com/helpdesk-platform/helpdesk-service/internal/observability"
	"github.com/helpdesk-platform/helpdesk-service/internal/persistence"
	"github.com/helpdesk-platform/helpdesk-service/internal/repository"
	"github.com/helpdesk-platform/helpdesk-service/internal/service"
)

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: make(map[string]*domain.User)} }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	seq     int
}

func newMemTicketRepo() *memTicketRepo { return &memTicketRepo{tickets: make(map[string]*domain.Ticket)} }

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	r.seq++
	ticket.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.AssignedToOrUnassigned != nil &&
			ticket.AssignedTo != nil && *ticket.AssignedTo != *filter.AssignedToOrUnassigned {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	users := newMemUserRepo()
	tickets := newMemTicketRepo()
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    4,
	}, users)
	ticketService := service.NewTicketService(tickets, nil)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app
}

type reqOpts struct {
	token  string
	cookie string
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, opts reqOpts) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := nethttp.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.cookie != "" {
		req.AddCookie(&nethttp.Cookie{Name: auth.TokenCookie, Value: opts.cookie})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func registerAccount(t *testing.T, app *fiber.App, name, email, password string) (id, token string) {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, reqOpts{})
	if status != nethttp.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%v)", email, status, body)
	}
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	authData := data["auth"].(map[string]any)
	return user["id"].(string), authData["token"].(string)
}

func TestRegisterLoginFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerAccount(t, app, "A", "a@x.com", "secret1")
	if token == "" {
		t.Fatal("expected token on registration")
	}

	// Duplicate registration is a conflict.
	status, _ := doJSON(t, app, "POST", "/auth/register", map[string]string{
		"name": "A2", "email": "a@x.com", "password": "secret2",
	}, reqOpts{})
	if status != nethttp.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", status)
	}

	status, body := doJSON(t, app, "POST", "/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	}, reqOpts{})
	if status != nethttp.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", status, body)
	}

	status, _ = doJSON(t, app, "POST", "/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	}, reqOpts{})
	if status != nethttp.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", status)
	}

	// Invalid payloads are validation errors, not auth errors.
	status, _ = doJSON(t, app, "POST", "/auth/register", map[string]string{
		"name": "B", "email": "not-an-email", "password": "short",
	}, reqOpts{})
	if status != nethttp.StatusBadRequest {
		t.Errorf("invalid register: expected 400, got %d", status)
	}
}

func TestSessionTransport(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerAccount(t, app, "A", "a@x.com", "secret1")

	// Bearer header works.
	status, body := doJSON(t, app, "GET", "/auth/me", nil, reqOpts{token: token})
	if status != nethttp.StatusOK {
		t.Fatalf("me via bearer: expected 200, got %d (%v)", status, body)
	}

	// Cookie works and wins over a garbage bearer header.
	status, _ = doJSON(t, app, "GET", "/auth/me", nil, reqOpts{cookie: token, token: "garbage"})
	if status != nethttp.StatusOK {
		t.Errorf("cookie precedence: expected 200, got %d", status)
	}

	// No token at all.
	status, _ = doJSON(t, app, "GET", "/tickets/", nil, reqOpts{})
	if status != nethttp.StatusUnauthorized {
		t.Errorf("unauthenticated list: expected 401, got %d", status)
	}
}

func TestTicketLifecycleScenario(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	aliceID, aliceToken := registerAccount(t, app, "Alice", "alice@x.com", "secret1")
	_, bobToken := registerAccount(t, app, "Bob", "bob@x.com", "secret1")

	status, body := doJSON(t, app, "POST", "/tickets/", map[string]string{
		"title": "T1", "description": "D", "category": "Bug",
	}, reqOpts{token: aliceToken})
	if status != nethttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", status, body)
	}
	ticket := body["data"].(map[string]any)
	if ticket["status"] != "open" {
		t.Errorf("status should default to open, got %v", ticket["status"])
	}
	if ticket["priority"] != "medium" {
		t.Errorf("priority should default to medium, got %v", ticket["priority"])
	}
	if ticket["createdBy"] != aliceID {
		t.Errorf("createdBy should be the session identity, got %v", ticket["createdBy"])
	}
	ticketID := ticket["id"].(string)

	// Read-scope isolation: an unrelated user sees nothing.
	status, body = doJSON(t, app, "GET", "/tickets/", nil, reqOpts{token: bobToken})
	if status != nethttp.StatusOK {
		t.Fatalf("list as bob: expected 200, got %d", status)
	}
	if items := body["data"].([]any); len(items) != 0 {
		t.Errorf("expected empty list for unrelated user, got %d items", len(items))
	}

	status, _ = doJSON(t, app, "GET", "/tickets/"+ticketID, nil, reqOpts{token: bobToken})
	if status != nethttp.StatusForbidden {
		t.Errorf("get as bob: expected 403, got %d", status)
	}

	status, _ = doJSON(t, app, "DELETE", "/tickets/"+ticketID, nil, reqOpts{token: bobToken})
	if status != nethttp.StatusForbidden {
		t.Errorf("delete as bob: expected 403, got %d", status)
	}

	// The creator edits the masked fields: title applies, status does not.
	status, body = doJSON(t, app, "PUT", "/tickets/"+ticketID, map[string]any{
		"title": "T1 edited", "status": "resolved",
	}, reqOpts{token: aliceToken})
	if status != nethttp.StatusOK {
		t.Fatalf("update as creator: expected 200, got %d (%v)", status, body)
	}
	updated := body["data"].(map[string]any)
	if updated["title"] != "T1 edited" {
		t.Errorf("title edit should apply, got %v", updated["title"])
	}
	if updated["status"] != "open" {
		t.Errorf("status must be unchanged for user role, got %v", updated["status"])
	}

	status, _ = doJSON(t, app, "GET", "/tickets/missing-id", nil, reqOpts{token: aliceToken})
	if status != nethttp.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", status)
	}

	// The creator may delete their own ticket.
	status, _ = doJSON(t, app, "DELETE", "/tickets/"+ticketID, nil, reqOpts{token: aliceToken})
	if status != nethttp.StatusOK {
		t.Errorf("delete as creator: expected 200, got %d", status)
	}
}

func TestHealthUnreachableStore(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	// The test app has no postgres pool, so the store is unreachable.
	status, _ := doJSON(t, app, "GET", "/health", nil, reqOpts{})
	if status != nethttp.StatusServiceUnavailable {
		t.Errorf("health: expected 503, got %d", status)
	}

	status, _ = doJSON(t, app, "GET", "/health/live", nil, reqOpts{})
	if status != nethttp.StatusOK {
		t.Errorf("liveness is independent of dependencies: expected 200, got %d", status)
	}
}
