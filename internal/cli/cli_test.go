package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/infrastructure/storage/memory"
	"github.com/ecsetu/portal/internal/pkg/config"
)

// fakeBackend serves /api/profile for a single user record.
type fakeBackend struct {
	mu   sync.Mutex
	user domain.User
	puts int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("id") != b.user.ID {
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(b.user)
	case http.MethodPut:
		var body struct {
			domain.UserPatch
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID != b.user.ID {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		if body.Phone != nil && *body.Phone == "invalid" {
			http.Error(w, `{"error":"phone rejected"}`, http.StatusUnprocessableEntity)
			return
		}
		b.puts++
		b.user = b.user.Apply(body.UserPatch.WithoutID())
		_ = json.NewEncoder(w).Encode(b.user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBackend) state() (domain.User, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.user, b.puts
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	store   *memory.Store
	apiURL  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := &fakeBackend{user: domain.User{
		ID:    "42",
		Name:  "Jane Doe",
		Email: "jane@corp.example",
		Role:  domain.RoleEngineer,
		Phone: "555",
	}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return &harness{t: t, backend: backend, store: memory.New(domain.DefaultSnapshotKey), apiURL: srv.URL}
}

func (h *harness) exec(args ...string) (string, error) {
	h.t.Helper()
	cfg := &config.Config{Client: config.ClientConfig{APIURL: h.apiURL, Store: "memory", StateKey: domain.DefaultSnapshotKey}}
	var out bytes.Buffer
	root := NewRootCommand(&App{Config: cfg, Log: zerolog.Nop(), Out: &out, Store: h.store})
	root.SetArgs(args)
	root.SetOut(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) snapshot() domain.Snapshot {
	h.t.Helper()
	raw, err := h.store.Load(context.Background())
	if err != nil {
		h.t.Fatalf("load snapshot: %v", err)
	}
	snap, err := domain.DecodeSnapshot(raw)
	if err != nil {
		h.t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestCLI_LoginEnrichesAndPersists(t *testing.T) {
	h := newHarness(t)

	out, err := h.exec("login", "--id", "42", "--role", "admin", "--name", "J")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Jane Doe") || !strings.Contains(out, "role:  Admin") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	snap := h.snapshot()
	if !snap.IsAuthenticated || snap.CurrentRole != domain.RoleAdmin {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.CurrentUser.Phone != "555" {
		t.Fatalf("expected backend phone in snapshot, got %+v", snap.CurrentUser)
	}
}

func TestCLI_WhoamiJSON(t *testing.T) {
	h := newHarness(t)
	if _, err := h.exec("login", "--id", "42", "--role", "Approver"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := h.exec("whoami", "--out", "json")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var view stateView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if !view.Authenticated || view.Role != domain.RoleApprover || view.User.ID != "42" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestCLI_RoleChangesOnlyRole(t *testing.T) {
	h := newHarness(t)
	if _, err := h.exec("login", "--id", "42", "--role", "Engineer"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := h.exec("role", "operations"); err != nil {
		t.Fatalf("role: %v", err)
	}
	snap := h.snapshot()
	if snap.CurrentRole != domain.RoleOperations {
		t.Fatalf("expected Operations, got %q", snap.CurrentRole)
	}
	if snap.CurrentUser.Role != domain.RoleEngineer {
		t.Fatalf("user role must be untouched, got %q", snap.CurrentUser.Role)
	}

	if _, err := h.exec("role", "Boss"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCLI_UpdateGoesThroughBackend(t *testing.T) {
	h := newHarness(t)
	if _, err := h.exec("login", "--id", "42"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := h.exec("update", "--phone", "777"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if user, puts := h.backend.state(); puts != 1 || user.Phone != "777" {
		t.Fatalf("backend not updated: puts=%d user=%+v", puts, user)
	}
	if got := h.snapshot().CurrentUser.Phone; got != "777" {
		t.Fatalf("expected phone 777 in snapshot, got %q", got)
	}

	_, err := h.exec("update", "--phone", "invalid")
	if !errors.Is(err, domain.ErrProfileRejected) || !strings.Contains(err.Error(), "phone rejected") {
		t.Fatalf("expected backend rejection, got %v", err)
	}
	if got := h.snapshot().CurrentUser.Phone; got != "777" {
		t.Fatalf("rejected update must not change state, got %q", got)
	}

	if _, err := h.exec("update"); err == nil {
		t.Fatalf("expected error for empty update")
	}
}

func TestCLI_LogoutClearsSnapshot(t *testing.T) {
	h := newHarness(t)
	if _, err := h.exec("login", "--name", "Local"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := h.exec("logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(out, "not logged in") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := h.store.Load(context.Background()); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected snapshot removed, got %v", err)
	}
}

func TestCLI_RefreshRequiresLogin(t *testing.T) {
	h := newHarness(t)
	if _, err := h.exec("refresh"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}

	if _, err := h.exec("login", "--id", "42"); err != nil {
		t.Fatalf("login: %v", err)
	}
	h.backend.mu.Lock()
	h.backend.user.Location = "Pune"
	h.backend.mu.Unlock()

	if _, err := h.exec("refresh"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := h.snapshot().CurrentUser.Location; got != "Pune" {
		t.Fatalf("expected refreshed location, got %q", got)
	}
}

func TestOpenStore_Unknown(t *testing.T) {
	app := &App{Config: &config.Config{Client: config.ClientConfig{Store: "s3"}}}
	if _, _, err := app.openStore(context.Background()); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
