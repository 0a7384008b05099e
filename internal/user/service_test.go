package user

import (
	"context"
	"errors"
	"testing"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/FleetDesk/FleetDesk/internal/common/config"
)

type fakeStore struct {
	byID map[string]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[string]*User)}
}

func (f *fakeStore) Create(ctx context.Context, u *User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return apperrors.Conflictf("email %s already registered", u.Email)
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFoundf("user %s not found", email)
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFoundf("user %s not found", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	var out []User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) UpdateRole(ctx context.Context, id, role string) error {
	u, ok := f.byID[id]
	if !ok {
		return apperrors.NotFoundf("user %s not found", id)
	}
	u.Role = role
	return nil
}

func (f *fakeStore) UpdatePreferences(ctx context.Context, id, prefs string) error {
	u, ok := f.byID[id]
	if !ok {
		return apperrors.NotFoundf("user %s not found", id)
	}
	u.AccessibilityPrefs = prefs
	return nil
}

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "unit-test-secret",
		Issuer:      "fleet-service",
		Audience:    "fleet-api",
		TokenTTLMin: 60,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())

	u, tok, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "  Ada@Example.COM ",
		Password: "a long password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Role != RoleEmployee {
		t.Fatalf("signups must be employees, got %q", u.Role)
	}
	if tok == nil || tok.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if u.PasswordHash == "a long password" {
		t.Fatal("password must be hashed")
	}

	_, tok2, err := svc.Login(context.Background(), "ada@example.com", "a long password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok2.AccessToken == "" {
		t.Fatal("expected login token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeStore(), testAuthCfg())

	in := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "a long password"}
	if _, _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, err := svc.Register(context.Background(), in)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

// Unknown accounts and wrong passwords must be indistinguishable.
func TestLoginDoesNotLeakAccounts(t *testing.T) {
	svc := NewService(newFakeStore(), testAuthCfg())

	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "a long password",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "whatever pass")
	_, _, errWrongPw := svc.Login(context.Background(), "ada@example.com", "wrong password")
	if !errors.Is(errUnknown, apperrors.ErrForbidden) || !errors.Is(errWrongPw, apperrors.ErrForbidden) {
		t.Fatalf("expected forbidden for both, got %v / %v", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("error messages differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
}

func TestSetRoleGuards(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())

	u, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "a long password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetRole(context.Background(), "admin-1", u.ID, "superuser"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation on unknown role, got %v", err)
	}
	if err := svc.SetRole(context.Background(), u.ID, u.ID, RoleEmployee); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict on self-demotion, got %v", err)
	}
	if err := svc.SetRole(context.Background(), "admin-1", u.ID, RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, _ := store.FindByID(context.Background(), u.ID)
	if got.Role != RoleAdmin {
		t.Fatalf("expected admin, got %q", got.Role)
	}
}

func TestSetPreferencesValidatesJSON(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())

	u, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "a long password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetPreferences(context.Background(), u.ID, "{not json"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SetPreferences(context.Background(), u.ID, `{"high_contrast":true}`); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	got, _ := store.FindByID(context.Background(), u.ID)
	if got.AccessibilityPrefs != `{"high_contrast":true}` {
		t.Fatalf("preferences not stored: %q", got.AccessibilityPrefs)
	}
}
