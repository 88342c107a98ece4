package institution_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wizardgo/internal/institution"
	"wizardgo/internal/memory"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/errors"
)

func newService() (*institution.Service, *memory.Store) {
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return institution.NewService(store.Institutions(), logger, institution.WithBcryptCost(bcrypt.MinCost)), store
}

func register(t *testing.T, service *institution.Service, name string) *institution.Institution {
	t.Helper()
	inst, err := service.Register(context.Background(), institution.RegisterRequest{Name: name, Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", name, err)
	}
	return inst
}

func TestRegisterAndLogin(t *testing.T) {
	service, store := newService()
	ctx := context.Background()

	inst := register(t, service, "  Hogwarts ")
	if inst.Name != "Hogwarts" {
		t.Errorf("Name = %q, want trimmed", inst.Name)
	}

	creds, err := store.Institutions().GetCredentials(ctx, "Hogwarts")
	if err != nil {
		t.Fatalf("GetCredentials() error = %v", err)
	}
	if !strings.HasPrefix(creds.PasswordHash, "$2") {
		t.Errorf("stored hash %q is not bcrypt", creds.PasswordHash)
	}

	got, err := service.Login(ctx, institution.LoginRequest{Name: "Hogwarts", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != inst.ID {
		t.Errorf("Login() id = %s, want %s", got.ID, inst.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	register(t, service, "Hogwarts")

	tests := []struct {
		name string
		req  institution.RegisterRequest
		want errors.ErrorType
	}{
		{"empty name", institution.RegisterRequest{Name: " ", Password: "long enough"}, errors.ErrorTypeValidation},
		{"long name", institution.RegisterRequest{Name: strings.Repeat("a", 129), Password: "long enough"}, errors.ErrorTypeValidation},
		{"short password", institution.RegisterRequest{Name: "Durmstrang", Password: "short"}, errors.ErrorTypeValidation},
		{"duplicate", institution.RegisterRequest{Name: "Hogwarts", Password: "long enough"}, errors.ErrorTypeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Register(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	register(t, service, "Hogwarts")

	for _, req := range []institution.LoginRequest{
		{Name: "Hogwarts", Password: "wrong password"},
		{Name: "Beauxbatons", Password: "correct horse"},
	} {
		if _, err := service.Login(ctx, req); err != institution.ErrInvalidCredentials {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", req.Name, err)
		}
	}
}

func TestLoginUpgradesLegacyDigest(t *testing.T) {
	service, store := newService()
	ctx := context.Background()

	sum := sha256.Sum256([]byte("old secret"))
	inst, err := store.Institutions().Create(ctx, "Ilvermorny", hex.EncodeToString(sum[:]))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := service.Login(ctx, institution.LoginRequest{Name: "Ilvermorny", Password: "wrong"}); !errors.Is(err, errors.ErrorTypeUnauthorized) {
		t.Fatalf("wrong legacy password error = %v, want unauthorized", err)
	}

	got, err := service.Login(ctx, institution.LoginRequest{Name: "Ilvermorny", Password: "old secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != inst.ID {
		t.Errorf("Login() id = %s, want %s", got.ID, inst.ID)
	}

	creds, err := store.Institutions().GetCredentials(ctx, "Ilvermorny")
	if err != nil {
		t.Fatalf("GetCredentials() error = %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte("old secret")) != nil {
		t.Errorf("hash was not upgraded to bcrypt: %q", creds.PasswordHash)
	}

	if _, err := service.Login(ctx, institution.LoginRequest{Name: "Ilvermorny", Password: "old secret"}); err != nil {
		t.Errorf("Login() after upgrade error = %v", err)
	}
}

func TestListInstitutions(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	none, err := service.ListInstitutions(ctx)
	if err != nil {
		t.Fatalf("ListInstitutions() error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("ListInstitutions() on empty store = %#v, want empty non-nil slice", none)
	}

	for _, name := range []string{"Ilvermorny", "Beauxbatons", "Hogwarts"} {
		register(t, service, name)
	}

	got, err := service.ListInstitutions(ctx)
	if err != nil {
		t.Fatalf("ListInstitutions() error = %v", err)
	}
	var names []string
	for _, inst := range got {
		names = append(names, inst.Name)
	}
	if want := []string{"Beauxbatons", "Hogwarts", "Ilvermorny"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestMaps(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	hogwarts := register(t, service, "Hogwarts")
	durmstrang := register(t, service, "Durmstrang")

	for _, name := range []string{"Quidditch Pitch", "Great Hall"} {
		if _, err := service.CreateMap(ctx, hogwarts.ID, institution.CreateMapRequest{Name: name}); err != nil {
			t.Fatalf("CreateMap(%s) error = %v", name, err)
		}
	}
	if _, err := service.CreateMap(ctx, durmstrang.ID, institution.CreateMapRequest{Name: "Ship"}); err != nil {
		t.Fatalf("CreateMap() error = %v", err)
	}
	if _, err := service.CreateMap(ctx, hogwarts.ID, institution.CreateMapRequest{Name: ""}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("CreateMap() empty name error = %v, want validation", err)
	}

	mine, err := service.ListMaps(ctx, hogwarts.ID)
	if err != nil {
		t.Fatalf("ListMaps() error = %v", err)
	}
	if len(mine) != 2 || mine[0].Name != "Great Hall" || mine[1].Name != "Quidditch Pitch" {
		t.Errorf("ListMaps() = %+v", mine)
	}

	all, err := service.ListAllMaps(ctx)
	if err != nil {
		t.Fatalf("ListAllMaps() error = %v", err)
	}
	if len(all) != 3 || all[0].InstitutionName != "Durmstrang" {
		t.Errorf("ListAllMaps() = %+v, want Durmstrang's map first", all)
	}

	empty, err := service.ListMaps(ctx, uuid.New())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ListMaps() unknown institution = %#v, %v", empty, err)
	}
}

func TestGrantAndRevokeAccess(t *testing.T) {
	service, store := newService()
	ctx := context.Background()
	hogwarts := register(t, service, "Hogwarts")
	pitch, err := service.CreateMap(ctx, hogwarts.ID, institution.CreateMapRequest{Name: "Quidditch Pitch"})
	if err != nil {
		t.Fatalf("CreateMap() error = %v", err)
	}
	harry, err := store.Profiles().Create(ctx, profile.NewProfile{Name: "Harry"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	byID := institution.GrantRequest{ProfileID: &harry.ID}
	byName := institution.GrantRequest{ProfileName: "Harry"}

	steps := []struct {
		name string
		run  func() (institution.AccessStatus, error)
		want institution.AccessStatus
	}{
		{"grant", func() (institution.AccessStatus, error) { return service.GrantAccess(ctx, hogwarts.ID, pitch.ID, byID) }, institution.AccessGranted},
		{"grant again", func() (institution.AccessStatus, error) { return service.GrantAccess(ctx, hogwarts.ID, pitch.ID, byName) }, institution.AccessAlreadyGranted},
		{"revoke", func() (institution.AccessStatus, error) { return service.RevokeAccess(ctx, hogwarts.ID, pitch.ID, harry.ID) }, institution.AccessRevoked},
		{"revoke again", func() (institution.AccessStatus, error) { return service.RevokeAccess(ctx, hogwarts.ID, pitch.ID, harry.ID) }, institution.AccessRevoked},
		{"grant after revoke", func() (institution.AccessStatus, error) { return service.GrantAccess(ctx, hogwarts.ID, pitch.ID, byName) }, institution.AccessGranted},
	}
	for _, step := range steps {
		got, err := step.run()
		if err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		if got != step.want {
			t.Fatalf("%s: status = %q, want %q", step.name, got, step.want)
		}
	}

	students, err := service.ListMapStudents(ctx, hogwarts.ID, pitch.ID)
	if err != nil {
		t.Fatalf("ListMapStudents() error = %v", err)
	}
	if len(students) != 1 || students[0].ProfileID != harry.ID || students[0].Name != "Harry" {
		t.Errorf("ListMapStudents() = %+v", students)
	}
}

func TestAccessErrors(t *testing.T) {
	service, store := newService()
	ctx := context.Background()
	hogwarts := register(t, service, "Hogwarts")
	durmstrang := register(t, service, "Durmstrang")
	pitch, err := service.CreateMap(ctx, hogwarts.ID, institution.CreateMapRequest{Name: "Quidditch Pitch"})
	if err != nil {
		t.Fatalf("CreateMap() error = %v", err)
	}
	harry, err := store.Profiles().Create(ctx, profile.NewProfile{Name: "Harry"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	ghost := uuid.New()

	if _, err := service.GrantAccess(ctx, durmstrang.ID, pitch.ID, institution.GrantRequest{ProfileID: &harry.ID}); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("foreign grant error = %v, want not_found", err)
	}
	if _, err := service.RevokeAccess(ctx, durmstrang.ID, pitch.ID, harry.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("foreign revoke error = %v, want not_found", err)
	}
	if _, err := service.ListMapStudents(ctx, durmstrang.ID, pitch.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("foreign student list error = %v, want not_found", err)
	}
	if _, err := service.GrantAccess(ctx, hogwarts.ID, pitch.ID, institution.GrantRequest{ProfileID: &ghost}); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown profile id error = %v, want not_found", err)
	}
	if _, err := service.GrantAccess(ctx, hogwarts.ID, pitch.ID, institution.GrantRequest{ProfileName: "Voldemort"}); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown profile name error = %v, want not_found", err)
	}
	if _, err := service.GrantAccess(ctx, hogwarts.ID, pitch.ID, institution.GrantRequest{}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("empty grant error = %v, want validation", err)
	}
	if _, err := service.GrantAccess(ctx, hogwarts.ID, uuid.New(), institution.GrantRequest{ProfileID: &harry.ID}); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown map error = %v, want not_found", err)
	}
}
