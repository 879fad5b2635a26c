package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"reelcode/internal/common"
	"reelcode/internal/common/security"
	"reelcode/internal/domain/model"
	"reelcode/internal/platform/config"
)

func TestMain(m *testing.M) {
	config.Load()
	security.InitJWT()
	os.Exit(m.Run())
}

type fakeUserRepo struct {
	users map[string]*model.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	copy := *user
	f.users[user.ID] = &copy
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepo) AwardPoints(ctx context.Context, tx *sql.Tx, userID string, points, currentLevel int) error {
	u, ok := f.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.Points += points
	if currentLevel > u.CurrentLevel {
		u.CurrentLevel = currentLevel
	}
	return nil
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "trinity"})
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("incomplete signup: err = %v, want ErrValidation", err)
	}
}

func TestSignupThenLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Username: "trinity",
		Email:    "trinity@zion.io",
		Password: "followthewhiterabbit",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("signup returned empty token")
	}
	if resp.User.HashedPassword != "" {
		t.Error("signup leaked the password hash")
	}
	if resp.User.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", resp.User.Role, model.RoleUser)
	}

	// Login by email
	if _, err := svc.Login(context.Background(), LoginRequest{LoginField: "trinity@zion.io", Password: "followthewhiterabbit"}); err != nil {
		t.Errorf("login by email failed: %v", err)
	}
	// Login by username
	if _, err := svc.Login(context.Background(), LoginRequest{LoginField: "trinity", Password: "followthewhiterabbit"}); err != nil {
		t.Errorf("login by username failed: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{LoginField: "trinity", Password: "wrong"})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("wrong password: err = %v, want ErrUnauthorized", err)
	}
	_, err = svc.Login(context.Background(), LoginRequest{LoginField: "smith", Password: "whatever"})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("unknown user: err = %v, want ErrUnauthorized", err)
	}
}

func TestSignupDuplicateConflicts(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo())
	req := SignupRequest{Username: "neo", Email: "neo@zion.io", Password: "theone"}

	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := svc.Signup(context.Background(), req)
	if !errors.Is(err, common.ErrConflict) {
		t.Errorf("duplicate signup: err = %v, want ErrConflict", err)
	}
}
