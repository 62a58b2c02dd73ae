package services

import (
	"context"
	"testing"
	"time"

	"wikihub/internal/models"
	"wikihub/internal/repository/inmem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() (*AuthService, *inmem.UserRepo) {
	repo := inmem.NewStore().Users()
	return NewAuthService(repo, "test-secret", time.Hour), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	res, err := svc.Register(ctx, models.RegisterRequest{Email: " Jane@Example.com ", Password: "secret1", Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.Empty(t, res.User.PasswordHash)
	assert.NotEmpty(t, res.Token)

	actor, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, actor.UserID)
	assert.Equal(t, "Jane", actor.Name)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "jane@example.com", Password: "secret1", Name: "J"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Email: "bad", Password: "secret1", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.Register(ctx, models.RegisterRequest{Email: "a@b.co", Password: "123", Name: "x"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = svc.Register(ctx, models.RegisterRequest{Email: "a@b.co", Password: "secret1", Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()
	_, err := svc.Register(ctx, models.RegisterRequest{Email: "jane@example.com", Password: "secret1", Name: "Jane"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, models.LoginRequest{Email: "JANE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken_Expired(t *testing.T) {
	repo := inmem.NewStore().Users()
	svc := NewAuthService(repo, "s", -time.Minute)
	res, err := svc.Register(context.Background(), models.RegisterRequest{Email: "a@b.co", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(res.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = svc.VerifyToken("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCreateUserAdmin(t *testing.T) {
	svc, _ := newAuth()
	u, err := svc.CreateUser(context.Background(), "root@example.com", "secret1", "Root", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = svc.CreateUser(context.Background(), "x@example.com", "secret1", "X", "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService(t *testing.T) {
	auth, repo := newAuth()
	ctx := context.Background()
	admin, err := auth.CreateUser(ctx, "root@example.com", "secret1", "Root", models.RoleAdmin)
	require.NoError(t, err)
	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := auth.CreateUser(ctx, e, "secret1", "U", models.RoleUser)
		require.NoError(t, err)
	}

	svc := NewUserService(repo)
	actor := &Actor{UserID: admin.ID, Name: "Root", Role: models.RoleAdmin}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "c@example.com", users[0].Email, "новые первыми")

	st, err := svc.UserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{TotalUsers: 4, AdminCount: 1, UserCount: 3, AdminPercentage: 25}, *st)

	_, err = svc.UpdateUserRole(ctx, actor, admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrOwnRoleChange)
	_, err = svc.UpdateUserRole(ctx, actor, users[0].ID, "god")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.UpdateUserRole(ctx, actor, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.UpdateUserRole(ctx, alice, users[0].ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrAdminOnly)

	promoted, err := svc.UpdateUserRole(ctx, actor, users[0].ID, "Admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWorkspaceService(t *testing.T) {
	svc := NewWorkspaceService(inmem.NewStore().Workspaces())
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "Culture & Arts", list[0].Name)

	_, err = svc.Rename(ctx, alice, "nature", "Wildlife")
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = svc.Rename(ctx, root, "nature", " ")
	assert.ErrorIs(t, err, ErrWorkspaceNameRequired)
	w, err := svc.Rename(ctx, root, "nature", " Wildlife ")
	require.NoError(t, err)
	assert.Equal(t, "Wildlife", w.Name)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}
