package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRole(t *testing.T, f *fixture, name string, perms ...string) models.Role {
	t.Helper()
	role := models.Role{Name: name}
	require.NoError(t, f.db.Create(&role).Error)
	for _, p := range perms {
		require.NoError(t, f.db.Create(&models.RolePermission{RoleID: role.ID, Permission: p}).Error)
	}
	return role
}

func TestUserService_CreateAndLogin(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	seedRole(t, f, "Receptionist", "bookings.*", "customers.view")
	users := NewUserService(f.db)
	tokens := utils.NewTokenService("test-secret", time.Hour)
	auth := NewAuthService(f.db, tokens)

	// Act
	created, err := users.Create(ctx, f.actor, CreateUserInput{
		FullName: "Luis Ramos",
		Username: " luis@hotel.local ",
		Password: "s3cret-pass",
		Role:     "receptionist",
	})
	require.NoError(t, err)
	res, err := auth.Login(ctx, LoginInput{Username: "luis@hotel.local", Password: "s3cret-pass"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"Receptionist"}, created.Roles)
	assert.NotEqual(t, "s3cret-pass", created.Password)
	assert.Equal(t, created.ID, res.User.ID)
	assert.Equal(t, []string{"bookings.*", "customers.view"}, res.Permissions)

	claims, err := tokens.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, f.branch.ID, claims.BranchID)

	_, err = auth.Login(ctx, LoginInput{Username: "luis@hotel.local", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, LoginInput{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_CreateRejections(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.db)

	_, err := users.Create(context.Background(), f.actor, CreateUserInput{FullName: "X", Username: "x", Password: "short", Role: "owner"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = users.Create(context.Background(), f.actor, CreateUserInput{FullName: "X", Username: "x", Password: "long-enough", Role: "ghost"})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestAuthService_HasPermissionWildcards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.db, nil)
	clerk := seedRole(t, f, "Clerk", "bookings.*", "rooms.view")
	owner := seedRole(t, f, "owner", "*")

	other := models.User{Username: "boss", BranchID: f.branch.ID, IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	require.NoError(t, f.db.Create(&models.RoleMember{RoleID: clerk.ID, UserID: f.actor.ActorID}).Error)
	require.NoError(t, f.db.Create(&models.RoleMember{RoleID: owner.ID, UserID: other.ID}).Error)

	cases := []struct {
		user uint
		perm string
		want bool
	}{
		{f.actor.ActorID, "bookings.checkout", true},
		{f.actor.ActorID, "rooms.view", true},
		{f.actor.ActorID, "rooms.delete", false},
		{f.actor.ActorID, "roles.edit", false},
		{other.ID, "roles.edit", true},
	}
	for _, tc := range cases {
		got, err := auth.HasPermission(ctx, tc.user, tc.perm)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "user %d perm %s", tc.user, tc.perm)
	}
}

func TestAuthService_InactiveUserCannotLogin(t *testing.T) {
	f := newFixture(t)
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.actor.ActorID).
		Updates(map[string]interface{}{"password": hash, "is_active": false}).Error)
	auth := NewAuthService(f.db, utils.NewTokenService("s", time.Hour))

	_, err = auth.Login(context.Background(), LoginInput{Username: "desk@hotel.local", Password: "password123"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRoleService_UpdatePermissionsAndMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := seedRole(t, f, "Housekeeping", "rooms.view")
	roles := NewRoleService(f.db)

	perms, err := roles.UpdateRolePermissions(ctx, "Housekeeping", []string{"rooms.status", " rooms.view", "rooms.status", "inventory.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory.*", "rooms.status", "rooms.view"}, perms)

	views, err := roles.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	m := views[0].Permissions
	assert.True(t, m["rooms"]["status"])
	assert.False(t, m["rooms"]["delete"])
	assert.True(t, m["inventory"]["adjust"], "module wildcard checks every action")
	assert.False(t, m["bookings"]["view"])

	_, err = roles.UpdateRolePermissions(ctx, "Housekeeping", []string{"rooms"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = roles.UpdateRolePermissions(ctx, "99999", []string{"rooms.view"})
	assert.ErrorIs(t, err, ErrRoleNotFound)

	// numeric reference works too, and an empty list clears every grant
	cleared, err := roles.UpdateRolePermissions(ctx, "1", nil)
	require.NoError(t, err)
	assert.Empty(t, cleared)
	var n int64
	require.NoError(t, f.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUserService_AssignRoleAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedRole(t, f, "Receptionist", "bookings.view")
	seedRole(t, f, "Manager", "bookings.*")
	users := NewUserService(f.db)
	created, err := users.Create(ctx, f.actor, CreateUserInput{FullName: "Eva", Username: "eva", Password: "password1", Role: "Receptionist"})
	require.NoError(t, err)

	require.NoError(t, users.AssignRole(ctx, f.actor, created.ID, "Manager"))
	list, err := users.List(ctx, f.actor)
	require.NoError(t, err)
	var eva UserView
	for _, u := range list {
		if u.ID == created.ID {
			eva = u
		}
	}
	assert.Equal(t, []string{"Manager"}, eva.Roles)

	var verr *ValidationError
	assert.True(t, errors.As(users.Delete(ctx, f.actor, f.actor.ActorID), &verr), "operators cannot delete themselves")

	require.NoError(t, users.Delete(ctx, f.actor, created.ID))
	var stored models.User
	require.NoError(t, f.db.Unscoped().First(&stored, created.ID).Error)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.DeletedAt.Valid)
	assert.ErrorIs(t, users.Delete(ctx, f.actor, created.ID), ErrUserNotFound)
}
