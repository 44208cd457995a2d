package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/testhelpers"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewUserService(db)

	var userID string

	t.Run("register", func(t *testing.T) {
		user, err := service.CreateUser(ctx, &models.UserRegistration{
			Name: "Achieng", Email: "Achieng@Example.com", Password: "supersecret",
		})
		require.NoError(t, err)
		assert.Equal(t, "achieng@example.com", user.Email)
		assert.Equal(t, models.UserRoleCustomer, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "supersecret", user.PasswordHash)
		userID = user.ID
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := service.CreateUser(ctx, &models.UserRegistration{
			Name: "Other", Email: "ACHIENG@example.com", Password: "supersecret",
		})
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("registration validation", func(t *testing.T) {
		_, err := service.CreateUser(ctx, &models.UserRegistration{Name: "A", Email: "a@b.io", Password: "short"})
		assert.Equal(t, "Password must be at least 8 characters long", MessageOf(err))

		_, err = service.CreateUser(ctx, &models.UserRegistration{Name: "A", Email: "not-an-email", Password: "longenough"})
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("authenticate", func(t *testing.T) {
		user, err := service.AuthenticateUser(ctx, &models.UserLogin{Email: " achieng@example.com ", Password: "supersecret"})
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)

		_, err = service.AuthenticateUser(ctx, &models.UserLogin{Email: "achieng@example.com", Password: "wrong-password"})
		assert.Equal(t, KindUnauthorized, KindOf(err))

		_, err = service.AuthenticateUser(ctx, &models.UserLogin{Email: "nobody@example.com", Password: "supersecret"})
		assert.Equal(t, "Invalid email or password", MessageOf(err))
	})

	t.Run("inactive account cannot sign in", func(t *testing.T) {
		inactive := false
		_, err := service.AdminUpdateUser(ctx, userID, &models.UserAdminUpdate{IsActive: &inactive})
		require.NoError(t, err)

		_, err = service.AuthenticateUser(ctx, &models.UserLogin{Email: "achieng@example.com", Password: "supersecret"})
		assert.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("admin update", func(t *testing.T) {
		role := "seller"
		user, err := service.AdminUpdateUser(ctx, userID, &models.UserAdminUpdate{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, models.UserRoleSeller, user.Role)

		bad := "superuser"
		_, err = service.AdminUpdateUser(ctx, userID, &models.UserAdminUpdate{Role: &bad})
		assert.Equal(t, KindBadRequest, KindOf(err))

		other := testhelpers.CreateUser(t, db, testhelpers.UserFixture{Email: "taken@example.com"})
		email := "TAKEN@example.com"
		_, err = service.AdminUpdateUser(ctx, userID, &models.UserAdminUpdate{Email: &email})
		assert.Equal(t, KindConflict, KindOf(err))

		_, err = service.AdminUpdateUser(ctx, other, &models.UserAdminUpdate{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("seed admin only once", func(t *testing.T) {
		created, err := service.SeedAdmin(ctx, "Admin", "admin@example.com", "adminpass123")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = service.SeedAdmin(ctx, "Admin", "admin@example.com", "adminpass123")
		require.NoError(t, err)
		assert.False(t, created)

		admin, err := service.AuthenticateUser(ctx, &models.UserLogin{Email: "admin@example.com", Password: "adminpass123"})
		require.NoError(t, err)
		assert.Equal(t, models.UserRoleAdmin, admin.Role)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, service.DeleteUser(ctx, userID))
		assert.Equal(t, KindNotFound, KindOf(service.DeleteUser(ctx, userID)))

		_, err := service.GetUserByID(ctx, userID)
		assert.Equal(t, MsgUserNotFound, MessageOf(err))
	})
}
