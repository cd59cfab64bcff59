package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"medshop/internal/apperror"
	"medshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SetupOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.users.Setup(ctx, SetupRequest{Username: "admin", Email: "admin@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	_, err = env.users.Setup(ctx, SetupRequest{Username: "again", Email: "again@shop.test", Password: "secret1"})
	assertCode(t, err, apperror.CodeForbidden)
}

func TestUserService_ConcurrentSetupCreatesOneAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.users.Setup(ctx, SetupRequest{
				Username: fmt.Sprintf("admin%d", i),
				Email:    fmt.Sprintf("admin%d@shop.test", i),
				Password: "secret1",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertCode(t, err, apperror.CodeForbidden)
	}
	assert.Equal(t, 1, succeeded)

	var admins int64
	require.NoError(t, env.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Setup(ctx, SetupRequest{Username: "admin", Email: "admin@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.users.Login(ctx, LoginRequest{Username: "admin", Password: "wrong-password"})
	assertCode(t, err, apperror.CodeUnauthorized)
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))

	_, err = env.users.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"})
	assertCode(t, err, apperror.CodeUnauthorized)

	res, err := env.users.Login(ctx, LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin", res.User.Username)

	byEmail, err := env.users.Login(ctx, LoginRequest{Username: "admin@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, "", RegisterRequest{Username: "clerk", Email: "clerk@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, user.Role)

	_, err = env.users.Register(ctx, "", RegisterRequest{Username: "boss", Email: "boss@shop.test", Password: "secret1", Role: model.RoleAdmin})
	assertCode(t, err, apperror.CodeForbidden)

	_, err = env.users.Register(ctx, model.RoleStaff, RegisterRequest{Username: "boss", Email: "boss@shop.test", Password: "secret1", Role: model.RoleAdmin})
	assertCode(t, err, apperror.CodeForbidden)

	admin, err := env.users.Register(ctx, model.RoleAdmin, RegisterRequest{Username: "boss", Email: "boss@shop.test", Password: "secret1", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	_, err = env.users.Register(ctx, "", RegisterRequest{Username: "clerk", Email: "other@shop.test", Password: "secret1"})
	assertCode(t, err, apperror.CodeDuplicate)

	_, err = env.users.Register(ctx, "", RegisterRequest{Username: "short", Email: "short@shop.test", Password: "123"})
	assertCode(t, err, apperror.CodeValidation)
}

func TestUserService_MeAndChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res, err := env.users.Setup(ctx, SetupRequest{Username: "admin", Email: "admin@shop.test", Password: "secret1"})
	require.NoError(t, err)

	me, err := env.users.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", me.Email)

	_, err = env.users.Me(ctx, 999)
	assertCode(t, err, apperror.CodeNotFound)

	err = env.users.ChangePassword(ctx, res.User.ID, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	assertCode(t, err, apperror.CodeUnauthorized)

	err = env.users.ChangePassword(ctx, res.User.ID, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "abc"})
	assertCode(t, err, apperror.CodeValidation)

	require.NoError(t, env.users.ChangePassword(ctx, res.User.ID, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))

	_, err = env.users.Login(ctx, LoginRequest{Username: "admin", Password: "secret1"})
	assertCode(t, err, apperror.CodeUnauthorized)
	_, err = env.users.Login(ctx, LoginRequest{Username: "admin", Password: "secret2"})
	require.NoError(t, err)
}
