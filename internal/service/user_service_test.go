package service

import (
	"context"
	"strings"
	"testing"

	"github.com/haierkeys/fast-note-service/internal/dao"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.account.Register(ctx, &dto.UserRegisterRequest{
		Email:       " Alice@Example.com ",
		Password:    "correct-horse",
		DisplayName: " Alice ",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.True(t, u.IsActive)

	id, err := env.tokens.Verify(u.Token)
	require.NoError(t, err)
	uid, _ := id.UID()
	assert.Equal(t, u.UID, uid)

	_, err = env.account.Register(ctx, &dto.UserRegisterRequest{Email: "alice@example.com", Password: "another-pass", DisplayName: "Al"})
	assertCode(t, code.ErrorUserEmailAlreadyExists, err)
	assert.Equal(t, code.KindConflict, code.KindOf(err))

	logged, err := env.account.Login(ctx, &dto.UserLoginRequest{Email: "ALICE@example.com", Password: "correct-horse"}, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, logged.Token)

	info, err := env.account.GetInfo(ctx, app.Authenticated(logged.UID))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Empty(t, info.Token)
}

func TestUserService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.UserRegisterRequest
		want *code.Code
	}{
		{"bad email", dto.UserRegisterRequest{Email: "nope", Password: "12345678", DisplayName: "Bob"}, code.ErrorUserEmailNotValid},
		{"short password", dto.UserRegisterRequest{Email: "b@example.com", Password: "1234567", DisplayName: "Bob"}, code.ErrorUserPasswordNotValid},
		{"short name", dto.UserRegisterRequest{Email: "b@example.com", Password: "12345678", DisplayName: " B "}, code.ErrorUserDisplayNameNotValid},
		{"long name", dto.UserRegisterRequest{Email: "b@example.com", Password: "12345678", DisplayName: strings.Repeat("b", 101)}, code.ErrorUserDisplayNameNotValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.account.Register(ctx, &tc.req)
			assertCode(t, tc.want, err)
			assert.Equal(t, code.KindValidation, code.KindOf(err))
		})
	}
}

func TestUserService_RegisterDisabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(dao.NewUserRepository(env.dao), env.tokens, nil, &ServiceConfig{})
	_, err := svc.Register(context.Background(), &dto.UserRegisterRequest{Email: "c@example.com", Password: "12345678", DisplayName: "Cat"})
	assertCode(t, code.ErrorUserRegisterIsDisable, err)
}

func TestUserService_LoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.account.Register(ctx, &dto.UserRegisterRequest{Email: "d@example.com", Password: "12345678", DisplayName: "Dan"})
	require.NoError(t, err)

	_, unknown := env.account.Login(ctx, &dto.UserLoginRequest{Email: "nobody@example.com", Password: "12345678"}, "")
	_, wrong := env.account.Login(ctx, &dto.UserLoginRequest{Email: "d@example.com", Password: "wrong-password"}, "")

	require.NoError(t, env.account.Deactivate(ctx, app.Authenticated(u.UID)))
	_, inactive := env.account.Login(ctx, &dto.UserLoginRequest{Email: "d@example.com", Password: "12345678"}, "")

	for _, err := range []error{unknown, wrong, inactive} {
		assertCode(t, code.ErrorUserLoginFailed, err)
		assert.Equal(t, code.KindAuthentication, code.KindOf(err))
		assert.Equal(t, unknown.Error(), err.Error())
	}

	// 停用后旧 Token 立即失效
	_, err = env.account.GetInfo(ctx, app.Authenticated(u.UID))
	assertCode(t, code.ErrorUserAuthFailed, err)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.account.Register(ctx, &dto.UserRegisterRequest{Email: "e@example.com", Password: "old-password", DisplayName: "Eve"})
	require.NoError(t, err)
	id := app.Authenticated(u.UID)

	err = env.account.ChangePassword(ctx, id, &dto.UserChangePasswordRequest{OldPassword: "wrong", Password: "new-password"})
	assertCode(t, code.ErrorUserOldPasswordFailed, err)

	err = env.account.ChangePassword(ctx, id, &dto.UserChangePasswordRequest{OldPassword: "old-password", Password: "short"})
	assertCode(t, code.ErrorUserPasswordNotValid, err)

	require.NoError(t, env.account.ChangePassword(ctx, id, &dto.UserChangePasswordRequest{OldPassword: "old-password", Password: "new-password"}))

	_, err = env.account.Login(ctx, &dto.UserLoginRequest{Email: "e@example.com", Password: "old-password"}, "")
	assertCode(t, code.ErrorUserLoginFailed, err)
	_, err = env.account.Login(ctx, &dto.UserLoginRequest{Email: "e@example.com", Password: "new-password"}, "")
	assert.NoError(t, err)
}
