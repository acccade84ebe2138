package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

func TestRegisterHashesPasswordAndRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "Secret1!", u.PasswordHash)
	assert.True(t, env.users.Hasher.Verify("Secret1!", u.PasswordHash))
	assert.False(t, u.CreatedAt.IsZero())

	_, err = env.users.Register(ctx, RegisterInput{Username: "ann2", Email: "a@b.com", Password: "Other1!"})
	assert.True(t, apperror.IsConflict(err))

	all, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com"})
	assert.ErrorIs(t, err, helpers.ErrEmptyPassword)
	assert.True(t, apperror.IsValidation(err))

	_, err = env.users.Register(ctx, RegisterInput{Username: "ann", Email: " ", Password: "x"})
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateUserRehashesOnlyWhenPasswordGiven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, err := env.users.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	oldHash := u.PasswordHash

	got, err := env.users.Update(ctx, u.ID, UpdateUserInput{Username: "ann", Email: "a@b.com", FullName: "Ann Lee"})
	require.NoError(t, err)
	assert.Equal(t, oldHash, got.PasswordHash)
	assert.Equal(t, "Ann Lee", got.FullName)
	assert.False(t, got.UpdatedAt.Before(u.UpdatedAt))

	got, err = env.users.Update(ctx, u.ID, UpdateUserInput{Username: "ann", Email: "a@b.com", Password: "NewSecret2!"})
	require.NoError(t, err)
	assert.True(t, env.users.Hasher.Verify("NewSecret2!", got.PasswordHash))
	assert.False(t, env.users.Hasher.Verify("Secret1!", got.PasswordHash))

	_, err = env.users.Update(ctx, "0123456789abcdef01234567", UpdateUserInput{Email: "x@y.com"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateUserEmailTakenIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Register(ctx, RegisterInput{Username: "a", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	b, err := env.users.Register(ctx, RegisterInput{Username: "b", Email: "b@b.com", Password: "Secret1!"})
	require.NoError(t, err)

	_, err = env.users.Update(ctx, b.ID, UpdateUserInput{Username: "b", Email: "a@b.com"})
	assert.True(t, apperror.IsConflict(err))
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, err := env.users.Register(ctx, RegisterInput{Username: "a", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, u.ID))
	_, err = env.users.GetByID(ctx, u.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(env.users.Delete(ctx, u.ID)))
}
