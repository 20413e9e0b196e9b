package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: " Carlos ",
		LastName:  "Ruiz",
		Email:     " Carlos@Test.Local ",
		Password:  "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos", user.FirstName)
	assert.Equal(t, "carlos@test.local", user.Email)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		Email:     "carlos@test.local",
		Password:  "secret-pass",
	})
	assert.ErrorIs(t, err, ErrAuthEmailTaken)

	_, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Short",
		Email:     "short@test.local",
		Password:  "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Carlos",
		Email:     "carlos@test.local",
		Password:  "secret-pass",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), LoginInput{Email: "CARLOS@test.local", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "carlos@test.local", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Login(context.Background(), LoginInput{Email: "carlos@test.local", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@test.local", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
