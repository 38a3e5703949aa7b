package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (*UserService, *fakeUserRepo, *fakeTokenStore, *fakeMailer) {
	users := newFakeUserRepo()
	tokenStore := newFakeTokenStore()
	mail := &fakeMailer{}
	svc := NewUserService(users, tokenStore, mail, "http://localhost:3000")
	return svc, users, tokenStore, mail
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		wantField string
	}{
		{"email without @", "alice", "not-an-email", "secret", "email"},
		{"username with @", "al@ce", "alice@example.com", "secret", "username"},
		{"short username", "al", "alice@example.com", "secret", "username"},
		{"short password", "alice", "alice@example.com", "ab", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ferrs, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.NoError(t, err)
			require.Nil(t, user)
			require.Len(t, ferrs, 1)
			assert.Equal(t, tt.wantField, ferrs[0].Field)
		})
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, users, _, _ := newTestUserService()

	user, ferrs, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.Nil(t, ferrs)
	require.NotZero(t, user.ID)

	stored := users.users[user.ID]
	require.NotEqual(t, "secret", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	_, ferrs, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.Nil(t, ferrs)

	_, ferrs, err = svc.Register(ctx, "alice", "other@example.com", "secret")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "username", ferrs[0].Field)
	assert.Equal(t, "username already taken", ferrs[0].Message)
}

func TestLogin_ResolvesByEmailOrUsername(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	// Identifier with "@" resolves by email.
	user, ferrs, err := svc.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	require.Nil(t, ferrs)
	assert.Equal(t, "alice", user.Username)

	// Identifier without "@" resolves by username.
	user, ferrs, err = svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.Nil(t, ferrs)
	assert.Equal(t, "alice", user.Username)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, ferrs, err := svc.Login(context.Background(), "nobody", "secret")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "usernameOrEmail", ferrs[0].Field)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, ferrs, err := svc.Login(ctx, "alice", "wrong")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "password", ferrs[0].Field)
	assert.Equal(t, "incorrect password", ferrs[0].Message)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, _, tokenStore, mail := newTestUserService()

	err := svc.ForgotPassword(context.Background(), "unknown@x.com")
	require.NoError(t, err, "unknown email must still report success")
	assert.Empty(t, tokenStore.m, "no token may be issued for unknown emails")
	assert.Empty(t, mail.sent, "no email may be dispatched for unknown emails")
}

func TestForgotPassword_SendsResetLink(t *testing.T) {
	svc, _, tokenStore, mail := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	require.Len(t, tokenStore.m, 1)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "alice@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Body, "http://localhost:3000/change-password/token-1")
}

func TestChangePassword_TooShort(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, ferrs, err := svc.ChangePassword(context.Background(), "whatever", "ab")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "newPassword", ferrs[0].Field)
}

func TestChangePassword_UnknownToken(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, ferrs, err := svc.ChangePassword(context.Background(), "never-issued", "newsecret")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "token", ferrs[0].Field)
	assert.Equal(t, "token expired", ferrs[0].Message)
}

func TestChangePassword_UserGone(t *testing.T) {
	svc, users, tokenStore, _ := newTestUserService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	token, err := tokenStore.Issue(ctx, user.ID)
	require.NoError(t, err)
	delete(users.users, user.ID)

	_, ferrs, err := svc.ChangePassword(ctx, token, "newsecret")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "user no longer exists", ferrs[0].Message)
}

func TestChangePassword_SucceedsExactlyOnce(t *testing.T) {
	svc, _, tokenStore, _ := newTestUserService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	token, err := tokenStore.Issue(ctx, user.ID)
	require.NoError(t, err)

	changed, ferrs, err := svc.ChangePassword(ctx, token, "newsecret")
	require.NoError(t, err)
	require.Nil(t, ferrs)
	require.Equal(t, user.ID, changed.ID)

	// Old credential is gone, new one works.
	_, ferrs, err = svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, ferrs)
	_, ferrs, err = svc.Login(ctx, "alice", "newsecret")
	require.NoError(t, err)
	require.Nil(t, ferrs)

	// Second redemption with the same token fails.
	_, ferrs, err = svc.ChangePassword(ctx, token, "another")
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, "token expired", ferrs[0].Message)
}

func TestResetLinkContainsIssuedToken(t *testing.T) {
	svc, _, tokenStore, mail := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	require.Len(t, mail.sent, 1)
	for token := range tokenStore.m {
		require.True(t, strings.Contains(mail.sent[0].Body, token))
	}
}
