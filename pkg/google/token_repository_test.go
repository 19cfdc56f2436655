package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/homedash/homedash/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/oauth2"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTokenRepository(t *testing.T) (context.Context, TokenRepository) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(ctx))
	})
	return ctx, NewTokenRepository(db)
}

func TestTokenRepository_AuthFlow(t *testing.T) {
	// given
	ctx, repo := setupTokenRepository(t)
	expiry := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.StartAuth(ctx, "nonce-1"))

	// when
	wrong, err := repo.StoreToken(ctx, "nonce-2", &oauth2.Token{AccessToken: "x"})
	require.NoError(t, err)
	stored, err := repo.StoreToken(ctx, "nonce-1", &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry})
	require.NoError(t, err)

	// then
	assert.False(t, wrong)
	assert.True(t, stored)
	token, err := repo.GetToken(ctx)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, expiry.Equal(token.Expiry))
}

func TestTokenRepository_NoToken(t *testing.T) {
	ctx, repo := setupTokenRepository(t)

	token, err := repo.GetToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)

	// a pending authorization is not a token yet
	require.NoError(t, repo.StartAuth(ctx, "nonce"))
	token, err = repo.GetToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestTokenRepository_RestartAndDelete(t *testing.T) {
	ctx, repo := setupTokenRepository(t)
	require.NoError(t, repo.StartAuth(ctx, "first"))
	_, err := repo.StoreToken(ctx, "first", &oauth2.Token{AccessToken: "old"})
	require.NoError(t, err)

	require.NoError(t, repo.SaveToken(ctx, &oauth2.Token{AccessToken: "refreshed", RefreshToken: "rt"}))
	token, err := repo.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", token.AccessToken)
	assert.True(t, token.Expiry.IsZero())

	// starting a new login forgets the previous account
	require.NoError(t, repo.StartAuth(ctx, "second"))
	token, err = repo.GetToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)

	require.NoError(t, repo.DeleteToken(ctx))
	stored, err := repo.StoreToken(ctx, "second", &oauth2.Token{AccessToken: "late"})
	require.NoError(t, err)
	assert.False(t, stored)
}
