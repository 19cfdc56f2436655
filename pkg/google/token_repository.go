package google

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenRepository keeps the household's single Google authorization.
type TokenRepository interface {
	// StartAuth discards any previous authorization and remembers nonce for the callback.
	StartAuth(ctx context.Context, nonce string) error
	// StoreToken saves token if nonce matches the pending authorization.
	StoreToken(ctx context.Context, nonce string, token *oauth2.Token) (bool, error)
	// GetToken returns nil without error when no token is stored.
	GetToken(ctx context.Context) (*oauth2.Token, error)
	// SaveToken persists a refreshed token.
	SaveToken(ctx context.Context, token *oauth2.Token) error
	DeleteToken(ctx context.Context) error
}

type TokenRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) StartAuth(ctx context.Context, nonce string) error {
	query := `INSERT INTO google_auth (id, nonce) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET nonce = EXCLUDED.nonce,
			access_token = NULL, refresh_token = NULL, token_type = NULL, expiry = NULL`
	if _, err := r.db.Exec(ctx, query, nonce); err != nil {
		err := fmt.Errorf("could not store Google auth nonce: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *TokenRepositoryImpl) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) (bool, error) {
	query := `UPDATE google_auth SET access_token = $1, refresh_token = $2, token_type = $3, expiry = $4
		WHERE id = 1 AND nonce = $5`
	result, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.TokenType, expiryValue(token.Expiry), nonce)
	if err != nil {
		err := fmt.Errorf("could not store Google auth token: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *TokenRepositoryImpl) GetToken(ctx context.Context) (*oauth2.Token, error) {
	query := `SELECT access_token, refresh_token, COALESCE(token_type, ''), expiry
		FROM google_auth WHERE id = 1 AND access_token IS NOT NULL`

	var token oauth2.Token
	var expiry *time.Time
	err := r.db.QueryRow(ctx, query).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if expiry != nil {
		token.Expiry = *expiry
	}
	return &token, nil
}

func (r *TokenRepositoryImpl) SaveToken(ctx context.Context, token *oauth2.Token) error {
	query := `UPDATE google_auth SET access_token = $1, refresh_token = $2, token_type = $3, expiry = $4 WHERE id = 1`
	_, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.TokenType, expiryValue(token.Expiry))
	if err != nil {
		return fmt.Errorf("could not update Google auth token: %w", err)
	}
	return nil
}

func (r *TokenRepositoryImpl) DeleteToken(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM google_auth WHERE id = 1"); err != nil {
		return fmt.Errorf("could not delete Google auth token: %w", err)
	}
	return nil
}

func expiryValue(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// TokenRepositoryStub is an in-memory TokenRepository.
type TokenRepositoryStub struct {
	mu    sync.Mutex
	nonce string
	token *oauth2.Token
}

func NewTokenRepositoryStub() *TokenRepositoryStub {
	return &TokenRepositoryStub{}
}

func (s *TokenRepositoryStub) StartAuth(_ context.Context, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce = nonce
	s.token = nil
	return nil
}

func (s *TokenRepositoryStub) StoreToken(_ context.Context, nonce string, token *oauth2.Token) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonce == "" || s.nonce != nonce {
		return false, nil
	}
	t := *token
	s.token = &t
	return true, nil
}

func (s *TokenRepositoryStub) GetToken(context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil, nil
	}
	t := *s.token
	return &t, nil
}

func (s *TokenRepositoryStub) SaveToken(_ context.Context, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	s.token = &t
	return nil
}

func (s *TokenRepositoryStub) DeleteToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce = ""
	s.token = nil
	return nil
}
