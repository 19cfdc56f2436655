package google

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/homedash/homedash/internal/config"
	"github.com/homedash/homedash/internal/rest"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const callbackPath = "/api/integrations/google/auth/callback"

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type authStatus struct {
	Configured bool `json:"configured"`
	Connected  bool `json:"connected"`
}

type GoogleAuth struct {
	repo        TokenRepository
	oauthConfig *oauth2.Config
	host        string
}

func NewGoogleAuth(repo TokenRepository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + callbackPath,
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{repo: repo, oauthConfig: oauthConfig, host: cfg.Host}
}

// Configured reports whether OAuth client credentials are present.
func (g *GoogleAuth) Configured() bool {
	return g.oauthConfig.ClientID != "" && g.oauthConfig.ClientSecret != ""
}

func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !g.Configured() {
		rest.WriteError(w, http.StatusConflict, "Google client credentials are not configured", "")
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := g.safeFinalUrl(r.URL.Query().Get("finalUrl"))

	if err := g.repo.StartAuth(r.Context(), stateNonce); err != nil {
		log.Errorf("failed to start Google authentication: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid authentication state", "")
		return
	}
	finalUrl, nonce := g.safeFinalUrl(parts[0]), parts[1]

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	stored, err := g.repo.StoreToken(r.Context(), nonce, token)
	if err != nil || !stored {
		log.Errorf("unable to store Google auth token for nonce %s (stored=%t): %v", nonce, stored, err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// safeFinalUrl keeps the post-login redirect on this dashboard: a local path or an
// absolute URL on the configured host. Anything else becomes "/".
func (g *GoogleAuth) safeFinalUrl(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || strings.Contains(raw, "\\") {
		return "/"
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	host, err := url.Parse(g.host)
	if err == nil && host.Host != "" && u.Scheme == host.Scheme && u.Host == host.Host {
		return raw
	}
	log.Warnf("Ignoring Google auth redirect outside %s: %q", g.host, raw)
	return "/"
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	if err := g.repo.DeleteToken(r.Context()); err != nil {
		log.Errorf("failed to delete Google auth token: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GoogleAuth) Status(w http.ResponseWriter, r *http.Request) {
	status := authStatus{Configured: g.Configured()}
	if status.Configured {
		token, err := g.repo.GetToken(r.Context())
		if err != nil {
			log.Errorf("failed to read Google auth token: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to read Google authentication", "")
			return
		}
		status.Connected = token != nil
	}
	rest.WriteJSON(w, http.StatusOK, status)
}

// getClient returns nil without error when the household has not authorized yet.
func (g *GoogleAuth) getClient(ctx context.Context) (*http.Client, error) {
	if !g.Configured() {
		return nil, nil
	}
	token, err := g.repo.GetToken(ctx)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	src := &persistingTokenSource{
		base:   g.oauthConfig.TokenSource(context.Background(), token),
		repo:   g.repo,
		latest: token.AccessToken,
	}
	return oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(token, src)), nil
}

// persistingTokenSource saves refreshed tokens so a restart does not force a
// new authorization.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	repo   TokenRepository
	mu     sync.Mutex
	latest string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.latest {
		s.latest = token.AccessToken
		if err := s.repo.SaveToken(context.Background(), token); err != nil {
			log.Warnf("refreshed Google token could not be saved: %v", err)
		}
	}
	return token, nil
}
