package gcal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = errors.New("studio Google account is not connected")

type authRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

// Auth manages the OAuth connection of the single studio Google account. The
// token lives in one database row; there is exactly one instructor, so there
// is exactly one connected calendar.
type Auth struct {
	db          *sql.DB
	oauthConfig *oauth2.Config
}

func NewAuth(db *sql.DB, cfg config.Application) *Auth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarEventsScope},
	}
	return &Auth{db: db, oauthConfig: oauthConfig}
}

// OAuthLogin starts the consent flow (admin only).
func (g *Auth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !auth.IsAdmin(r.Context()) {
		http.Error(w, "admin only", http.StatusForbidden)
		return
	}

	_, err := g.db.Exec("DELETE FROM google_calendar_auth")
	if err != nil {
		log.Errorf("failed to delete old Google auth row: %v", err)
		http.Error(w, "failed to handle Google authentication", http.StatusInternalServerError)
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	_, err = g.db.Exec("INSERT INTO google_calendar_auth (nonce) VALUES ($1)", stateNonce)
	if err != nil {
		log.Errorf("failed to store Google auth nonce: %v", err)
		http.Error(w, "failed to handle Google authentication", http.StatusInternalServerError)
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(authRedirect{RedirectUrl: u}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (g *Auth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 {
		http.Error(w, "malformed state", http.StatusBadRequest)
		return
	}
	finalUrl := parts[0]
	nonce := parts[1]

	token, err := g.oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	_, err = g.db.Exec("UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4",
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		log.Errorf("unable to store Google auth token for nonce: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// OAuthLogout disconnects the studio account (admin only).
func (g *Auth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		http.Error(w, "admin only", http.StatusForbidden)
		return
	}
	if _, err := g.db.Exec("DELETE FROM google_calendar_auth"); err != nil {
		log.Errorf("failed to delete Google auth row: %v", err)
		http.Error(w, "failed to handle Google authentication", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *Auth) getToken(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var accessToken sql.NullString
	var refreshToken sql.NullString
	var expiryTimestamp sql.NullInt64
	err := g.db.QueryRowContext(ctx, "SELECT access_token, refresh_token, expiry FROM google_calendar_auth").
		Scan(&accessToken, &refreshToken, &expiryTimestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if !accessToken.Valid || accessToken.String == "" {
		// Row exists but the consent flow never finished.
		return nil, nil
	}

	token.AccessToken = accessToken.String
	token.RefreshToken = refreshToken.String
	token.Expiry = time.Unix(expiryTimestamp.Int64, 0)
	return &token, nil
}

func (g *Auth) getClient(ctx context.Context) (*http.Client, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
