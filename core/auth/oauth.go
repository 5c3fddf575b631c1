package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/user"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/random"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

const stateKey = "oauth_state"

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	conf     oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers the oidc endpoints of the configured providers.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Client == "" {
			continue
		}

		p, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", cfg.Name, err)
		}

		provs[cfg.Name] = Provider{
			conf: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}
	return provs, nil
}

func HandleOauthLogin(session *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", web.Param(r, "provider")))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		session.Put(ctx, stateKey, state)

		http.Redirect(w, r, prov.conf.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", web.Param(r, "provider")))
		}

		state := session.PopString(ctx, stateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		tok, err := prov.conf.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("exchanging oauth code: %w", err))
		}

		rawIDToken, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token carries no id_token"))
		}

		idToken, err := prov.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying id token: %w", err))
		}

		var profile struct {
			Email      string `json:"email"`
			GivenName  string `json:"given_name"`
			FamilyName string `json:"family_name"`
		}
		if err := idToken.Claims(&profile); err != nil {
			return fmt.Errorf("decoding id token claims: %w", err)
		}

		usr, err := user.FetchByEmail(ctx, db, profile.Email)
		if err != nil {
			if !errors.Is(err, database.ErrDBNotFound) {
				return fmt.Errorf("fetching user by email: %w", err)
			}

			now := time.Now().UTC()
			usr = user.User{
				ID:        validate.GenerateID(),
				Email:     profile.Email,
				FirstName: profile.GivenName,
				LastName:  profile.FamilyName,
				Role:      claims.RoleUser,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := user.Create(ctx, db, usr); err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
		}

		if err := login(ctx, session, usr.ID, usr.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", usr.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
		return nil
	}
}
