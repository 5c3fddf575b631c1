package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/dibadokht/kelaasor-final/api"
	"github.com/dibadokht/kelaasor-final/api/background"
	"github.com/dibadokht/kelaasor-final/config"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/user"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/events"
	"github.com/dibadokht/kelaasor-final/rate"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TestEnv runs the whole API against a disposable postgres container.
type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string

	AdminEmail string
	AdminPass  string
	UserEmail  string
	UserPass   string

	client *http.Client
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=" + name,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("running postgres container: %w", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })
	_ = res.Expire(600)

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       res.GetHostPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	session := scs.New()
	session.Lifetime = time.Hour

	mux := api.APIMux(api.APIConfig{
		Log:          logger,
		DB:           db,
		Session:      session,
		Background:   background.New(logger),
		Publisher:    events.NopPublisher{},
		LoginLimiter: rate.NewLimiter(1000, 100, 1000),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}

	env := &TestEnv{
		DB:         db,
		Server:     srv,
		URL:        srv.URL,
		AdminEmail: "admin@test.com",
		AdminPass:  "adminpass123",
		UserEmail:  "user@test.com",
		UserPass:   "userpass123",
		client:     &http.Client{Jar: jar},
	}

	if err := env.SeedUser(env.AdminEmail, env.AdminPass, claims.RoleAdmin, "Admin", "Tester"); err != nil {
		return nil, err
	}
	if err := env.SeedUser(env.UserEmail, env.UserPass, claims.RoleUser, "Uma", "Tester"); err != nil {
		return nil, err
	}

	return env, nil
}

func (e *TestEnv) Client() *http.Client { return e.client }

// SeedUser inserts a user directly into the store.
func (e *TestEnv) SeedUser(email, pass, role, firstName, lastName string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(context.Background(), e.DB, usr); err != nil {
		return fmt.Errorf("seeding user[%s]: %w", email, err)
	}
	return nil
}

func (e *TestEnv) Login(t *testing.T, email, pass string) {
	t.Helper()

	body := map[string]string{"email": email, "password": pass}
	w := e.Request(t, http.MethodPost, "/auth/login", body)
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("login of %s failed: status code %s", email, w.Status)
	}
}

func (e *TestEnv) Logout(t *testing.T) {
	t.Helper()

	w := e.Request(t, http.MethodPost, "/auth/logout", nil)
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("logout failed: status code %s", w.Status)
	}
}

// Request performs an API call with an optional json body.
func (e *TestEnv) Request(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := e.client.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// Decode reads a json response body into out and closes it.
func Decode(t *testing.T, w *http.Response, out interface{}) {
	t.Helper()
	defer w.Body.Close()

	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
