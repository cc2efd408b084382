// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. The full router is exercised over httptest with
// real stores; tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers_test

import (
	. "notedeck/internal/handlers"

	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"notedeck/internal/database"
	"notedeck/internal/middleware"
	"notedeck/internal/render"
	"notedeck/internal/router"
	"notedeck/internal/session"
	"notedeck/internal/storage"
	"notedeck/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "notedeck")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "notedeck")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Valkey client, skipping if unreachable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	client := redis.NewClient(&redis.Options{Addr: host + ":" + port})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// testApp stands up the full application over httptest. The returned
// client carries a cookie jar and does not follow redirects, so tests
// can assert on Location headers.
type testApp struct {
	srv    *httptest.Server
	client *http.Client
	db     *sql.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testDB(t)
	valkey := testValkeyClient(t)

	sessions := session.NewStore(valkey, false)
	blobs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	attachments := store.NewAttachments(blobs)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db, attachments)
	noteStore := store.NewNoteStore(db, attachments)

	r := router.New(sessions,
		NewAuth(renderer, sessions, userStore),
		NewNotes(renderer, noteStore, categoryStore),
		NewCategories(renderer, categoryStore, noteStore),
		NewUploads(noteStore, attachments),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{srv: srv, client: client, db: db}
}

// csrfToken fetches a page so the server issues the CSRF cookie, and
// returns its value from the jar.
func (a *testApp) csrfToken(t *testing.T, path string) string {
	t.Helper()

	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	u, _ := url.Parse(a.srv.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("CSRF cookie not issued")
	return ""
}

// postForm submits a urlencoded form with the CSRF token included.
func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()

	form.Set(middleware.CSRFFormField, a.csrfToken(t, "/"))
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// postNoteForm submits a multipart note form, optionally with an image.
func (a *testApp) postNoteForm(t *testing.T, path string, fields map[string]string, imageName string, imageData []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField(middleware.CSRFFormField, a.csrfToken(t, "/"))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(imageData)
	}
	w.Close()

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// register creates a fresh account through the HTTP flow and leaves the
// client logged in. Returns the username.
func (a *testApp) register(t *testing.T) string {
	t.Helper()

	username := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	resp := a.postForm(t, "/register", url.Values{
		"username":         {username},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("register: got status %d", resp.StatusCode)
	}

	t.Cleanup(func() {
		a.db.Exec(`DELETE FROM users WHERE username = $1`, username)
	})
	return username
}

// body reads and closes a response body.
func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
