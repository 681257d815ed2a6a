package api

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"nexidx/store"
)

func TestHandleHealthz(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := New(db)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}

func TestHandleFindVersions(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := store.CreateSchema(db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO group_names(id, name) VALUES (1, 'g')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO artifact_names(id, name) VALUES (1, 'a')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO packaging_names(id, name) VALUES (1, 'jar')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO versions(group_id, artifact_id, version, packaging_id, last_modified_seconds) VALUES (1, 1, '1.0', 1, 0)`); err != nil {
		t.Fatal(err)
	}

	s := New(db)
	req := httptest.NewRequest(http.MethodGet, "/versions/g/a", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("1.0")) {
		t.Fatalf("response body missing expected version: %s", rec.Body.String())
	}
}
