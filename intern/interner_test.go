package intern

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInternAssignsStableID(t *testing.T) {
	db := openTestDB(t)
	in, err := New(db, "group", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	id1, err := in.Intern("com.example")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := in.Intern("com.example")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("repeated intern produced different ids: %d vs %d", id1, id2)
	}

	other, err := in.Intern("org.example")
	if err != nil {
		t.Fatal(err)
	}
	if other == id1 {
		t.Fatalf("distinct values produced the same id: %d", other)
	}
}

func TestInternRoundTripsThroughTable(t *testing.T) {
	db := openTestDB(t)
	in, err := New(db, "artifact", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	id, err := in.Intern("widget")
	if err != nil {
		t.Fatal(err)
	}

	var name string
	if err := db.QueryRow(`SELECT name FROM artifact_names WHERE id = ?`, id).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "widget" {
		t.Fatalf("got %q, want %q", name, "widget")
	}
}

func TestInternRejectsEmptyAndNull(t *testing.T) {
	db := openTestDB(t)
	in, err := New(db, "name", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	for _, bad := range []string{"", "   ", "null"} {
		if _, err := in.Intern(bad); err == nil {
			t.Fatalf("Intern(%q) should have failed", bad)
		}
	}
}

func TestInternOptional(t *testing.T) {
	db := openTestDB(t)
	in, err := New(db, "desc", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	if id, err := in.InternOptional(nil); err != nil || id != nil {
		t.Fatalf("InternOptional(nil) = %v, %v", id, err)
	}

	v := "hello"
	id, err := in.InternOptional(&v)
	if err != nil {
		t.Fatal(err)
	}
	if id == nil {
		t.Fatal("expected non-nil id")
	}
}

func TestPreloadThenInternReturnsSameID(t *testing.T) {
	db := openTestDB(t)
	in, err := New(db, "packaging", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	if err := in.Preload([]string{"jar", "pom", "war"}); err != nil {
		t.Fatal(err)
	}

	id, err := in.Intern("jar")
	if err != nil {
		t.Fatal(err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM packaging_names WHERE name='jar'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("got %d rows for 'jar', want 1", count)
	}

	var preloadedID int64
	if err := db.QueryRow(`SELECT id FROM packaging_names WHERE name='jar'`).Scan(&preloadedID); err != nil {
		t.Fatal(err)
	}
	if id != preloadedID {
		t.Fatalf("Intern after Preload = %d, want preloaded id %d", id, preloadedID)
	}
}

func TestTopNForEmbeddedDefaults(t *testing.T) {
	names, err := TopNFor("group", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("expected a non-empty embedded top-N list for group")
	}
}

func TestTopNForUnknownColumnIsEmpty(t *testing.T) {
	names, err := TopNFor("desc", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no default top-N list for desc, got %v", names)
	}
}
