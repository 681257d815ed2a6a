package ingest

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"nexidx/nexus"
)

func TestWriteDocMapsAttachmentsAndTime(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewVersionsWriter(tx, "")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	checksum, _ := nexus.ParseChecksum("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	name := "Guava"
	doc := &nexus.Doc{
		ID: nexus.UniqID{Group: "com.google.guava", Artifact: "guava", Version: "31.0.1-jre"},
		ObjectInfo: nexus.FullInfo{
			Packaging:         "jar",
			LastModified:      1_700_000_123_000,
			SourceAttached:    nexus.Present,
			JavadocAttached:   nexus.Absent,
			SignatureAttached: nexus.Unavailable,
			Extension:         "jar",
		},
		Modified: 1_700_000_123_000,
		Name:     &name,
		Checksum: &checksum,
	}

	if err := w.WriteDoc(doc); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	var lastModified int64
	var sourceAttached sql.NullBool
	var javadocAttached sql.NullBool
	var signatureAttached sql.NullBool
	var checksumHex sql.NullString
	row := db.QueryRow(`SELECT last_modified_seconds, source_attached, javadoc_attached, signature_attached, checksum_hex FROM versions LIMIT 1`)
	if err := row.Scan(&lastModified, &sourceAttached, &javadocAttached, &signatureAttached, &checksumHex); err != nil {
		t.Fatal(err)
	}

	if want := int64(1_700_000_123); lastModified != want {
		t.Fatalf("last_modified_seconds = %d, want %d", lastModified, want)
	}
	if !sourceAttached.Valid || !sourceAttached.Bool {
		t.Fatalf("source_attached = %+v, want true", sourceAttached)
	}
	if !javadocAttached.Valid || javadocAttached.Bool {
		t.Fatalf("javadoc_attached = %+v, want false", javadocAttached)
	}
	if signatureAttached.Valid {
		t.Fatalf("signature_attached = %+v, want NULL (Unavailable)", signatureAttached)
	}
	if !checksumHex.Valid || checksumHex.String != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Fatalf("checksum_hex = %+v", checksumHex)
	}
}

func TestWriteDocSharesPackagingAndExtensionTable(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewVersionsWriter(tx, "")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ext := "jar"
	doc := &nexus.Doc{
		ID: nexus.UniqID{Group: "g", Artifact: "a", Version: "1.0", Extension: &ext},
		ObjectInfo: nexus.FullInfo{
			Packaging: "jar",
			Extension: "jar",
		},
	}
	if err := w.WriteDoc(doc); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	var packagingID, extensionID int64
	row := db.QueryRow(`SELECT packaging_id, extension_id FROM versions LIMIT 1`)
	if err := row.Scan(&packagingID, &extensionID); err != nil {
		t.Fatal(err)
	}
	if packagingID != extensionID {
		t.Fatalf("packaging_id=%d extension_id=%d, want equal (shared names table)", packagingID, extensionID)
	}
}
