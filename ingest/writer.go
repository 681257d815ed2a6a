// Package ingest assembles decoded Docs into the relational schema and
// drives the producer/consumer pipeline that connects a NexusDecoder to a
// VersionsWriter.
//
// The row-assembly and bounded-channel producer/consumer shape are
// expressed as a Go goroutine pair over a buffered channel.
package ingest

import (
	"database/sql"
	"fmt"

	"nexidx/intern"
	"nexidx/logger"
	"nexidx/nexus"
	"nexidx/store"
)

// VersionsWriter resolves a Doc's strings through six interners and
// inserts the corresponding row into versions. It owns a
// single prepared insert statement, reused for every row in the run.
type VersionsWriter struct {
	tx *sql.Tx

	group      *intern.Interner
	artifact   *intern.Interner
	name       *intern.Interner
	desc       *intern.Interner
	packaging  *intern.Interner // shared by packaging and extension
	classifier *intern.Interner

	insertStmt *sql.Stmt
}

// NewVersionsWriter creates the six interners (idempotently creating
// their backing tables), preloads each one's top-N list, and prepares the
// row insert statement, all against tx so they participate in the single
// ingestion transaction. topListDir is forwarded to
// intern.TopNFor; an empty string uses the embedded defaults.
func NewVersionsWriter(tx *sql.Tx, topListDir string) (*VersionsWriter, error) {
	if err := store.CreateSchema(tx); err != nil {
		return nil, err
	}

	open := func(column string, initialCap int) (*intern.Interner, error) {
		in, err := intern.New(tx, column, initialCap)
		if err != nil {
			return nil, err
		}
		names, err := intern.TopNFor(column, topListDir)
		if err != nil {
			return nil, err
		}
		if err := in.Preload(names); err != nil {
			return nil, err
		}
		return in, nil
	}

	group, err := open("group", 40_000)
	if err != nil {
		return nil, err
	}
	artifact, err := open("artifact", 200_000)
	if err != nil {
		return nil, err
	}
	name, err := open("name", 40_000)
	if err != nil {
		return nil, err
	}
	desc, err := open("desc", 40_000)
	if err != nil {
		return nil, err
	}
	packaging, err := open("packaging", 1_000)
	if err != nil {
		return nil, err
	}
	classifier, err := open("classifier", 1_000)
	if err != nil {
		return nil, err
	}

	insertStmt, err := tx.Prepare(`
INSERT INTO versions (
	group_id, artifact_id, version, classifier_id, extension_id,
	packaging_id, last_modified_seconds, size, checksum_hex,
	source_attached, javadoc_attached, signature_attached,
	name_id, desc_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("ingest: preparing versions insert: %w", err)
	}

	return &VersionsWriter{
		tx:         tx,
		group:      group,
		artifact:   artifact,
		name:       name,
		desc:       desc,
		packaging:  packaging,
		classifier: classifier,
		insertStmt: insertStmt,
	}, nil
}

// WriteDoc resolves doc's strings through the interners and inserts one
// row into versions.
func (w *VersionsWriter) WriteDoc(doc *nexus.Doc) error {
	groupID, err := w.group.Intern(doc.ID.Group)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	artifactID, err := w.artifact.Intern(doc.ID.Artifact)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	classifierID, err := w.classifier.InternOptional(doc.ID.Classifier)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	extensionID, err := w.packaging.InternOptional(doc.ID.Extension)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	packagingID, err := w.packaging.Intern(doc.ObjectInfo.Packaging)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	nameID, err := w.name.InternOptional(doc.Name)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}
	descID, err := w.desc.InternOptional(doc.Description)
	if err != nil {
		return fmt.Errorf("ingest: writing doc %s:%s: %w", doc.ID.Group, doc.ID.Artifact, err)
	}

	var checksumHex any
	if doc.Checksum != nil {
		checksumHex = doc.Checksum.String()
	}

	source, javadoc, signature := attachmentColumns(doc.ObjectInfo.SourceAttached, doc.ObjectInfo.JavadocAttached, doc.ObjectInfo.SignatureAttached)

	lastModifiedSeconds := int64(doc.ObjectInfo.LastModified / 1000)

	_, err = w.insertStmt.Exec(
		groupID, artifactID, doc.ID.Version, classifierID, extensionID,
		packagingID, lastModifiedSeconds, doc.ObjectInfo.Size, checksumHex,
		source, javadoc, signature,
		nameID, descID,
	)
	if err != nil {
		return fmt.Errorf("ingest: inserting versions row for %s:%s:%s: %w", doc.ID.Group, doc.ID.Artifact, doc.ID.Version, err)
	}

	logger.TraceIf("store", "wrote %s:%s:%s", doc.ID.Group, doc.ID.Artifact, doc.ID.Version)
	return nil
}

// attachmentColumns maps the three AttachmentStatus flags to the nilable
// booleans stored in versions: Absent -> false, Present -> true,
// Unavailable -> nil.
func attachmentColumns(src, javadoc, sig nexus.AttachmentStatus) (any, any, any) {
	return attachmentColumn(src), attachmentColumn(javadoc), attachmentColumn(sig)
}

func attachmentColumn(status nexus.AttachmentStatus) any {
	switch status {
	case nexus.Absent:
		return false
	case nexus.Present:
		return true
	default:
		return nil
	}
}

// Close releases every interner's prepared statements and the row insert
// statement. It does not commit or close the underlying *sql.DB/Tx.
func (w *VersionsWriter) Close() error {
	closers := []*intern.Interner{w.group, w.artifact, w.name, w.desc, w.packaging, w.classifier}
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := w.insertStmt.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
