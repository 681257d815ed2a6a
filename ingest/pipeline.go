package ingest

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/google/uuid"

	"nexidx/logger"
	"nexidx/nexus"
)

// DefaultQueueCapacity is the bounded producer/consumer queue capacity
// used when Options.QueueCapacity is unset.
const DefaultQueueCapacity = 65536

// Options configures one Ingest run.
type Options struct {
	// QueueCapacity overrides DefaultQueueCapacity; zero means use the
	// default.
	QueueCapacity int
	// TopListDir overrides the embedded top-N preload lists (see
	// intern.TopNFor); empty means use the embedded defaults.
	TopListDir string
}

// Ingest runs the full two-stage pipeline: a producer goroutine drives
// nexus.Read over source, forwarding each decoded Doc across a bounded
// channel to a consumer goroutine that owns a VersionsWriter and a
// transaction against db. Delete events are decoded but discarded; Error
// events abort the producer.
//
// If the writer fails, the transaction is rolled back and the writer's
// error takes precedence over the producer's, since a failed write is the
// more actionable diagnosis when both sides report trouble. If only the
// producer hits a fatal record (a bad doc, a framing error), the writer
// still drains and commits whatever it already received — those rows are
// kept — and the producer's error surfaces after the commit succeeds.
func Ingest(source io.Reader, db *sql.DB, opts Options) error {
	capacity := opts.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	runID := uuid.New().String()
	logger.Info("ingest run %s: starting", runID)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("ingest: beginning transaction: %w", err)
	}

	writer, err := NewVersionsWriter(tx, opts.TopListDir)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("ingest run %s: %w", runID, err)
	}

	docs := make(chan *nexus.Doc, capacity)
	writerErrCh := make(chan error, 1)
	writerStopped := make(chan struct{})

	go func() {
		defer close(writerStopped)
		writerErrCh <- runWriter(runID, writer, docs)
	}()

	producerErr := runProducer(runID, source, docs, writerStopped)
	writerErr := <-writerErrCh

	if writerErr != nil {
		tx.Rollback()
		writer.Close()
		if producerErr != nil {
			logger.Error("ingest run %s: producer also failed: %v", runID, producerErr)
		}
		return fmt.Errorf("ingest run %s: writer: %w", runID, writerErr)
	}

	// The writer drained every doc it was sent and wrote it successfully,
	// even if the producer later hit a fatal record and stopped early: the
	// docs already written still commit, and the producer's error surfaces
	// after.
	if err := writer.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("ingest run %s: closing writer: %w", runID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ingest run %s: committing: %w", runID, err)
	}

	if producerErr != nil {
		logger.Warn("ingest run %s: committed docs written before a fatal producer error", runID)
		return fmt.Errorf("ingest run %s: producer: %w", runID, producerErr)
	}

	logger.Info("ingest run %s: committed", runID)
	return nil
}

// runWriter drains docs until the channel is closed, writing each one.
// A fatal producer error still closes the channel rather than abandoning
// it, so whatever the writer already has committed is kept — the writer
// itself never aborts early on the producer's account.
func runWriter(runID string, writer *VersionsWriter, docs <-chan *nexus.Doc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingest run %s: writer panic: %v", runID, r)
		}
	}()

	count := 0
	for doc := range docs {
		if err := writer.WriteDoc(doc); err != nil {
			return err
		}
		count++
	}
	logger.Debug("ingest run %s: writer committed %d docs", runID, count)
	return nil
}

// errWriterStopped is returned when the producer finds the writer has
// already exited (with an error) while it still has docs to send. A Go
// channel send doesn't fail on a dropped receiver, so without this the
// producer would block forever on a full, undrained channel; selecting
// against writerStopped gives it a way out.
var errWriterStopped = fmt.Errorf("send on stopped pipeline: writer exited early")

// runProducer drives the decoder over source, forwarding Docs onto docs
// and discarding Deletes, until EOF, a fatal framing/classification
// error, or the writer stopping early. It always closes docs before
// returning, so the writer goroutine is never left blocked on an
// undrained channel.
func runProducer(runID string, source io.Reader, docs chan<- *nexus.Doc, writerStopped <-chan struct{}) error {
	defer close(docs)

	deletes, errs := 0, 0
	err := nexus.Read(source, func(ev nexus.Event) error {
		switch {
		case ev.Doc != nil:
			select {
			case docs <- ev.Doc:
			case <-writerStopped:
				return errWriterStopped
			}
		case ev.Delete != nil:
			deletes++
			logger.TraceIf("pipeline", "run %s: ignoring delete for %s:%s:%s", runID, ev.Delete.Group, ev.Delete.Artifact, ev.Delete.Version)
		case ev.Error != nil:
			errs++
			return fmt.Errorf("decoding record: %w (raw fields: %v)", ev.Error.Cause, ev.Error.Raw)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("ingest run %s: decoding aborted after %d deletes, %d errors: %w", runID, deletes, errs, err)
	}
	logger.Debug("ingest run %s: producer finished (%d deletes ignored)", runID, deletes)
	return nil
}
