package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStoreRecordsAndExpiresSends(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Retention:       1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "nested", "sends.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, found, err := store.Lookup("id1"); err != nil || found {
		t.Fatalf("expected unknown record, found=%v err=%v", found, err)
	}

	sentAt := time.Now().UTC().Truncate(time.Second)
	if err := store.Record(Record{ID: "id1", Sink: "eventhub", Target: "cli", Bytes: 11, Status: StatusSent, SentAt: sentAt}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rec, found, err := store.Lookup("id1")
	if err != nil || !found {
		t.Fatalf("expected record, found=%v err=%v", found, err)
	}
	if rec.Sink != "eventhub" || rec.Bytes != 11 || rec.Status != StatusSent || !rec.SentAt.Equal(sentAt) {
		t.Fatalf("unexpected record %+v", rec)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	if err := store.maybeCleanupExpired(time.Now()); err != nil {
		t.Fatalf("maybeCleanupExpired: %v", err)
	}
	if _, found, err := store.Lookup("id1"); err != nil || found {
		t.Fatalf("expected entry to expire and be removed, found=%v err=%v", found, err)
	}
}

func TestBoltStoreRequiresRecordID(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "sends.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.Record(Record{Sink: "sqs"}); err == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Record{ID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if _, found, _ := store.Lookup("x"); found {
		t.Fatalf("noop store should not find records")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported store")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}

func TestNopStoreKeepsNothing(t *testing.T) {
	store := NopStore()
	if err := store.Record(Record{ID: "x"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, found, err := store.Lookup("x"); found || err != nil {
		t.Fatalf("Lookup: found=%v err=%v", found, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
