package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/augesrob/Badger-sub000/internal/model"
	"github.com/augesrob/Badger-sub000/internal/reconcile"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// DefaultDataset is used when a request names no dataset.
const DefaultDataset = "default"

// WriteResult describes an accepted write.
type WriteResult struct {
	LastSync int64
	// Changes lists trucks whose movement status or door status differs from
	// the document that was replaced.
	Changes []reconcile.StatusChange
}

// Store defines the interface for all database operations. The document is
// read and replaced whole; concurrent writers simply overwrite each other.
type Store interface {
	Read(ctx context.Context, dataset string) (snapshot.Snapshot, error)
	Write(ctx context.Context, dataset string, s snapshot.Snapshot) (WriteResult, error)
	Clear(ctx context.Context, dataset string, p snapshot.Partition) (WriteResult, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Read returns the stored document, or an empty one if the dataset has never
// been written.
func (s *gormStore) Read(ctx context.Context, dataset string) (snapshot.Snapshot, error) {
	doc, found, err := fetch(s.db.WithContext(ctx), dataset)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if !found {
		return snapshot.Empty(), nil
	}
	return decodeStored(doc), nil
}

// Write replaces the document with snap.
func (s *gormStore) Write(ctx context.Context, dataset string, snap snapshot.Snapshot) (WriteResult, error) {
	var result WriteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, found, err := fetch(forUpdate(tx), dataset)
		if err != nil {
			return err
		}

		var before snapshot.Snapshot
		if found {
			before = decodeStored(doc)
		}

		lastSync, err := s.replace(tx, dataset, doc.LastSync, snap)
		if err != nil {
			return err
		}

		result = WriteResult{
			LastSync: lastSync,
			Changes:  reconcile.StatusChanges(before.MovementTrucks, snap.MovementTrucks),
		}
		return nil
	})
	return result, err
}

// Clear empties one partition of the document.
func (s *gormStore) Clear(ctx context.Context, dataset string, p snapshot.Partition) (WriteResult, error) {
	var result WriteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, found, err := fetch(forUpdate(tx), dataset)
		if err != nil {
			return err
		}

		snap := snapshot.Empty()
		if found {
			snap = decodeStored(doc)
		}
		if err := snap.Clear(p); err != nil {
			return err
		}

		lastSync, err := s.replace(tx, dataset, doc.LastSync, snap)
		if err != nil {
			return err
		}
		result = WriteResult{LastSync: lastSync}
		return nil
	})
	return result, err
}

// replace upserts the document row. lastSync never goes backwards, even if
// the wall clock does.
func (s *gormStore) replace(tx *gorm.DB, dataset string, previous int64, snap snapshot.Snapshot) (int64, error) {
	now := s.now().UTC()
	lastSync := now.UnixMilli()
	if lastSync <= previous {
		lastSync = previous + 1
	}
	snap.LastSync = lastSync

	data, err := snapshot.Encode(snap)
	if err != nil {
		return 0, err
	}

	row := model.SnapshotDocument{
		Dataset:   dataset,
		Document:  datatypes.JSON(data),
		LastSync:  lastSync,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dataset"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "last_sync", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to write snapshot %q: %w", dataset, err)
	}
	return lastSync, nil
}

// forUpdate locks the document row until the transaction ends, so concurrent
// writers serialize on it. SQLite ignores the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func fetch(tx *gorm.DB, dataset string) (model.SnapshotDocument, bool, error) {
	var doc model.SnapshotDocument
	err := tx.First(&doc, "dataset = ?", dataset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SnapshotDocument{}, false, nil
	}
	if err != nil {
		return model.SnapshotDocument{}, false, fmt.Errorf("failed to read snapshot %q: %w", dataset, err)
	}
	return doc, true, nil
}

// decodeStored never fails: a stored document that cannot be parsed is
// treated as empty, and missing collections are defaulted.
func decodeStored(doc model.SnapshotDocument) snapshot.Snapshot {
	snap, err := snapshot.Decode(doc.Document)
	switch {
	case err == nil:
	case snapshot.IsMalformed(err):
		log.Printf("Warning: stored snapshot %q: %v", doc.Dataset, err)
	default:
		log.Printf("Error: stored snapshot %q is unreadable, treating as empty: %v", doc.Dataset, err)
		snap = snapshot.Empty()
	}
	snap.LastSync = doc.LastSync
	return snap
}
