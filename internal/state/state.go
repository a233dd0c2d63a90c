// Package state persists a small provisioning ledger in an embedded SQLite
// database. The ledger is informational: provisioning decisions are made
// from the filesystem, the ledger only records what fogoctl did and when.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Ledger wraps the database handle with provisioning-specific queries.
type Ledger struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the ledger database at path and runs
// schema migrations.
func Open(path string) (*Ledger, error) {
	dialector := sqlite.Open(fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path))
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Artifact{}, &InstalledPackage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return &Ledger{db: db}, nil
}

// RecordRun appends a run record.
func (l *Ledger) RecordRun(command string, succeeded bool, warnings int, duration time.Duration) error {
	run := Run{
		Command:    command,
		Succeeded:  succeeded,
		Warnings:   warnings,
		DurationMs: duration.Milliseconds(),
	}
	if err := l.db.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// TrackArtifact upserts the artifact record for path, hashing the file's
// current contents.
func (l *Ledger) TrackArtifact(path, kind string) error {
	hash, err := hashFile(path)
	if err != nil {
		return err
	}

	var record Artifact
	err = l.db.Where("path = ?", path).First(&record).Error
	switch {
	case err == nil:
		record.Kind = kind
		record.Hash = hash
		if err := l.db.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update artifact %s: %w", path, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = Artifact{Path: path, Kind: kind, Hash: hash}
		if err := l.db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to track artifact %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up artifact %s: %w", path, err)
	}
}

// RecordInstall upserts the install record for a package.
func (l *Ledger) RecordInstall(name, spec string, pinned, succeeded bool) error {
	var record InstalledPackage
	err := l.db.Where("name = ?", name).First(&record).Error
	switch {
	case err == nil:
		record.Spec = spec
		record.Pinned = pinned
		record.Succeeded = succeeded
		if err := l.db.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update install record for %s: %w", name, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = InstalledPackage{Name: name, Spec: spec, Pinned: pinned, Succeeded: succeeded}
		if err := l.db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record install for %s: %w", name, err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up install record for %s: %w", name, err)
	}
}

// LastRun returns the most recent run record, or nil if none exists.
func (l *Ledger) LastRun() (*Run, error) {
	var run Run
	err := l.db.Order("created_at desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return &run, nil
}

// Artifacts returns all tracked artifacts.
func (l *Ledger) Artifacts() ([]Artifact, error) {
	var records []Artifact
	if err := l.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return records, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
