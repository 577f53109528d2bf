package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/log"
	"med-scraper/pkg/models"
	"med-scraper/pkg/utils"
)

const (
	pdfKeyPrefix = "pdf:"      // Prefix for PDF URL keys in DB
	ledgerDBDir  = "pdf_ledger" // Subdirectory name within stateDir for Badger DB files
)

// BadgerLedger implements PDFLedger using BadgerDB.
type BadgerLedger struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerLedger initializes the on-disk PDF ledger under stateDir.
func NewBadgerLedger(stateDir string, logger *logrus.Entry) (*BadgerLedger, error) {
	dbPath := filepath.Join(stateDir, ledgerDBDir)
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %s: %w", dbPath, err)
	}
	logger.Infof("Initializing PDF ledger at: %s", dbPath)

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1) // Only the latest download state matters

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dbPath, err)
	}
	return &BadgerLedger{db: db, log: logger}, nil
}

func pdfKey(rawURL string) []byte {
	return []byte(pdfKeyPrefix + rawURL)
}

// CheckPDF retrieves the recorded state of a PDF URL.
func (l *BadgerLedger) CheckPDF(rawURL string) (models.PDFStatus, *models.PDFDBEntry, error) {
	var entry models.PDFDBEntry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pdfKey(rawURL))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.PDFStatusNotFound, nil, nil
	}
	if err != nil {
		return models.PDFStatusDBError, nil, utils.WrapErrorf(utils.ErrDatabase, "checking PDF status for '%s': %v", rawURL, err)
	}
	return entry.Status, &entry, nil
}

// RecordPDF stores the download result for a PDF URL.
func (l *BadgerLedger) RecordPDF(rawURL string, entry *models.PDFDBEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return utils.WrapErrorf(utils.ErrDatabase, "marshaling ledger entry for '%s': %v", rawURL, err)
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pdfKey(rawURL), data)
	})
	if err != nil {
		return utils.WrapErrorf(utils.ErrDatabase, "recording PDF status for '%s': %v", rawURL, err)
	}
	return nil
}

// Count returns the number of ledger entries.
func (l *BadgerLedger) Count() (int, error) {
	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pdfKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, utils.WrapErrorf(utils.ErrDatabase, "counting ledger entries: %v", err)
	}
	return count, nil
}

// Close cleanly closes the database.
func (l *BadgerLedger) Close() error {
	l.log.Info("Closing PDF ledger database...")
	return l.db.Close()
}
