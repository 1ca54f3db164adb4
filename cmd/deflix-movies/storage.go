package main

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/logadapter"
	"github.com/doingodswork/deflix-movies/pkg/storage"
)

const storageKeyPrefix = "movies_"

// openStorage opens the favorites storage.
// The returned function must be called for closing it.
func openStorage(cfg config, fs afero.Fs, logger *zap.Logger) (*storage.Store, func() error, error) {
	zapFieldPath := zap.String("storagePath", cfg.StoragePath)
	switch cfg.StorageType {
	case "badger":
		options := badger.DefaultOptions(cfg.StoragePath).
			WithLogger(logadapter.NewBadger2Zap(logger)).
			// The favorites list is tiny, so the default 1 GB value log files are unnecessary
			WithValueLogFileSize(16 << 20)
		db, err := badger.Open(options)
		if err != nil {
			return nil, nil, fmt.Errorf("Couldn't open BadgerDB: %w", err)
		}
		logger.Debug("Opened BadgerDB storage", zapFieldPath)
		return storage.NewStore(storage.NewBadgerBackend(db, storageKeyPrefix), logger), db.Close, nil
	case "file":
		backend, err := storage.NewFileBackend(fs, cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("Couldn't create file storage: %w", err)
		}
		logger.Debug("Opened file storage", zapFieldPath)
		return storage.NewStore(backend, logger), noopClose, nil
	case "memory":
		logger.Debug("Using in-memory storage, favorites won't be persisted")
		return storage.NewStore(storage.NewMemoryBackend(), logger), noopClose, nil
	}
	return nil, nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
}

func noopClose() error {
	return nil
}
