package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
)

var _ store.SearchIndexer = (*SearchIndex)(nil)

// SearchIndex wraps a Bleve index of users.
//
// All public methods are safe for concurrent use. Rebuild takes the
// write lock and blocks other operations until it finishes.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Discards when nil
}

// mappingVersion is bumped whenever buildIndexMapping changes. A mismatch
// on startup drops the index so it is rebuilt from the database.
const mappingVersion = "1"

const (
	indexDirName    = "users.bleve"
	versionFileName = "users.version"
	batchSize       = 500
)

// NewSearchIndex opens the index under opts.DataPath, creating it when
// missing and recreating it when corrupt or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	indexPath := filepath.Join(opts.DataPath, indexDirName)
	versionPath := filepath.Join(opts.DataPath, versionFileName)

	var index bleve.Index
	needsRebuild := false

	if _, err := os.Stat(indexPath); err == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
				needsRebuild = true
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexUser adds or replaces a user's document.
func (s *SearchIndex) IndexUser(_ context.Context, user *domain.User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(user.ID, UserToDocument(user).ToMap())
}

// IndexUsers indexes users in batches.
func (s *SearchIndex) IndexUsers(users []*domain.User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < len(users); i += batchSize {
		end := min(i+batchSize, len(users))

		batch := s.index.NewBatch()
		for _, u := range users[i:end] {
			if err := batch.Index(u.ID, UserToDocument(u).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", u.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteUser removes a user's document. Missing documents are ignored.
func (s *SearchIndex) DeleteUser(_ context.Context, userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(userID)
}

// DocumentCount returns the number of indexed users.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and reindexes users from scratch.
func (s *SearchIndex) Rebuild(users []*domain.User) error {
	s.mu.Lock()

	if err := s.index.Close(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.mu.Unlock()

	if err := s.IndexUsers(users); err != nil {
		return err
	}
	s.logger.Info("rebuilt search index", "path", s.path, "users", len(users))
	return nil
}
