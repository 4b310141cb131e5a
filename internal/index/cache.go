package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	cacheFileName = "promotion_embeddings.json"
	lockFileName  = "promotion_embeddings.lock"
	lockTimeout   = 5 * time.Second
)

// vectorCache persists the embedding matrix on disk so restarts skip
// re-embedding an unchanged corpus. A file lock guards against another
// process writing the same cache directory.
type vectorCache struct {
	dir    string
	logger *slog.Logger
}

type cacheFile struct {
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

// load returns the cached matrix when it holds exactly count rows.
// The row count is the only reuse key; model and dimension are stored
// for inspection only.
func (c *vectorCache) load(count int) ([][]float32, bool) {
	lock, err := c.acquireLock()
	if err != nil {
		c.logger.Warn("skipping embedding cache read", "error", err)
		return nil, false
	}
	defer lock.Unlock()

	path := filepath.Join(c.dir, cacheFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read embedding cache", "path", path, "error", err)
		}
		return nil, false
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		c.logger.Warn("failed to decode embedding cache", "path", path, "error", err)
		return nil, false
	}
	if len(cf.Vectors) != count {
		return nil, false
	}
	return cf.Vectors, true
}

// save writes the matrix, creating the cache directory as needed.
func (c *vectorCache) save(model string, dimension int, rows [][]float32) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	lock, err := c.acquireLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := json.Marshal(cacheFile{
		Model:     model,
		Dimension: dimension,
		Vectors:   rows,
	})
	if err != nil {
		return fmt.Errorf("encode embedding cache: %w", err)
	}

	path := filepath.Join(c.dir, cacheFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace embedding cache: %w", err)
	}
	return nil
}

func (c *vectorCache) acquireLock() (*flock.Flock, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(filepath.Join(c.dir, lockFileName))
	deadline := time.Now().Add(lockTimeout)
	for {
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock embedding cache: %w", err)
		}
		if ok {
			return lock, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock embedding cache: timed out after %s", lockTimeout)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
