package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"doc-assistant/internal/chunker"
	"doc-assistant/internal/extract"
)

// Pool is the built-in chunk pool. It is immutable once built.
type Pool struct {
	Chunks   []string
	Files    []string
	Warnings []string
}

// Corpus lazily builds the pool from every PDF in a directory, exactly once.
type Corpus struct {
	dir  string
	opts chunker.Options
	log  *slog.Logger

	once sync.Once
	pool Pool
}

func New(dir string, opts chunker.Options, log *slog.Logger) *Corpus {
	return &Corpus{dir: dir, opts: opts, log: log}
}

// Load returns the pool, building it on first use. Safe for concurrent callers.
func (c *Corpus) Load() Pool {
	c.once.Do(func() {
		c.pool = c.build()
		c.log.Info("knowledge corpus loaded",
			"dir", c.dir, "files", len(c.pool.Files), "chunks", len(c.pool.Chunks), "warnings", len(c.pool.Warnings))
	})
	return c.pool
}

func (c *Corpus) build() Pool {
	pool := Pool{Chunks: []string{}, Files: []string{}, Warnings: []string{}}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			pool.Warnings = append(pool.Warnings, fmt.Sprintf("Could not read knowledge folder: %v", err))
		}
		return pool
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err == nil {
			var text string
			text, err = extract.Text(extract.PDF, data)
			if err == nil {
				pool.Chunks = append(pool.Chunks, chunker.ChunkText(text, c.opts)...)
				pool.Files = append(pool.Files, name)
				continue
			}
		}
		c.log.Warn("skipping knowledge file", "file", name, "err", err)
		pool.Warnings = append(pool.Warnings, fmt.Sprintf("Could not read %s: %v", name, err))
	}
	return pool
}
