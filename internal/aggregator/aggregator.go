// SPDX-License-Identifier: MPL-2.0

// Package aggregator builds a book.Book from a directory of YAML sources and
// writes it out as a single JSON artifact.
//
// The pipeline is strictly sequential and fails fast: the first unreadable
// or unparsable file aborts the run before anything is written, so the
// artifact on disk is either the previous one or a complete new one.
package aggregator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yamlbook/yamlbook/internal/book"
	"github.com/yamlbook/yamlbook/internal/document"
)

// Aggregator runs the ingestion and serialization steps. It holds no book
// state of its own; the book is owned by the caller (see Build) and passed
// in by reference.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an Aggregator. A nil logger discards log output.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{logger: logger}
}

// Build runs the whole pipeline: ingest every source under root into a fresh
// book, then write it to output. The returned book is nil on error.
func (a *Aggregator) Build(ctx context.Context, root, output string) (*book.Book, error) {
	b, err := a.Collect(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := a.Serialize(b, output); err != nil {
		return nil, err
	}
	return b, nil
}

// Collect ingests every source under root into a fresh book without writing
// anything.
func (a *Aggregator) Collect(ctx context.Context, root string) (*book.Book, error) {
	b := book.New()
	if err := a.IngestTree(ctx, b, root); err != nil {
		return nil, err
	}
	return b, nil
}

// IngestTree walks root recursively and ingests every non-directory entry
// whose name carries book.Extension. Other files are skipped and every
// directory is descended into. Entries are visited in lexical order, which
// fixes the order of documents within a group.
//
// Symbolic links to directories are not followed.
func (a *Aggregator) IngestTree(ctx context.Context, b *book.Book, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return ioError("list", path, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ingest canceled: %w", err)
		}
		if d.IsDir() || !book.HasExtension(d.Name()) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return ioError("read", path, err)
			}
			if info.IsDir() {
				return nil
			}
		}
		_, err := a.IngestOne(b, path)
		return err
	})
}

// IngestOne reads and parses the file at path and appends the resulting
// document to b under the key derived from the file name.
func (a *Aggregator) IngestOne(b *book.Book, path string) (book.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}

	doc, err := document.Decode(data)
	if err != nil {
		return nil, parseError(path, err)
	}

	key := book.KeyFromPath(path)
	b.Add(key, doc)
	a.logger.Debug("ingested document", "path", path, "key", string(key))

	return doc, nil
}
