package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gamma-omg/docqa-mcp/readers"
	"github.com/gamma-omg/docqa-mcp/recordstore"
)

// IngestStore is the slice of the record store the registry writes to.
type IngestStore interface {
	UpsertDocumentFile(ctx context.Context, file, title, extracted string, crc uint32) (int64, error)
	DeleteDocumentByFile(ctx context.Context, file string) error
	ListIngested(ctx context.Context) ([]recordstore.IngestedDoc, error)
}

// DocRegistry keeps the record store in sync with a document directory: on
// file create or update it runs text extraction and stores the result, on
// removal it deletes the document. Extraction failures are swallowed and
// stored as empty text, so a bad file never blocks ingestion.
type DocRegistry struct {
	log              *slog.Logger
	root             string
	store            IngestStore
	readers          []readers.FileReader
	mergeEventsDelay time.Duration
}

type diskDoc struct {
	file string
	crc  uint32
}

// Sync reconciles the record store with the current directory content.
func (dr *DocRegistry) Sync(ctx context.Context) error {
	disk, err := dr.collectDocs()
	if err != nil {
		return err
	}

	db, err := dr.store.ListIngested(ctx)
	if err != nil {
		return err
	}
	dbMap := make(map[string]uint32, len(db))
	for _, d := range db {
		dbMap[d.File] = d.Crc
	}

	for _, d := range disk {
		if crc, ok := dbMap[d.file]; ok && crc == d.crc {
			continue
		}
		if err := dr.ingest(ctx, d); err != nil {
			return err
		}
	}

	diskMap := make(map[string]struct{}, len(disk))
	for _, d := range disk {
		diskMap[d.file] = struct{}{}
	}
	for _, d := range db {
		if _, ok := diskMap[d.File]; ok {
			continue
		}
		if err := dr.store.DeleteDocumentByFile(ctx, d.File); err != nil {
			return fmt.Errorf("failed to remove document %s: %w", d.File, err)
		}
		dr.log.Info("removed document", "file", d.File)
	}

	return nil
}

// Watch re-syncs on directory changes until ctx is canceled. Bursts of write
// events are merged through a debounce delay.
func (dr *DocRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dr.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dr.root, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		resync := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dr.log.Error("watch error", "error", err)
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(dr.mergeEventsDelay, func() {
					select {
					case resync <- struct{}{}:
					default:
					}
				})
			case <-resync:
				if err := dr.Sync(ctx); err != nil {
					dr.log.Error("sync failed", "error", err)
				}
			}
		}
	}()

	return nil
}

func (dr *DocRegistry) collectDocs() ([]diskDoc, error) {
	var docs []diskDoc
	err := filepath.Walk(dr.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if readers.For(dr.readers, path) == nil {
			dr.log.Warn("unsupported file", "file", path)
			return nil
		}

		buf, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		docs = append(docs, diskDoc{
			file: path,
			crc:  crc32.Checksum(buf, crc32.IEEETable),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dr.root, err)
	}

	return docs, nil
}

func (dr *DocRegistry) ingest(ctx context.Context, d diskDoc) error {
	reader := readers.For(dr.readers, d.file)

	text, err := reader.ReadText(d.file)
	if err != nil {
		// Extraction failure is not fatal: the document is stored with
		// empty text and stays retrievable through its title.
		dr.log.Warn("text extraction failed", "file", d.file, "error", err)
		text = ""
	}

	if _, err := dr.store.UpsertDocumentFile(ctx, d.file, docTitle(d.file), text, d.crc); err != nil {
		return fmt.Errorf("failed to store document %s: %w", d.file, err)
	}

	dr.log.Info("ingested document", "file", d.file)
	return nil
}

// docTitle derives a document title from its file name.
func docTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
