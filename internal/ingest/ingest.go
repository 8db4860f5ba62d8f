package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-redis/redis/v8"
	"github.com/gobwas/glob"

	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// dedupeTTL bounds how long a processed-file marker lives in Redis.
const dedupeTTL = 30 * 24 * time.Hour

// Report summarizes one ingest run.
type Report struct {
	FilesScanned int
	FilesStored  int
	FilesSkipped int
	FilesFailed  int
	FactsStored  int
	InvalidFacts int
}

// Ingestor walks markdown directories and feeds each file through the
// memory pipeline in batches.
type Ingestor struct {
	memoryService *service.MemoryService
	dedupe        *redis.Client // optional; nil disables dedupe
	opts          config.ProcessingOptions
	patterns      []glob.Glob
	log           *logger.Logger
}

// New creates an Ingestor. dedupe may be nil, in which case every file is
// processed on every run.
func New(memoryService *service.MemoryService, dedupe *redis.Client, opts config.ProcessingOptions, log *logger.Logger) *Ingestor {
	patterns := make([]glob.Glob, 0, len(opts.FileExtensions))
	for _, ext := range opts.FileExtensions {
		patterns = append(patterns, glob.MustCompile("*"+strings.ToLower(ext)))
	}
	return &Ingestor{
		memoryService: memoryService,
		dedupe:        dedupe,
		opts:          opts,
		patterns:      patterns,
		log:           log,
	}
}

// Run ingests every matching file under the given directories. Individual
// file failures are logged and counted; only a cancelled context stops
// the run early.
func (in *Ingestor) Run(ctx context.Context, dirs []string) (*Report, error) {
	report := &Report{}
	var batch int

	for _, dir := range dirs {
		files, err := in.collect(dir)
		if err != nil {
			return report, fmt.Errorf("scan %s: %w", dir, err)
		}

		for _, path := range files {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.FilesScanned++

			if err := in.ingestFile(ctx, path, report); err != nil {
				report.FilesFailed++
				in.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to ingest " + path)
			}

			batch++
			if batch >= in.opts.BatchSize && in.opts.Delay() > 0 {
				batch = 0
				select {
				case <-ctx.Done():
					return report, ctx.Err()
				case <-time.After(in.opts.Delay()):
				}
			}
		}
	}

	in.log.WithPayload(map[string]interface{}{
		"scanned": report.FilesScanned,
		"stored":  report.FilesStored,
		"skipped": report.FilesSkipped,
		"failed":  report.FilesFailed,
		"facts":   report.FactsStored,
	}).Info("ingest run finished")
	return report, nil
}

// collect lists matching files under dir, honoring the recursive option.
func (in *Ingestor) collect(dir string) ([]string, error) {
	var files []string

	if in.opts.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && in.matches(path) {
				files = append(files, path)
			}
			return nil
		})
		return files, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && in.matches(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (in *Ingestor) matches(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range in.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

func (in *Ingestor) ingestFile(ctx context.Context, path string, report *Report) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if in.seen(ctx, path, info.ModTime()) {
		report.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Extension matching alone lets renamed binaries through.
	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "text/") {
		report.FilesSkipped++
		in.log.WithPayload(map[string]interface{}{"path": path, "mime": mt.String()}).Warn("skipping non-text file")
		return nil
	}

	result, err := in.memoryService.AddMemory(ctx, service.AddInput{
		Content:     string(data),
		UserID:      in.opts.UserID,
		Source:      path,
		TimeContext: fileDate(info),
	})
	switch {
	case errors.Is(err, extractor.ErrNoExtractableContent):
		report.FilesSkipped++
		return nil
	case service.IsTimeout(err):
		// Skip the file and move on; the next run retries it.
		return err
	case err != nil:
		return err
	}

	report.FilesStored++
	report.FactsStored += len(result.Stored)
	report.InvalidFacts += len(result.Validation.InvalidFacts)
	in.mark(ctx, path, info.ModTime())
	return nil
}

// seen reports whether this path+mtime pair was already ingested.
func (in *Ingestor) seen(ctx context.Context, path string, mtime time.Time) bool {
	if in.dedupe == nil {
		return false
	}
	n, err := in.dedupe.Exists(ctx, dedupeKey(path, mtime)).Result()
	if err != nil {
		in.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("dedupe lookup failed, processing anyway")
		return false
	}
	return n > 0
}

func (in *Ingestor) mark(ctx context.Context, path string, mtime time.Time) {
	if in.dedupe == nil {
		return
	}
	if err := in.dedupe.Set(ctx, dedupeKey(path, mtime), "1", dedupeTTL).Err(); err != nil {
		in.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("dedupe mark failed")
	}
}

func dedupeKey(path string, mtime time.Time) string {
	return fmt.Sprintf("mom0mind:ingest:%s:%d", path, mtime.Unix())
}

// fileDate picks the temporal anchor for a file: birth time where the
// filesystem records it, modification time otherwise.
func fileDate(info os.FileInfo) string {
	ts := times.Get(info)
	if ts.HasBirthTime() {
		return ts.BirthTime().Format("2006-01-02")
	}
	return info.ModTime().Format("2006-01-02")
}
