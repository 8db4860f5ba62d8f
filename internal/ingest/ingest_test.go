package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/memory/store"
	"github.com/bbookman/mom0mind/internal/memory/validator"
	"github.com/bbookman/mom0mind/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestIngestor(opts config.ProcessingOptions) (*Ingestor, *store.MemStore) {
	st := store.NewMemStore(nil)
	log := logger.New("ingest-test", opts.UserID)
	svc := service.NewMemoryService(extractor.NewRuleExtractor(), validator.New(nil, nil), st, log)
	return New(svc, nil, opts, log), st
}

func TestRunIngestsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "journal.md", "I live in Seattle. My favorite food is ramen.")
	writeFile(t, dir, "ignored.txt", "I own a boat named Serenity.")

	ing, st := newTestIngestor(config.ProcessingOptions{
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})

	report, err := ing.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FilesScanned != 1 {
		t.Errorf("scanned %d files, want 1 (extension filter)", report.FilesScanned)
	}
	if report.FilesStored != 1 || report.FactsStored != 2 {
		t.Errorf("report = %+v, want 1 file and 2 facts stored", report)
	}

	records, err := st.GetAll(context.Background(), "bruce")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("store holds %d records, want 2", len(records))
	}
}

func TestRunRecursiveOption(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.md", "I work at Globex.")
	writeFile(t, dir, filepath.Join("nested", "deep.md"), "I play tennis with Dana.")

	flat, _ := newTestIngestor(config.ProcessingOptions{
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})
	report, err := flat.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FilesScanned != 1 {
		t.Errorf("non-recursive scanned %d files, want 1", report.FilesScanned)
	}

	deep, _ := newTestIngestor(config.ProcessingOptions{
		Recursive:      true,
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})
	report, err = deep.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FilesScanned != 2 {
		t.Errorf("recursive scanned %d files, want 2", report.FilesScanned)
	}
}

func TestRunSkipsBinaryMasqueradingAsMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.md")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 1}, 0o644); err != nil {
		t.Fatal(err)
	}

	ing, _ := newTestIngestor(config.ProcessingOptions{
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})
	report, err := ing.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FilesSkipped != 1 || report.FilesStored != 0 {
		t.Errorf("report = %+v, want the binary file skipped", report)
	}
}

func TestRunCountsGreetingOnlyFilesAsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.md", "   ")

	ing, _ := newTestIngestor(config.ProcessingOptions{
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})
	report, err := ing.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FilesSkipped != 1 || report.FilesFailed != 0 {
		t.Errorf("report = %+v, want the empty file skipped, not failed", report)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	ing, _ := newTestIngestor(config.ProcessingOptions{
		FileExtensions: []string{".md"},
		UserID:         "bruce",
		BatchSize:      10,
	})
	if _, err := ing.Run(context.Background(), []string{"/nonexistent/path"}); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
