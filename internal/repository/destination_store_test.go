package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sheetA = "https://docs.google.com/spreadsheets/d/X"

type failingPersister struct {
	saves int
}

func (p *failingPersister) Load(context.Context) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func (p *failingPersister) Save(context.Context, map[int64]string) error {
	p.saves++
	return errors.New("disk full")
}

func TestDestinationStoreReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	store := NewDestinationStore(NewJSONFile(filepath.Join(t.TempDir(), "sheets.json")))
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := store.Get(1); ok {
		t.Fatalf("expected no destination before set")
	}

	if err := store.Set(ctx, 1, "  "+sheetA+"\n"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := store.Get(1)
	if !ok || got != sheetA {
		t.Fatalf("get after set = %q %t", got, ok)
	}

	second := sheetA + "2"
	if err := store.Set(ctx, 1, second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := store.Get(1); got != second {
		t.Fatalf("last write should win, got %q", got)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}
}

func TestDestinationStoreRejectsInvalidURL(t *testing.T) {
	ctx := context.Background()
	persister := &failingPersister{}
	store := NewDestinationStore(persister)

	for _, bad := range []string{"", "docs.google.com/spreadsheets/d/X", "https://example.com/sheet", SheetURLPrefix} {
		if err := store.Set(ctx, 1, bad); !errors.Is(err, ErrInvalidDestination) {
			t.Fatalf("Set(%q) err = %v, want ErrInvalidDestination", bad, err)
		}
	}
	if _, ok := store.Get(1); ok {
		t.Fatalf("store must stay unchanged after validation errors")
	}
	if persister.saves != 0 {
		t.Fatalf("validation errors must not persist, got %d saves", persister.saves)
	}
}

func TestDestinationStoreRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	persister := &failingPersister{}
	store := NewDestinationStore(persister)

	err := store.Set(ctx, 1, sheetA)
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if errors.Is(err, ErrInvalidDestination) {
		t.Fatalf("persistence error reported as validation error")
	}
	if _, ok := store.Get(1); ok {
		t.Fatalf("failed set must not leave an in-memory value")
	}
}

func TestDestinationStoreRestoresPreviousValue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "sheets.json")
	store := NewDestinationStore(NewJSONFile(path))
	if err := store.Set(ctx, 1, sheetA); err != nil {
		t.Fatalf("set: %v", err)
	}

	store.persister = &failingPersister{}
	if err := store.Set(ctx, 1, sheetA+"new"); err == nil {
		t.Fatalf("expected error")
	}
	if got, _ := store.Get(1); got != sheetA {
		t.Fatalf("previous value not restored, got %q", got)
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sheets.json")

	store := NewDestinationStore(NewJSONFile(path))
	if err := store.Set(ctx, 1, sheetA); err != nil {
		t.Fatalf("set 1: %v", err)
	}
	if err := store.Set(ctx, 42, sheetA+"42"); err != nil {
		t.Fatalf("set 42: %v", err)
	}

	reloaded := NewDestinationStore(NewJSONFile(path))
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}
	for id, want := range map[int64]string{1: sheetA, 42: sheetA + "42"} {
		if got, _ := reloaded.Get(id); got != want {
			t.Fatalf("user %d: got %q want %q", id, got, want)
		}
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestJSONFileMissingIsEmpty(t *testing.T) {
	snapshot, err := NewJSONFile(filepath.Join(t.TempDir(), "absent.json")).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snapshot)
	}
}

func TestJSONFileRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets.json")
	if err := os.WriteFile(path, []byte(`{"abc": "x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONFile(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for non-numeric user id")
	}
}

func TestJSONFileSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	file := NewJSONFile(filepath.Join(blocker, "sheets.json"))
	if err := file.Save(context.Background(), map[int64]string{1: sheetA}); err == nil {
		t.Fatalf("expected error when parent is a regular file")
	}
}

func TestJSONFileSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state", "bot")
	path := filepath.Join(dir, "sheets.json")
	file := NewJSONFile(path)
	if err := file.Save(context.Background(), map[int64]string{7: sheetA}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "sheets.json" {
		t.Fatalf("unexpected directory contents %v", entries)
	}
	snapshot, err := file.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot[7] != sheetA {
		t.Fatalf("saved snapshot not readable: %v", snapshot)
	}
}
