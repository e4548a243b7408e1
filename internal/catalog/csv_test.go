package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"logo,optionA,optionB,optionC,optionD,correct",
		"https://img/go.png, Rust , Go ,Zig,Dart,B",
		"https://img/short.png,A,B,C",
		"",
		"https://img/bad.png,A,B,C,D,E",
		"https://img/pg.png,MySQL,MariaDB,SQLite,PostgreSQL,d,extra",
	}, "\n")

	cat, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", cat.Len())
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skipped rows (header, short, bad letter), got %d", skipped)
	}

	first := cat.At(0)
	if first.PromptAssetRef != "https://img/go.png" {
		t.Fatalf("unexpected asset ref %q", first.PromptAssetRef)
	}
	if first.Options != [4]string{"Rust", "Go", "Zig", "Dart"} {
		t.Fatalf("options not trimmed in order: %+v", first.Options)
	}
	if first.CorrectAnswer != "Go" {
		t.Fatalf("expected correct answer Go, got %q", first.CorrectAnswer)
	}
	if got := cat.At(1).CorrectAnswer; got != "PostgreSQL" {
		t.Fatalf("lowercase letter should map to option D, got %q", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	cat, skipped, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 0 || skipped != 0 {
		t.Fatalf("expected empty catalog, got len=%d skipped=%d", cat.Len(), skipped)
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	cat, _, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatalf("expected bundled questions")
	}
	for i := 0; i < cat.Len(); i++ {
		rec := cat.At(i)
		found := 0
		for _, opt := range rec.Options {
			if opt == rec.CorrectAnswer {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("record %d: correct answer %q appears %d times", i, rec.CorrectAnswer, found)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte("a.png,w,x,y,z,C\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 1 || cat.At(0).CorrectAnswer != "y" {
		t.Fatalf("unexpected catalog %+v", cat)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
