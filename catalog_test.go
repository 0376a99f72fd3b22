package main

import (
	"os"
	"path/filepath"
	"testing"
)

func defaultCatalog(t *testing.T) *TagCatalog {
	t.Helper()
	catalog, err := LoadTagCatalog("")
	if err != nil {
		t.Fatalf("loading default catalog: %v", err)
	}
	return catalog
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog := defaultCatalog(t)
	if catalog.Len() == 0 {
		t.Fatal("default catalog must not be empty")
	}
	if !catalog.Contains(FallbackTag) {
		t.Fatalf("default catalog must contain the fallback tag %q", FallbackTag)
	}
	if !catalog.Contains("Dúvidas sobre boleto") {
		t.Fatal("expected boleto tag in default catalog")
	}
}

func TestNewTagCatalogRejectsEmpty(t *testing.T) {
	if _, err := NewTagCatalog(nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestLoadTagCatalogFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	content := `
tags:
  - name: "Dúvidas sobre boleto"
    keywords: ["boleto", "boleto bancário"]
  - name: "Problema: site não abre"
    keywords: ["site não abre"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tags yaml: %v", err)
	}

	catalog, err := LoadTagCatalog(path)
	if err != nil {
		t.Fatalf("LoadTagCatalog failed: %v", err)
	}
	names := catalog.Names()
	if names[0] != "Dúvidas sobre boleto" {
		t.Fatalf("expected declaration order preserved, got %q first", names[0])
	}
	// Fallback is appended when the file omits it.
	if !catalog.Contains(FallbackTag) {
		t.Fatal("expected fallback tag appended to file catalog")
	}
}

func TestLoadTagCatalogMissingFile(t *testing.T) {
	if _, err := LoadTagCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestNormalizeTagExactCaseInsensitive(t *testing.T) {
	catalog := defaultCatalog(t)

	tag, fuzzy, ok := NormalizeTag("DÚVIDAS SOBRE BOLETO", catalog)
	if !ok {
		t.Fatal("expected exact case-insensitive match")
	}
	if fuzzy {
		t.Fatal("exact match must not be flagged fuzzy")
	}
	if tag != "Dúvidas sobre boleto" {
		t.Fatalf("expected canonical casing, got %q", tag)
	}
}

func TestNormalizeTagFuzzyContainment(t *testing.T) {
	catalog := defaultCatalog(t)

	// Candidate is a substring of a catalog tag.
	tag, fuzzy, ok := NormalizeTag("sobre boleto", catalog)
	if !ok || !fuzzy {
		t.Fatalf("expected fuzzy match, ok=%v fuzzy=%v", ok, fuzzy)
	}
	if tag != "Dúvidas sobre boleto" {
		t.Fatalf("unexpected fuzzy resolution: %q", tag)
	}

	// Catalog tag is a substring of the candidate.
	tag, fuzzy, ok = NormalizeTag("Acho que é Dúvidas sobre PIX mesmo", catalog)
	if !ok || !fuzzy {
		t.Fatalf("expected reverse fuzzy match, ok=%v fuzzy=%v", ok, fuzzy)
	}
	if tag != "Dúvidas sobre PIX" {
		t.Fatalf("unexpected reverse fuzzy resolution: %q", tag)
	}
}

func TestNormalizeTagRejectsUnknown(t *testing.T) {
	catalog := defaultCatalog(t)

	if _, _, ok := NormalizeTag("complete nonsense zzz", catalog); ok {
		t.Fatal("expected unknown candidate to be rejected")
	}
	if _, _, ok := NormalizeTag("", catalog); ok {
		t.Fatal("expected empty candidate to be rejected")
	}
}
