package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_JSONIndex(t *testing.T) {
	def, err := NewIndex("idx:receipts").
		OnJSON().
		Prefix("raseed:receipts:").
		Tag("$.user_id").Alias("user_id").
		NumericSortable("$.created_at").Alias("created_at").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.StorageType != StorageJSON {
		t.Errorf("expected JSON storage, got %s", def.StorageType)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "raseed:receipts:" {
		t.Errorf("unexpected prefixes: %v", def.Prefixes)
	}
	if len(def.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(def.Fields))
	}
	if def.Fields[0].Alias != "user_id" {
		t.Errorf("expected alias 'user_id', got %q", def.Fields[0].Alias)
	}
	if !def.Fields[1].Sortable {
		t.Error("expected created_at to be sortable")
	}
}

func TestIndexBuilder_EmptyNameFails(t *testing.T) {
	_, err := NewIndex("").Tag("user_id").Build()
	if err == nil {
		t.Fatal("expected error for empty index name")
	}
}

func TestIndexBuilder_NoFieldsFails(t *testing.T) {
	_, err := NewIndex("idx:empty").Build()
	if err == nil {
		t.Fatal("expected error for index without fields")
	}
}

func TestIndexBuilder_DuplicateAliasFails(t *testing.T) {
	_, err := NewIndex("idx:dup").
		Tag("$.a").Alias("f").
		Numeric("$.b").Alias("f").
		Build()
	if err == nil {
		t.Fatal("expected error for duplicate field alias")
	}
}

func TestIndexDefinition_String(t *testing.T) {
	def := NewIndex("idx:passes").
		OnJSON().
		Prefix("raseed:passes:").
		Tag("$.user_id").Alias("user_id").
		MustBuild()

	s := def.String()
	for _, want := range []string{"FT.CREATE", "idx:passes", "ON JSON", "PREFIX", "AS user_id", "TAG"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"idx:receipts", "a_b-c", "X1"} {
		if !IsValidIdentifier(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "has space", "semi;colon"} {
		if IsValidIdentifier(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
