package schema

import "testing"

const testSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string"},
		"version": {"type": "integer", "minimum": 1}
	}
}`

func TestCompile_CacheReturnsSameInstance(t *testing.T) {
	v1, err := Compile([]byte(testSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := Compile([]byte(testSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		t.Error("expected identical schemas to share a compiled validator")
	}
}

func TestCompile_DistinctSchemas(t *testing.T) {
	v1, err := Compile([]byte(`{"type": "object"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := Compile([]byte(`{"type": "array"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 == v2 {
		t.Error("expected distinct schemas to compile separately")
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	if _, err := Compile([]byte(`{"type": 42}`)); err == nil {
		t.Error("expected error for malformed schema")
	}
}

func TestValidate_ValidPayload(t *testing.T) {
	v, err := Compile([]byte(testSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs, err := v.Validate(map[string]any{"title": "Hello", "version": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no violations, got %v", msgs)
	}
}

func TestValidate_Violations(t *testing.T) {
	v, err := Compile([]byte(testSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs, err := v.Validate(map[string]any{"version": 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Missing title plus out-of-range version.
	if len(msgs) != 2 {
		t.Errorf("expected 2 violations, got %v", msgs)
	}
}
