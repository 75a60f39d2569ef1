package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("res")

	if got := gen.Next(); got != "res-1" {
		t.Fatalf("first id = %q, want res-1", got)
	}
	if got := gen.Next(); got != "res-2" {
		t.Fatalf("second id = %q, want res-2", got)
	}
}

func TestIDGeneratorDefaultPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("id = %q, want id-1", got)
	}
}

func TestIDGeneratorNextFunc(t *testing.T) {
	gen := NewIDGenerator("tok")
	next := gen.NextFunc()

	if got := next(); got != "tok-1" {
		t.Fatalf("id = %q, want tok-1", got)
	}

	var nilGen *IDGenerator
	if got := nilGen.NextFunc()(); got != "" {
		t.Fatalf("nil generator produced %q", got)
	}
}
