package tokenizer

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"corporate suffix", "ACME, Inc.", "acme inc"},
		{"already canonical", "acme labs", "acme labs"},
		{"leading/trailing spaces", "  Acme Labs  ", "acme labs"},
		{"multiple spaces between words", "acme   labs", "acme labs"},
		{"tabs and newlines", "acme\t\nlabs", "acme labs"},
		{"string with hyphen", "state-of-the-art", "state of the art"},
		{"string with underscore", "my_variable_name", "my variable name"},
		{"mixed with numbers and symbols", "API_v1.0-beta!", "api v1 0 beta"},
		{"only symbols", "!@#$%^", ""},
		{"only numbers", "12345 67890", "12345 67890"},
		{"ampersand", "Johnson & Johnson", "johnson johnson"},
		{"full-width letters", "ＡＣＭＥ Labs", "acme labs"},
		{"accented letters are dropped", "Café Nova", "caf nova"},
		{"fi ligature", "\ufb01nance", "finance"},
		{"superscript digit", "H\u00b2O Systems", "h2o systems"},
		{"decomposed accent composes first", "Cafe\u0301 Nova", "caf nova"},
		{"camelCase is not split", "theOffice", "theoffice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.input)
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"ACME, Inc.",
		"  Lockheed-Martin   Skunk Works ",
		"ＡＣＭＥ Labs",
		"Ünïcödé ßtraße",
		"x y z",
		"İstanbul",
		"___",
	}

	for _, input := range inputs {
		once := Canonicalize(input)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCanonicalizePtr(t *testing.T) {
	if got := CanonicalizePtr(nil); got != nil {
		t.Errorf("CanonicalizePtr(nil) = %q, want nil", *got)
	}

	in := "Acme Labs, LLC"
	got := CanonicalizePtr(&in)
	if got == nil || *got != "acme labs llc" {
		t.Errorf("CanonicalizePtr(%q) = %v, want %q", in, got, "acme labs llc")
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"duplicates kept", "test test", []string{"test", "test"}},
		{"empty after canonicalize", "!@#$", []string{}},
		{"ligatures expand", "\ufb01nance \ufb02ow", []string{"finance", "flow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUniqueTokens(t *testing.T) {
	got := UniqueTokens("Radar radar SIGNAL radar signal study")
	want := []string{"radar", "signal", "study"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTokens() = %v, want %v", got, want)
	}
}

func TestTokenSet(t *testing.T) {
	got := TokenSet("Radar radar SIGNAL")
	if len(got) != 2 {
		t.Fatalf("TokenSet size = %d, want 2", len(got))
	}
	for _, token := range []string{"radar", "signal"} {
		if _, ok := got[token]; !ok {
			t.Errorf("TokenSet missing %q", token)
		}
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   bool
	}{
		{"single token", "anomaly detection study", "anomaly", true},
		{"first token", "anomaly", "anomaly", true},
		{"substring is not a token", "anomalous signal", "anomal", false},
		{"plural does not match", "acme labs", "lab", false},
		{"multi-word phrase", "unidentified aerial phenomena", "aerial phenomena", true},
		{"phrase out of order", "phenomena aerial", "aerial phenomena", false},
		{"empty phrase", "anything", "", false},
		{"empty text", "", "anomaly", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPhrase(tt.text, tt.phrase); got != tt.want {
				t.Errorf("ContainsPhrase(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
			}
		})
	}
}
