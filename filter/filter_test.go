package filter_test

import (
	"strings"
	"testing"

	"github.com/elenia-ai/elenia-go-sdk/filter"
)

func TestApply_BannedWords(t *testing.T) {
	f := filter.New(filter.Config{BannedWords: []string{"tonto"}})

	got := f.Apply("eres un Tonto de verdad")
	if got != "eres un ***** de verdad" {
		t.Errorf("got %q", got)
	}
}

func TestApply_PhoneNumbers(t *testing.T) {
	f := filter.New(filter.DefaultConfig())

	cases := []string{
		"llámame al 612-345-678",
		"mi número es 612345678",
		"contacto: +34-612-345-678",
	}
	for _, in := range cases {
		got := f.Apply(in)
		if !strings.Contains(got, "[NÚMERO DE TELÉFONO]") {
			t.Errorf("Apply(%q) = %q, number not redacted", in, got)
		}
		if strings.Contains(got, "612") {
			t.Errorf("Apply(%q) = %q, digits leaked", in, got)
		}
	}
}

func TestApply_PhoneFilterDisabled(t *testing.T) {
	f := filter.New(filter.Config{})

	got := f.Apply("llámame al 612345678")
	if strings.Contains(got, "[NÚMERO DE TELÉFONO]") {
		t.Errorf("disabled filter should not redact, got %q", got)
	}
}

func TestApply_Addresses(t *testing.T) {
	f := filter.New(filter.DefaultConfig())

	got := f.Apply("vivo en Calle Mayor 123")
	if !strings.Contains(got, "[DIRECCIÓN]") {
		t.Errorf("got %q, address not redacted", got)
	}
}

func TestApply_EmojisAndEmoticons(t *testing.T) {
	f := filter.New(filter.Config{})

	got := f.Apply("qué bien 😀 jaja :) carita feliz")
	if got != "qué bien" {
		t.Errorf("got %q, want %q", got, "qué bien")
	}
}

func TestApply_EmptyInput(t *testing.T) {
	f := filter.New(filter.DefaultConfig())
	if got := f.Apply(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestAddRemoveBannedWord(t *testing.T) {
	f := filter.New(filter.Config{})

	f.AddBannedWord("Feo")
	if got := f.Apply("qué feo"); got != "qué ***" {
		t.Errorf("got %q", got)
	}

	if !f.RemoveBannedWord("feo") {
		t.Error("remove should report the word was present")
	}
	if f.RemoveBannedWord("feo") {
		t.Error("second remove should report absence")
	}
	if got := f.Apply("qué feo"); got != "qué feo" {
		t.Errorf("got %q, word should pass after removal", got)
	}
}
