package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/elenia-ai/elenia-go-sdk/commands"
)

func TestExtractQuery(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"busca información sobre el clima en Madrid", "el clima en madrid", true},
		{"qué es la fotosíntesis", "la fotosíntesis", true},
		{"quién es Cervantes", "cervantes", true},
		{"hola cómo estás", "", false},
	}

	for _, tc := range cases {
		got, ok := commands.ExtractQuery(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ExtractQuery(%q) = %q, %v; want %q, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSearchManager_Handle(t *testing.T) {
	backend := func(_ context.Context, query string) ([]commands.SearchResult, error) {
		if query != "go" {
			t.Errorf("query = %q, want go", query)
		}
		return []commands.SearchResult{
			{Title: "El lenguaje Go", Snippet: "Un lenguaje de programación."},
			{Title: "Go en producción", Snippet: "Experiencias reales."},
		}, nil
	}
	m := commands.NewSearchManager(backend)

	reply := m.Handle(context.Background(), "busca sobre go")
	if !strings.Contains(reply, "1. El lenguaje Go") || !strings.Contains(reply, "2. Go en producción") {
		t.Errorf("reply = %q", reply)
	}
}

func TestSearchManager_HandleNoQuery(t *testing.T) {
	m := commands.NewSearchManager(nil)

	reply := m.Handle(context.Background(), "hola")
	if reply != "No pude entender qué querías buscar." {
		t.Errorf("reply = %q", reply)
	}
}

func TestSearchManager_HandleBackendError(t *testing.T) {
	backend := func(context.Context, string) ([]commands.SearchResult, error) {
		return nil, errors.New("network down")
	}
	m := commands.NewSearchManager(backend)

	reply := m.Handle(context.Background(), "busca gatos")
	if reply != "Hubo un error al realizar la búsqueda." {
		t.Errorf("reply = %q", reply)
	}
}

func TestSearchManager_HandleNoResults(t *testing.T) {
	backend := func(context.Context, string) ([]commands.SearchResult, error) {
		return nil, nil
	}
	m := commands.NewSearchManager(backend)

	reply := m.Handle(context.Background(), "busca algo rarísimo")
	if reply != "No encontré resultados para tu búsqueda." {
		t.Errorf("reply = %q", reply)
	}
}

func TestFormatResults_CapsAtThree(t *testing.T) {
	results := make([]commands.SearchResult, 5)
	for i := range results {
		results[i] = commands.SearchResult{Title: "t", Snippet: "s"}
	}

	formatted := commands.FormatResults(results)
	if strings.Contains(formatted, "4.") {
		t.Errorf("formatted results should cap at three entries:\n%s", formatted)
	}
}
