package commands_test

import (
	"context"
	"testing"

	"github.com/elenia-ai/elenia-go-sdk/commands"
)

func TestDispatcher_TriggersMatchingCommands(t *testing.T) {
	timers := commands.NewTimerManager(nil)
	notes := commands.NewNotesManager("")

	var searched bool
	search := commands.NewSearchManager(func(context.Context, string) ([]commands.SearchResult, error) {
		searched = true
		return nil, nil
	})

	d := commands.NewDispatcher(timers, notes, search)

	d.Dispatch(context.Background(), "Claro, pongo un temporizador de 5 minutos.")
	if len(timers.Active()) != 1 {
		t.Errorf("timer trigger should schedule a timer, active = %d", len(timers.Active()))
	}

	d.Dispatch(context.Background(), "Voy a buscar sobre gatos ahora mismo.")
	if !searched {
		t.Error("search trigger should invoke the backend")
	}

	d.Dispatch(context.Background(), "Una respuesta normal sin comandos.")
	if len(timers.Active()) != 1 {
		t.Errorf("reply without triggers should dispatch nothing, active = %d", len(timers.Active()))
	}
}

func TestDispatcher_ToleratesNilManagers(t *testing.T) {
	d := commands.NewDispatcher(nil, nil, nil)
	// Must not panic.
	d.Dispatch(context.Background(), "temporizador buscar nota")
}
