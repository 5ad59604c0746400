package commands_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/elenia-ai/elenia-go-sdk/commands"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
		ok   bool
	}{
		{"pon un temporizador de 5 minutos", 5 * time.Minute, true},
		{"temporizador de 30 segundos", 30 * time.Second, true},
		{"avísame en 2 horas", 2 * time.Hour, true},
		{"un minuto por favor", 0, false},
		{"pon un temporizador", 0, false},
	}

	for _, tc := range cases {
		got, ok := commands.ParseDuration(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseDuration(%q) = %v, %v; want %v, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTimerManager_Handle(t *testing.T) {
	m := commands.NewTimerManager(nil)

	reply := m.Handle("pon un temporizador de 10 minutos")
	if !strings.Contains(reply, "600 segundos") {
		t.Errorf("reply = %q", reply)
	}
	if len(m.Active()) != 1 {
		t.Fatalf("active = %d, want 1", len(m.Active()))
	}

	reply = m.Handle("pon un temporizador ya")
	if reply != "No pude entender la duración del temporizador." {
		t.Errorf("reply = %q", reply)
	}
	if len(m.Active()) != 1 {
		t.Errorf("unparseable request should not schedule a timer")
	}
}

func TestTimerManager_Cancel(t *testing.T) {
	m := commands.NewTimerManager(nil)
	m.Handle("temporizador de 5 minutos")

	id := m.Active()[0].ID
	if !m.Cancel(id) {
		t.Error("cancel should find the timer")
	}
	if m.Cancel(id) {
		t.Error("second cancel should report absence")
	}
	if len(m.Active()) != 0 {
		t.Errorf("active = %d, want 0", len(m.Active()))
	}
}

func TestTimerManager_FiresExpired(t *testing.T) {
	fired := make(chan string, 1)
	m := commands.NewTimerManager(func(message string) {
		fired <- message
	})

	m.Handle("temporizador de 1 segundos")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, 10*time.Millisecond)

	select {
	case msg := <-fired:
		if !strings.Contains(msg, "¡Tiempo terminado!") {
			t.Errorf("message = %q", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timer never fired")
	}

	if len(m.Active()) != 0 {
		t.Errorf("fired timer should be removed, active = %d", len(m.Active()))
	}
}
