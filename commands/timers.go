package commands

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultCheckInterval is how often the expiry worker scans for due
// timers.
const DefaultCheckInterval = time.Second

var durationPatterns = []struct {
	re   *regexp.Regexp
	unit time.Duration
}{
	{regexp.MustCompile(`(\d+)\s*segundos?`), time.Second},
	{regexp.MustCompile(`(\d+)\s*minutos?`), time.Minute},
	{regexp.MustCompile(`(\d+)\s*horas?`), time.Hour},
}

// ParseDuration extracts a spoken Spanish duration ("5 minutos",
// "30 segundos", "2 horas") from text. It reports false when no
// duration is present.
func ParseDuration(text string) (time.Duration, bool) {
	for _, p := range durationPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		return time.Duration(n) * p.unit, true
	}
	return 0, false
}

// Timer is one pending countdown.
type Timer struct {
	ID      string
	Message string
	EndTime time.Time
}

// Remaining reports the time left before the timer fires.
func (t Timer) Remaining() time.Duration {
	return time.Until(t.EndTime)
}

// TimerManager holds pending timers and fires a callback when each
// expires. Run drives expiry; without it timers accumulate but never
// fire.
type TimerManager struct {
	mu      sync.Mutex
	timers  map[string]Timer
	onFired func(message string)
	logger  *log.Logger
}

// NewTimerManager creates a manager that invokes onFired with each
// expired timer's message. A nil onFired drops expiries silently.
func NewTimerManager(onFired func(message string), opts ...TimerOption) *TimerManager {
	m := &TimerManager{
		timers:  make(map[string]Timer),
		onFired: onFired,
		logger:  log.Default().WithPrefix("timers"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TimerOption configures a TimerManager.
type TimerOption func(*TimerManager)

// WithTimerLogger sets the manager's logger.
func WithTimerLogger(logger *log.Logger) TimerOption {
	return func(m *TimerManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Handle parses a timer request and schedules the countdown. The reply
// is spoken back to the user.
func (m *TimerManager) Handle(text string) string {
	duration, ok := ParseDuration(text)
	if !ok {
		return "No pude entender la duración del temporizador."
	}

	timer := Timer{
		ID:      uuid.NewString(),
		Message: fmt.Sprintf("¡Tiempo terminado! %s", text),
		EndTime: time.Now().Add(duration),
	}

	m.mu.Lock()
	m.timers[timer.ID] = timer
	m.mu.Unlock()

	m.logger.Info("timer scheduled", "id", timer.ID, "duration", duration)
	return fmt.Sprintf("Temporizador configurado para %d segundos.", int(duration.Seconds()))
}

// Cancel removes a pending timer, reporting whether it existed.
func (m *TimerManager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timers[id]; !ok {
		return false
	}
	delete(m.timers, id)
	return true
}

// Active returns a copy of the pending timers.
func (m *TimerManager) Active() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Timer, 0, len(m.timers))
	for _, t := range m.timers {
		out = append(out, t)
	}
	return out
}

// Run scans for due timers at the given interval until ctx is
// cancelled, firing the callback for each expiry.
func (m *TimerManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, t := range m.expire(now) {
				m.logger.Info("timer fired", "id", t.ID)
				if m.onFired != nil {
					m.onFired(t.Message)
				}
			}
		}
	}
}

// expire removes and returns every timer due at now.
func (m *TimerManager) expire(now time.Time) []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Timer
	for id, t := range m.timers {
		if !now.Before(t.EndTime) {
			due = append(due, t)
			delete(m.timers, id)
		}
	}
	return due
}
