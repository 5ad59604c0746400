// Package metrics keeps per-service usage counters and persists them
// as a JSON snapshot.
package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// maxResponseTimes caps the per-service latency history.
const maxResponseTimes = 1000

// Recorder accumulates usage counters keyed by service name. With a
// non-empty path every mutation rewrites the snapshot on disk. Field
// names in the snapshot are part of the on-disk format.
type Recorder struct {
	path   string
	logger *log.Logger

	mu   sync.Mutex
	data counters
}

type counters struct {
	APIUsage            map[string]int       `json:"api_usage"`
	ResponseTimes       map[string][]float64 `json:"response_times"`
	ErrorRates          map[string]int       `json:"error_rates"`
	TotalRequests       map[string]int       `json:"total_requests"`
	EmotionDistribution map[string]int       `json:"emotion_distribution"`
	MemoryOperations    map[string]int       `json:"memory_operations"`
	LastUpdated         string               `json:"last_updated"`
}

func emptyCounters() counters {
	return counters{
		APIUsage:            map[string]int{},
		ResponseTimes:       map[string][]float64{},
		ErrorRates:          map[string]int{},
		TotalRequests:       map[string]int{},
		EmotionDistribution: map[string]int{},
		MemoryOperations:    map[string]int{},
	}
}

// ServiceStats is an aggregate view over one service's counters.
type ServiceStats struct {
	TotalRequests   int
	TotalTokens     int
	Errors          int
	AvgResponseTime float64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the recorder's logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a Recorder, loading the snapshot at path when one
// exists. An empty path keeps counters in-memory only.
func NewRecorder(path string, opts ...Option) *Recorder {
	r := &Recorder{
		path:   path,
		logger: log.Default().WithPrefix("metrics"),
		data:   emptyCounters(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.load()
	return r
}

func (r *Recorder) load() {
	if r.path == "" {
		return
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("snapshot unreadable, starting fresh", "path", r.path, "error", err)
		}
		return
	}
	var loaded counters
	if err := json.Unmarshal(data, &loaded); err != nil {
		r.logger.Warn("snapshot corrupt, starting fresh", "path", r.path, "error", err)
		return
	}
	// Maps may be nil after unmarshaling an older snapshot.
	merged := emptyCounters()
	if loaded.APIUsage != nil {
		merged.APIUsage = loaded.APIUsage
	}
	if loaded.ResponseTimes != nil {
		merged.ResponseTimes = loaded.ResponseTimes
	}
	if loaded.ErrorRates != nil {
		merged.ErrorRates = loaded.ErrorRates
	}
	if loaded.TotalRequests != nil {
		merged.TotalRequests = loaded.TotalRequests
	}
	if loaded.EmotionDistribution != nil {
		merged.EmotionDistribution = loaded.EmotionDistribution
	}
	if loaded.MemoryOperations != nil {
		merged.MemoryOperations = loaded.MemoryOperations
	}
	r.data = merged
}

// save writes the snapshot. Callers must hold r.mu.
func (r *Recorder) save() {
	if r.path == "" {
		return
	}
	r.data.LastUpdated = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		r.logger.Error("marshal metrics failed", "error", err)
		return
	}
	tmp := r.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.logger.Error("create metrics dir failed", "error", err)
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.logger.Error("write metrics failed", "error", err)
		return
	}
	if err := os.Rename(tmp, r.path); err != nil {
		r.logger.Error("replace metrics failed", "error", err)
	}
}

// RecordAPIUsage adds consumed tokens to a service's total.
func (r *Recorder) RecordAPIUsage(service string, tokens int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.APIUsage[service] += tokens
	r.save()
}

// RecordResponseTime appends a latency sample for a service, keeping
// only the most recent ones.
func (r *Recorder) RecordResponseTime(service string, millis float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	times := append(r.data.ResponseTimes[service], millis)
	if len(times) > maxResponseTimes {
		times = times[len(times)-maxResponseTimes:]
	}
	r.data.ResponseTimes[service] = times
	r.save()
}

// RecordError counts one error for a service.
func (r *Recorder) RecordError(service string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.ErrorRates[service]++
	r.save()
}

// RecordRequest counts one request to a service.
func (r *Recorder) RecordRequest(service string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.TotalRequests[service]++
	r.save()
}

// RecordEmotion counts one detected emotion label.
func (r *Recorder) RecordEmotion(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.EmotionDistribution[label]++
	r.save()
}

// RecordMemoryOperation counts one memory operation by kind.
func (r *Recorder) RecordMemoryOperation(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.MemoryOperations[op]++
	r.save()
}

// ServiceStats aggregates one service's counters.
func (r *Recorder) ServiceStats(service string) ServiceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := ServiceStats{
		TotalRequests: r.data.TotalRequests[service],
		TotalTokens:   r.data.APIUsage[service],
		Errors:        r.data.ErrorRates[service],
	}
	if times := r.data.ResponseTimes[service]; len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		stats.AvgResponseTime = sum / float64(len(times))
	}
	return stats
}

// EmotionStats returns each emotion label's share of detections as a
// percentage. An empty map means nothing has been recorded.
func (r *Recorder) EmotionStats() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int
	for _, count := range r.data.EmotionDistribution {
		total += count
	}
	if total == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(r.data.EmotionDistribution))
	for label, count := range r.data.EmotionDistribution {
		out[label] = float64(count) / float64(total) * 100
	}
	return out
}

// MemoryStats returns a copy of the memory operation counters.
func (r *Recorder) MemoryStats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.data.MemoryOperations))
	for op, count := range r.data.MemoryOperations {
		out[op] = count
	}
	return out
}

// Reset clears all counters and rewrites the snapshot.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = emptyCounters()
	r.save()
}
