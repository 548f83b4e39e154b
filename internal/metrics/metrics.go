// Package metrics keeps in-process counters for the report pipeline,
// exposed as JSON by the optional monitoring server.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched       int64
	ItemsProcessed     int64
	WindowDropped      int64
	SuppressedFiltered int64
	DuplicatesFiltered int64
	ItemsSelected      int64
	ReportsSent        int64
	GeminiCalls        int64

	// Timings
	LastPipelineTime    time.Duration
	TotalPipelineTime   time.Duration
	AveragePipelineTime time.Duration
	PipelineRuns        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddItemsProcessed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsProcessed += int64(n)
}

func (m *Metrics) AddWindowDropped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WindowDropped += int64(n)
}

func (m *Metrics) AddSuppressedFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuppressedFiltered += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddItemsSelected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsSelected += int64(n)
}

func (m *Metrics) IncrementReportsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportsSent++
}

func (m *Metrics) IncrementGeminiCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GeminiCalls++
}

func (m *Metrics) RecordPipelineTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPipelineTime = duration
	m.TotalPipelineTime += duration
	m.PipelineRuns++
	m.AveragePipelineTime = m.TotalPipelineTime / time.Duration(m.PipelineRuns)
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_fetched":            m.ItemsFetched,
		"items_processed":          m.ItemsProcessed,
		"window_dropped":           m.WindowDropped,
		"suppressed_filtered":      m.SuppressedFiltered,
		"duplicates_filtered":      m.DuplicatesFiltered,
		"items_selected":           m.ItemsSelected,
		"reports_sent":             m.ReportsSent,
		"gemini_calls":             m.GeminiCalls,
		"last_pipeline_time_ms":    m.LastPipelineTime.Milliseconds(),
		"average_pipeline_time_ms": m.AveragePipelineTime.Milliseconds(),
		"last_run_time":            m.LastRunTime.Format(time.RFC3339),
		"last_error_time":          m.LastErrorTime.Format(time.RFC3339),
		"last_error":               m.LastError,
		"is_healthy":               m.IsHealthy,
	}
}
