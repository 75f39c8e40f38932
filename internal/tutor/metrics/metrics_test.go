package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *TutorMetrics {
	m := GetMetrics()
	m.Reset()
	return m
}

func TestGetMetricsSingleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}

func TestRecordGeneration(t *testing.T) {
	m := newTestMetrics()

	m.RecordGeneration(true, nil)
	m.RecordGeneration(false, nil)
	m.RecordGeneration(false, assert.AnError)

	stats := m.Stats()
	gen := stats["generations"].(map[string]interface{})
	assert.Equal(t, uint64(3), gen["total"])
	assert.Equal(t, uint64(1), gen["errors"])
	assert.Equal(t, uint64(1), gen["cache_hits"])
	assert.Equal(t, uint64(1), gen["cache_misses"])
	assert.InDelta(t, 0.5, gen["cache_hit_rate"].(float64), 0.001)
}

func TestRecordValidation(t *testing.T) {
	m := newTestMetrics()

	m.RecordValidation(true, false)
	m.RecordValidation(false, false)
	m.RecordValidation(true, true)

	stats := m.Stats()
	v := stats["validation"].(map[string]interface{})
	assert.Equal(t, uint64(3), v["total"])
	assert.Equal(t, uint64(1), v["rejected"])
	assert.Equal(t, uint64(1), v["fail_open"])
}

func TestRecordChapterDetection(t *testing.T) {
	m := newTestMetrics()

	m.RecordChapterDetection(true, true)
	m.RecordChapterDetection(false, true)
	m.RecordChapterDetection(false, false)

	stats := m.Stats()
	cd := stats["chapter_detection"].(map[string]interface{})
	assert.Equal(t, uint64(1), cd["keyword_hits"])
	assert.Equal(t, uint64(1), cd["llm_hits"])
	assert.Equal(t, uint64(1), cd["mismatches"])
}

func TestRecordRetrievalAndLLM(t *testing.T) {
	m := newTestMetrics()

	m.RecordRetrieval(100*time.Millisecond, nil)
	m.RecordRetrieval(50*time.Millisecond, assert.AnError)
	m.RecordLLMCall(500*time.Millisecond, 100, 50, nil)
	m.RecordLLMCall(time.Second, 0, 0, assert.AnError)

	stats := m.Stats()
	r := stats["retrieval"].(map[string]interface{})
	assert.Equal(t, uint64(2), r["total"])
	assert.Equal(t, uint64(1), r["errors"])
	assert.InDelta(t, 0.1, r["total_duration_secs"].(float64), 0.001)

	l := stats["llm"].(map[string]interface{})
	assert.Equal(t, uint64(2), l["calls_total"])
	assert.Equal(t, uint64(1), l["errors"])
	assert.Equal(t, uint64(100), l["tokens_prompt"])
	assert.Equal(t, uint64(50), l["tokens_completion"])
}

func TestRecordIndexing(t *testing.T) {
	m := newTestMetrics()

	m.RecordIndexing(1, 25, nil)
	m.RecordIndexing(0, 0, assert.AnError)

	stats := m.Stats()
	idx := stats["indexing"].(map[string]interface{})
	assert.Equal(t, uint64(1), idx["datasets_indexed"])
	assert.Equal(t, uint64(25), idx["chunks_indexed"])
	assert.Equal(t, uint64(1), idx["errors"])
}

func TestExport(t *testing.T) {
	m := newTestMetrics()
	m.RecordGeneration(false, nil)

	out := m.Export("pcb_tutor", "mcq")
	require.Contains(t, out, "pcb_tutor_mcq_generations_total 1")
	assert.Contains(t, out, "# TYPE pcb_tutor_mcq_generations_total counter")
	assert.Contains(t, out, "pcb_tutor_mcq_uptime_seconds")
}
