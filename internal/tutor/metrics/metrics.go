// Package metrics collects business metrics for the MCQ tutor service.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TutorMetrics holds service-level counters. All counters are updated
// atomically; durations are guarded by durationMu.
type TutorMetrics struct {
	// Generation requests
	generationsTotal  uint64
	generationsErrors uint64
	cacheHits         uint64
	cacheMisses       uint64

	// Topic validation
	validationsTotal    uint64
	validationsRejected uint64
	validationsFailOpen uint64

	// Chapter detection
	chapterKeywordHits uint64
	chapterLLMHits     uint64
	chapterMismatches  uint64

	// Retrieval
	retrievalTotal    uint64
	retrievalErrors   uint64
	retrievalDuration float64

	// LLM calls
	llmCallsTotal       uint64
	llmCallsErrors      uint64
	llmCallsDuration    float64
	llmTokensPrompt     uint64
	llmTokensCompletion uint64

	// Indexing
	datasetsIndexed uint64
	chunksIndexed   uint64
	indexErrors     uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	globalMetrics *TutorMetrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance.
func GetMetrics() *TutorMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &TutorMetrics{startTime: time.Now()}
	})
	return globalMetrics
}

// RecordGeneration records one generation request.
func (m *TutorMetrics) RecordGeneration(cacheHit bool, err error) {
	atomic.AddUint64(&m.generationsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.generationsErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
}

// RecordValidation records a topic validation outcome. failOpen marks
// validations that passed because the provider call failed.
func (m *TutorMetrics) RecordValidation(valid, failOpen bool) {
	atomic.AddUint64(&m.validationsTotal, 1)
	if failOpen {
		atomic.AddUint64(&m.validationsFailOpen, 1)
		return
	}
	if !valid {
		atomic.AddUint64(&m.validationsRejected, 1)
	}
}

// RecordChapterDetection records how a chapter was resolved.
func (m *TutorMetrics) RecordChapterDetection(viaKeywords, matched bool) {
	if !matched {
		atomic.AddUint64(&m.chapterMismatches, 1)
		return
	}
	if viaKeywords {
		atomic.AddUint64(&m.chapterKeywordHits, 1)
	} else {
		atomic.AddUint64(&m.chapterLLMHits, 1)
	}
}

// RecordRetrieval records one vector search.
func (m *TutorMetrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall records one chat completion call.
func (m *TutorMetrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()

	if promptTokens > 0 {
		atomic.AddUint64(&m.llmTokensPrompt, uint64(promptTokens))
	}
	if completionTokens > 0 {
		atomic.AddUint64(&m.llmTokensCompletion, uint64(completionTokens))
	}
}

// RecordIndexing records one indexing run.
func (m *TutorMetrics) RecordIndexing(datasets, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.datasetsIndexed, uint64(datasets))
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// Stats returns a snapshot for the stats API.
func (m *TutorMetrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.cacheHits)
	cacheMisses := atomic.LoadUint64(&m.cacheMisses)
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	retrievalTotal := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrieval := 0.0
	if retrievalTotal > 0 {
		avgRetrieval = retrievalDuration / float64(retrievalTotal)
	}

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLM := 0.0
	if llmTotal > 0 {
		avgLLM = llmDuration / float64(llmTotal)
	}

	return map[string]interface{}{
		"generations": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.generationsTotal),
			"errors":         atomic.LoadUint64(&m.generationsErrors),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
		},
		"validation": map[string]interface{}{
			"total":     atomic.LoadUint64(&m.validationsTotal),
			"rejected":  atomic.LoadUint64(&m.validationsRejected),
			"fail_open": atomic.LoadUint64(&m.validationsFailOpen),
		},
		"chapter_detection": map[string]interface{}{
			"keyword_hits": atomic.LoadUint64(&m.chapterKeywordHits),
			"llm_hits":     atomic.LoadUint64(&m.chapterLLMHits),
			"mismatches":   atomic.LoadUint64(&m.chapterMismatches),
		},
		"retrieval": map[string]interface{}{
			"total":               retrievalTotal,
			"errors":              atomic.LoadUint64(&m.retrievalErrors),
			"total_duration_secs": retrievalDuration,
			"avg_duration_secs":   avgRetrieval,
		},
		"llm": map[string]interface{}{
			"calls_total":         llmTotal,
			"errors":              atomic.LoadUint64(&m.llmCallsErrors),
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLM,
			"tokens_prompt":       atomic.LoadUint64(&m.llmTokensPrompt),
			"tokens_completion":   atomic.LoadUint64(&m.llmTokensCompletion),
		},
		"indexing": map[string]interface{}{
			"datasets_indexed": atomic.LoadUint64(&m.datasetsIndexed),
			"chunks_indexed":   atomic.LoadUint64(&m.chunksIndexed),
			"errors":           atomic.LoadUint64(&m.indexErrors),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Export renders the counters in Prometheus text format.
func (m *TutorMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	writeCounter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	writeCounter("generations_total", "Total number of MCQ generation requests.", atomic.LoadUint64(&m.generationsTotal))
	writeCounter("generations_errors_total", "Number of failed generation requests.", atomic.LoadUint64(&m.generationsErrors))
	writeCounter("cache_hits_total", "Number of MCQ cache hits.", atomic.LoadUint64(&m.cacheHits))
	writeCounter("cache_misses_total", "Number of MCQ cache misses.", atomic.LoadUint64(&m.cacheMisses))
	writeCounter("validations_total", "Total number of topic validations.", atomic.LoadUint64(&m.validationsTotal))
	writeCounter("validations_rejected_total", "Number of topics rejected by validation.", atomic.LoadUint64(&m.validationsRejected))
	writeCounter("chapter_keyword_hits_total", "Chapters resolved by keyword matching.", atomic.LoadUint64(&m.chapterKeywordHits))
	writeCounter("chapter_llm_hits_total", "Chapters resolved by the LLM fallback.", atomic.LoadUint64(&m.chapterLLMHits))
	writeCounter("chapter_mismatches_total", "Topics that matched no chapter of their subject.", atomic.LoadUint64(&m.chapterMismatches))
	writeCounter("retrieval_total", "Total number of vector searches.", atomic.LoadUint64(&m.retrievalTotal))
	writeCounter("retrieval_errors_total", "Number of failed vector searches.", atomic.LoadUint64(&m.retrievalErrors))
	writeCounter("llm_calls_total", "Total number of LLM calls.", atomic.LoadUint64(&m.llmCallsTotal))
	writeCounter("llm_calls_errors_total", "Number of failed LLM calls.", atomic.LoadUint64(&m.llmCallsErrors))
	writeCounter("llm_tokens_prompt_total", "Total prompt tokens.", atomic.LoadUint64(&m.llmTokensPrompt))
	writeCounter("llm_tokens_completion_total", "Total completion tokens.", atomic.LoadUint64(&m.llmTokensCompletion))
	writeCounter("datasets_indexed_total", "Total datasets indexed.", atomic.LoadUint64(&m.datasetsIndexed))
	writeCounter("chunks_indexed_total", "Total chunks indexed.", atomic.LoadUint64(&m.chunksIndexed))
	writeCounter("index_errors_total", "Number of indexing errors.", atomic.LoadUint64(&m.indexErrors))

	uptime := time.Since(m.startTime).Seconds()
	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Service uptime in seconds.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.2f\n", prefix, uptime))

	return sb.String()
}

// Reset clears all counters. Tests only.
func (m *TutorMetrics) Reset() {
	atomic.StoreUint64(&m.generationsTotal, 0)
	atomic.StoreUint64(&m.generationsErrors, 0)
	atomic.StoreUint64(&m.cacheHits, 0)
	atomic.StoreUint64(&m.cacheMisses, 0)
	atomic.StoreUint64(&m.validationsTotal, 0)
	atomic.StoreUint64(&m.validationsRejected, 0)
	atomic.StoreUint64(&m.validationsFailOpen, 0)
	atomic.StoreUint64(&m.chapterKeywordHits, 0)
	atomic.StoreUint64(&m.chapterLLMHits, 0)
	atomic.StoreUint64(&m.chapterMismatches, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.llmTokensPrompt, 0)
	atomic.StoreUint64(&m.llmTokensCompletion, 0)
	atomic.StoreUint64(&m.datasetsIndexed, 0)
	atomic.StoreUint64(&m.chunksIndexed, 0)
	atomic.StoreUint64(&m.indexErrors, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.llmCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
