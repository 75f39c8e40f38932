package biz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/syllabus"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
)

const (
	// notMatching is the sentinel the model returns when the topic does not
	// belong to the subject.
	notMatching = "NOT_MATCHING"

	// detectionContextChars limits the context snippet in the detection
	// prompt.
	detectionContextChars = 600
)

var chapterNumberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// ChapterDetector maps a topic and its retrieved context to a textbook
// chapter. Keyword scoring runs first; the chat model is the fallback and
// doubles as a subject gate via the NOT_MATCHING sentinel.
type ChapterDetector struct {
	chat llm.ChatProvider
}

// NewChapterDetector creates a ChapterDetector. The chat provider may be
// nil, in which case only keyword scoring is available.
func NewChapterDetector(chat llm.ChatProvider) *ChapterDetector {
	return &ChapterDetector{chat: chat}
}

// Detect returns the chapter for the topic, or ErrSubjectMismatch when the
// topic does not belong to the subject.
func (d *ChapterDetector) Detect(ctx context.Context, subject model.Subject, topic, contextText string) (string, error) {
	if chapter, score := syllabus.MatchChapter(subject, topic, contextText); score > 0 {
		logger.Debugw("Chapter detected by keywords",
			"subject", string(subject),
			"chapter", chapter,
			"score", score,
		)
		metrics.GetMetrics().RecordChapterDetection(true, true)
		return chapter, nil
	}

	chapter, err := d.detectWithLLM(ctx, subject, topic, contextText)
	metrics.GetMetrics().RecordChapterDetection(false, err == nil)
	return chapter, err
}

func (d *ChapterDetector) detectWithLLM(ctx context.Context, subject model.Subject, topic, contextText string) (string, error) {
	chapters := syllabus.Chapters(subject)
	if d.chat == nil {
		return "", ErrSubjectMismatch
	}

	var list strings.Builder
	for i, ch := range chapters {
		fmt.Fprintf(&list, "%d. %s\n", i+1, ch)
	}

	prompt := fmt.Sprintf(`Based on the following textbook content and topic, identify which chapter from the Class 12 %s textbook this content belongs to.
Topic: %s
Content snippet:
%s
Available %s chapters:
%s
IMPORTANT: If the topic and content do NOT belong to %s, respond with "NOT_MATCHING".
If it matches, respond with ONLY the chapter number and name exactly as listed (e.g., "5. Origin and Evolution of Life").
Response:`,
		subject.Title(), topic,
		textutil.TruncateString(contextText, detectionContextChars),
		subject.Title(), list.String(), subject.Title())

	systemPrompt := fmt.Sprintf("You are an expert at identifying which chapter textbook content belongs to. "+
		"You can recognize when content doesn't match the subject. "+
		"If the topic is from a different subject than %s, respond with 'NOT_MATCHING'.", subject.Title())

	start := time.Now()
	resp, err := d.chat.Generate(ctx, prompt, systemPrompt,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(50),
	)
	recordLLMCall(start, resp, err)
	if err != nil {
		return "", fmt.Errorf("chapter detection: %w", err)
	}

	result := strings.TrimSpace(resp.Content)
	upper := strings.ToUpper(result)
	if strings.Contains(upper, notMatching) || strings.Contains(upper, "NOT MATCHING") {
		logger.Infow("Topic rejected during chapter detection",
			"subject", string(subject),
			"topic", topic,
		)
		return "", ErrSubjectMismatch
	}

	name := strings.TrimSpace(chapterNumberPrefix.ReplaceAllString(result, ""))
	if chapter, ok := syllabus.Contains(subject, name); ok {
		logger.Debugw("Chapter detected by model", "subject", string(subject), "chapter", chapter)
		return chapter, nil
	}

	// Model answered with something off-list; treat as a mismatch rather
	// than inventing a chapter.
	logger.Warnw("Chapter detection returned unknown chapter",
		"subject", string(subject),
		"topic", topic,
		"answer", result,
	)
	return "", ErrSubjectMismatch
}
