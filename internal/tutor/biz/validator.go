package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/syllabus"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
)

const validatorSystemPrompt = "You are an expert at identifying which subject a topic belongs to. Answer only YES or NO."

// TopicValidator gates topics against their claimed subject with the chat
// model. Provider errors fail open so an LLM outage never blocks generation.
type TopicValidator struct {
	chat    llm.ChatProvider
	enabled bool
}

// NewTopicValidator creates a TopicValidator. A nil chat provider or
// enabled=false turns validation into a no-op that accepts everything.
func NewTopicValidator(chat llm.ChatProvider, enabled bool) *TopicValidator {
	return &TopicValidator{chat: chat, enabled: enabled}
}

// Validate reports whether topic belongs to subject.
func (v *TopicValidator) Validate(ctx context.Context, subject model.Subject, topic string) (bool, error) {
	if !v.enabled || v.chat == nil {
		return true, nil
	}

	prompt := fmt.Sprintf(`You are a Class 12 PCB subject expert. Determine if the following topic belongs to %s.
Topic: "%s"
Subject: %s
Class 12 %s covers:
- %s
Answer ONLY with "YES" if the topic belongs to %s, or "NO" if it belongs to a different subject.
Answer:`,
		subject.Title(), topic, subject.Title(), subject.Title(),
		syllabus.Coverage(subject), subject.Title())

	start := time.Now()
	resp, err := v.chat.Generate(ctx, prompt, validatorSystemPrompt,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(10),
	)
	recordLLMCall(start, resp, err)
	if err != nil {
		// Fail open: never block generation on a validator outage.
		logger.Warnw("Topic validation failed, allowing topic",
			"subject", string(subject),
			"topic", topic,
			"error", err.Error(),
		)
		metrics.GetMetrics().RecordValidation(true, true)
		return true, nil
	}

	valid := strings.Contains(strings.ToUpper(strings.TrimSpace(resp.Content)), "YES")
	metrics.GetMetrics().RecordValidation(valid, false)

	if valid {
		logger.Debugw("Topic validated", "subject", string(subject), "topic", topic)
	} else {
		logger.Infow("Topic rejected for subject", "subject", string(subject), "topic", topic)
	}
	return valid, nil
}

func recordLLMCall(start time.Time, resp *llm.GenerateResponse, err error) {
	var promptTokens, completionTokens int
	if resp != nil && resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	metrics.GetMetrics().RecordLLMCall(time.Since(start), promptTokens, completionTokens, err)
}
