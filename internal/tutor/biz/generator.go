package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/mcqformat"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
)

const generatorSystemPrompt = "You are an expert Class-12 teacher who creates high-quality MCQs from textbook content. " +
	"You always follow the exact format specified."

// maxGenerationTokens caps the completion budget regardless of question
// count.
const maxGenerationTokens = 3000

// tokensPerQuestion is the completion budget granted per requested question.
const tokensPerQuestion = 300

// Generator turns retrieved context into formatted multiple-choice
// questions via the chat model.
type Generator struct {
	chat             llm.ChatProvider
	contextCharLimit int
}

// NewGenerator creates a Generator. contextCharLimit truncates the
// reference material embedded in the prompt.
func NewGenerator(chat llm.ChatProvider, contextCharLimit int) *Generator {
	if contextCharLimit <= 0 {
		contextCharLimit = 1500
	}
	return &Generator{chat: chat, contextCharLimit: contextCharLimit}
}

// Generate produces count questions for the topic. It returns the cleaned
// raw text plus the parsed items.
func (g *Generator) Generate(ctx context.Context, subject model.Subject, topic, chapter, contextText string, count int) (string, []model.MCQItem, error) {
	prompt := g.buildPrompt(subject, topic, chapter, contextText, count)

	maxTokens := tokensPerQuestion * count
	if maxTokens > maxGenerationTokens {
		maxTokens = maxGenerationTokens
	}

	start := time.Now()
	resp, err := g.chat.Generate(ctx, prompt, generatorSystemPrompt,
		llm.WithTemperature(0.3),
		llm.WithTopP(0.9),
		llm.WithMaxTokens(maxTokens),
	)
	recordLLMCall(start, resp, err)
	if err != nil {
		return "", nil, fmt.Errorf("generate questions: %w", err)
	}

	cleaned := mcqformat.CleanOutput(resp.Content)
	items := mcqformat.Parse(cleaned)

	logger.Infow("Questions generated",
		"subject", string(subject),
		"topic", topic,
		"chapter", chapter,
		"requested", count,
		"parsed", len(items),
	)
	return cleaned, items, nil
}

func (g *Generator) buildPrompt(subject model.Subject, topic, chapter, contextText string, count int) string {
	ellipsis := ""
	if count > 5 {
		ellipsis = "..."
	}

	return fmt.Sprintf(`You are a Class-12 %s teacher creating MCQs.
Topic: "%s"
Chapter: "%s"
Reference material from textbook:
%s
Generate exactly %d multiple-choice questions based on the reference material.
FORMAT (follow EXACTLY):
Q1. [Question based on material]
A) [Option 1]
B) [Option 2]
C) [Option 3]
D) [Option 4]
Answer: [A/B/C/D] - [Brief explanation]
Q2. [Question based on material]
A) [Option 1]
B) [Option 2]
C) [Option 3]
D) [Option 4]
Answer: [A/B/C/D] - [Brief explanation]
Continue for Q3, Q4, Q5%s.
REQUIREMENTS:
- All questions must be answerable from the reference material
- All 4 options should be plausible
- Correct answer must be clearly supported by material
- Keep explanations brief (1-2 sentences)
Generate %d MCQs now:`,
		subject.Title(), topic, chapter,
		textutil.TruncateString(contextText, g.contextCharLimit),
		count, ellipsis, count)
}
