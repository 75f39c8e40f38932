package biz

import (
	"context"
	"crypto/md5"
	"errors"
	"sync"

	"github.com/redfire-io/pcb-tutor/pkg/llm"
)

// fakeChat replays scripted responses and records every call.
type fakeChat struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []chatCall
}

type chatCall struct {
	prompt       string
	systemPrompt string
	opts         *llm.GenerateOptions
}

func (f *fakeChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeChat) Generate(_ context.Context, prompt, systemPrompt string, opts ...llm.GenerateOption) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, chatCall{
		prompt:       prompt,
		systemPrompt: systemPrompt,
		opts:         llm.ApplyGenerateOptions(opts...),
	})
	if f.err != nil {
		return nil, f.err
	}

	content := ""
	if len(f.responses) > 0 {
		content = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &llm.GenerateResponse{
		Content:    content,
		TokenUsage: &llm.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeChat) lastCall() chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// fakeEmbedder produces deterministic embeddings derived from the input
// text, so identical texts land close together in the vector store.
type fakeEmbedder struct {
	dim int
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vector(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

func (f *fakeEmbedder) vector(text string) []float32 {
	sum := md5.Sum([]byte(text))
	v := make([]float32, f.dim)
	for i := range v {
		v[i] = float32(sum[i%len(sum)]) / 255.0
	}
	return v
}

const sampleMCQOutput = `Q1. Which organelle carries out photosynthesis?
A) Mitochondrion
B) Chloroplast
C) Ribosome
D) Nucleus
Answer: B - Chloroplasts contain chlorophyll which captures light energy.

Q2. What is the primary pigment in photosynthesis?
A) Carotene
B) Xanthophyll
C) Chlorophyll a
D) Phycocyanin
Answer: C - Chlorophyll a is the main photosynthetic pigment.`
