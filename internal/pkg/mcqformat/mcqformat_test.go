package mcqformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Q1. Which organelle is the site of aerobic respiration?
A) Nucleus
B) Mitochondrion
C) Ribosome
D) Golgi apparatus
Answer: B - Mitochondria carry out the Krebs cycle and oxidative phosphorylation.

Q2. Which gas is released during photosynthesis?
A) Carbon dioxide
B) Nitrogen
C) Oxygen
D) Methane
Answer: C - Water is split during the light reactions, releasing oxygen.`

func TestCleanOutputKeepsFormatLines(t *testing.T) {
	raw := "Here are your MCQs:\n\n" + sample + "\n\nGood luck with your exam!"
	cleaned := CleanOutput(raw)

	assert.NotContains(t, cleaned, "Here are your MCQs")
	assert.NotContains(t, cleaned, "Good luck")
	assert.Contains(t, cleaned, "Q1. Which organelle")
	assert.Contains(t, cleaned, "Answer: C")
}

func TestCleanOutputNormalizesCorrectAnswer(t *testing.T) {
	raw := "Q1. Sample?\nA) one\nB) two\nC) three\nD) four\nCorrect Answer: A - because"
	cleaned := CleanOutput(raw)

	assert.Contains(t, cleaned, "Answer: A - because")
	assert.NotContains(t, cleaned, "Correct Answer:")
}

func TestParse(t *testing.T) {
	items := Parse(sample)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Which organelle is the site of aerobic respiration?", first.Question)
	require.Len(t, first.Options, 4)
	assert.Equal(t, "Mitochondrion", first.Options["B"])
	assert.Equal(t, "B", first.Answer)
	assert.Contains(t, first.Explanation, "Krebs cycle")

	second := items[1]
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, "C", second.Answer)
}

func TestParseAnswerWithoutExplanation(t *testing.T) {
	items := Parse("Q1. Sample?\nA) one\nB) two\nC) three\nD) four\nAnswer: D")
	require.Len(t, items, 1)
	assert.Equal(t, "D", items[0].Answer)
	assert.Empty(t, items[0].Explanation)
}

func TestParseSkipsStrayLines(t *testing.T) {
	items := Parse("random preamble\nQ1. Sample?\nA) one\nnot an option\nAnswer: A - ok")
	require.Len(t, items, 1)
	assert.Len(t, items[0].Options, 1)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("no questions here"))
}
