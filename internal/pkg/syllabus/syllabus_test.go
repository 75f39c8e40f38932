package syllabus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redfire-io/pcb-tutor/internal/model"
)

func TestChapters(t *testing.T) {
	assert.Len(t, Chapters(model.SubjectBiology), 15)
	assert.Len(t, Chapters(model.SubjectChemistry), 16)
	assert.Len(t, Chapters(model.SubjectPhysics), 16)
	assert.Empty(t, Chapters(model.Subject("geography")))
}

func TestCoverage(t *testing.T) {
	assert.Contains(t, Coverage(model.SubjectBiology), "Genetics")
	assert.Contains(t, Coverage(model.SubjectPhysics), "Semiconductors")
}

func TestMatchChapterTopicBonus(t *testing.T) {
	// "electrochemistry" appears in the chapter name, earning the topic bonus.
	chapter, score := MatchChapter(model.SubjectChemistry, "electrochemistry", "galvanic cells produce current")
	require.NotZero(t, score)
	assert.Equal(t, "Electrochemistry", chapter)
}

func TestMatchChapterFromContext(t *testing.T) {
	context := "The semiconductor devices chapter covers diodes and transistors in detail."
	chapter, score := MatchChapter(model.SubjectPhysics, "diodes", context)
	require.NotZero(t, score)
	assert.Equal(t, "Semiconductor Devices", chapter)
}

func TestMatchChapterNoMatch(t *testing.T) {
	chapter, score := MatchChapter(model.SubjectBiology, "xyz", "qqq www eee")
	assert.Zero(t, score)
	assert.Empty(t, chapter)
}

func TestMatchChapterIgnoresShortWords(t *testing.T) {
	// "and" appears in many chapter names but must not score.
	_, score := MatchChapter(model.SubjectBiology, "and the", "and and and")
	assert.Zero(t, score)
}

func TestMatchChapterTieKeepsEarlier(t *testing.T) {
	// "thermodynamics" matches both the chemistry chapter name word and
	// nothing else; ensure a deterministic winner.
	chapter, score := MatchChapter(model.SubjectChemistry, "thermodynamics", "")
	require.NotZero(t, score)
	assert.Equal(t, "Chemical Thermodynamics", chapter)
}

func TestMatchChapterMultibyteContext(t *testing.T) {
	// Long non-ASCII context must be truncated on a rune boundary, not in
	// the middle of a UTF-8 sequence.
	context := strings.Repeat("光合作用 ", 400) + "electrochemistry"
	require.True(t, utf8.ValidString(context))

	chapter, score := MatchChapter(model.SubjectChemistry, "electrochemistry", context)
	require.NotZero(t, score)
	assert.Equal(t, "Electrochemistry", chapter)
}

func TestContains(t *testing.T) {
	ch, ok := Contains(model.SubjectBiology, "biotechnology")
	require.True(t, ok)
	assert.Equal(t, "Biotechnology", ch)

	// LLM responses often echo the numbered form with extra words.
	ch, ok = Contains(model.SubjectPhysics, "Wave Optics")
	require.True(t, ok)
	assert.Equal(t, "Wave Optics", ch)

	_, ok = Contains(model.SubjectPhysics, "History of Art")
	assert.False(t, ok)

	_, ok = Contains(model.SubjectPhysics, "")
	assert.False(t, ok)
}
