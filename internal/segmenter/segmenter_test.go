package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

func TestSplitEmptyInput(t *testing.T) {
	for _, strategy := range []Strategy{StrategySentence, StrategyParagraph, StrategyFixed} {
		t.Run(string(strategy), func(t *testing.T) {
			assert.Empty(t, Split("", Options{Strategy: strategy}))
			assert.Empty(t, Split("   \n\t  ", Options{Strategy: strategy}))
		})
	}
}

func TestSplitSentenceOverlap(t *testing.T) {
	segs := Split("A. B. C. D.", Options{Strategy: StrategySentence, Size: 5, Overlap: 2})

	require.Equal(t, []string{"A. B.", "B. C.", "C. D."}, texts(segs))
	assert.False(t, segs[0].OverlapsPrevious)
	assert.True(t, segs[1].OverlapsPrevious)
	assert.True(t, segs[2].OverlapsPrevious)
}

func TestSplitSentenceOffsets(t *testing.T) {
	text := "First sentence here. Second one follows! Third asks a question? Fourth ends it."
	norm := NormalizedText(text, StrategySentence)

	segs := Split(text, Options{Strategy: StrategySentence, Size: 45, Overlap: 10})
	require.NotEmpty(t, segs)

	for i, s := range segs {
		assert.Equal(t, norm[s.Start:s.End], s.Text, "segment %d must be a contiguous slice", i)
		if i > 0 {
			assert.Equal(t, s.Start < segs[i-1].End, s.OverlapsPrevious)
			assert.Greater(t, s.End, segs[i-1].End, "segments must advance")
		}
	}
}

func TestSplitSentenceNoOverlap(t *testing.T) {
	segs := Split("A. B. C. D.", Options{Strategy: StrategySentence, Size: 5, Overlap: 0})

	require.Equal(t, []string{"A. B.", "C. D."}, texts(segs))
	for _, s := range segs {
		assert.False(t, s.OverlapsPrevious)
	}
}

func TestSplitSentenceOversized(t *testing.T) {
	// A single sentence longer than the chunk size is emitted whole
	long := strings.Repeat("word ", 30) + "end."
	segs := Split(long+" Short one.", Options{Strategy: StrategySentence, Size: 50, Overlap: 10})

	require.Len(t, segs, 2)
	assert.Greater(t, len(segs[0].Text), 50)
	assert.Contains(t, segs[1].Text, "Short one.")
}

func TestSplitSentenceNoTerminalPunctuation(t *testing.T) {
	segs := Split("just some words without an ending", Options{Strategy: StrategySentence, Size: 100, Overlap: 20})

	require.Len(t, segs, 1)
	assert.Equal(t, "just some words without an ending", segs[0].Text)
	assert.False(t, segs[0].OverlapsPrevious)
}

func TestSplitParagraph(t *testing.T) {
	text := "aaa bbb\n\nccc ddd\n\n\neee"
	segs := Split(text, Options{Strategy: StrategyParagraph, Size: 18, Overlap: 8})

	require.Equal(t, []string{"aaa bbb\n\nccc ddd", "ccc ddd\n\neee"}, texts(segs))
	assert.False(t, segs[0].OverlapsPrevious)
	assert.True(t, segs[1].OverlapsPrevious)

	norm := NormalizedText(text, StrategyParagraph)
	for _, s := range segs {
		assert.Equal(t, norm[s.Start:s.End], s.Text)
	}
}

func TestSplitParagraphNormalizesInnerWhitespace(t *testing.T) {
	segs := Split("one\ttwo\n\nthree   four", Options{Strategy: StrategyParagraph, Size: 100, Overlap: 0})

	require.Len(t, segs, 1)
	assert.Equal(t, "one two\n\nthree four", segs[0].Text)
}

func TestSplitParagraphOversized(t *testing.T) {
	long := strings.Repeat("para ", 40)
	segs := Split(long+"\n\nshort", Options{Strategy: StrategyParagraph, Size: 50, Overlap: 10})

	require.Len(t, segs, 2)
	assert.Greater(t, len(segs[0].Text), 50)
	assert.Equal(t, "short", segs[1].Text)
}

func TestSplitFixed(t *testing.T) {
	segs := Split("aaa bbb ccc ddd eee", Options{Strategy: StrategyFixed, Size: 7, Overlap: 4})

	require.Equal(t, []string{"aaa bbb", "bbb ccc", "ccc ddd", "ddd eee"}, texts(segs))
	assert.False(t, segs[0].OverlapsPrevious)
	for _, s := range segs[1:] {
		assert.True(t, s.OverlapsPrevious)
	}
}

func TestSplitFixedWordBoundary(t *testing.T) {
	segs := Split("alpha beta gamma delta", Options{Strategy: StrategyFixed, Size: 10, Overlap: 3})

	// windows snap back to word boundaries rather than splitting words
	require.Equal(t, []string{"alpha beta", "gamma", "delta"}, texts(segs))
}

func TestSplitFixedLongWord(t *testing.T) {
	// a word longer than the window is cut hard but progress continues
	segs := Split(strings.Repeat("x", 25), Options{Strategy: StrategyFixed, Size: 10, Overlap: 3})

	require.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, texts(segs))
}

func TestSplitOverlapClamped(t *testing.T) {
	// overlap >= size must still make forward progress
	segs := Split("aa bb cc dd ee ff gg hh", Options{Strategy: StrategyFixed, Size: 5, Overlap: 10})

	require.NotEmpty(t, segs)
	for i := 1; i < len(segs); i++ {
		assert.Greater(t, segs[i].End, segs[i-1].End)
	}
}

func TestSplitDefaults(t *testing.T) {
	text := strings.Repeat("This is a sentence. ", 120)
	segs := Split(text, Options{})

	require.NotEmpty(t, segs)
	for _, s := range segs[:len(segs)-1] {
		assert.LessOrEqual(t, len(s.Text), DefaultSize)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"sentence", StrategySentence, false},
		{"Paragraph", StrategyParagraph, false},
		{" fixed ", StrategyFixed, false},
		{"token", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
		} else {
			assert.NoError(t, err, tt.input)
			assert.Equal(t, tt.want, got)
		}
	}
}
