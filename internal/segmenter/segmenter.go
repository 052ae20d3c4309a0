// Package segmenter splits text into overlapping chunks for indexing and
// retrieval. Three strategies are supported: sentence (default), paragraph,
// and fixed-size windows. All strategies operate on whitespace-normalized
// text; segment offsets index into that normalized form, so every segment
// is a contiguous slice of it.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects the chunking algorithm.
type Strategy string

const (
	StrategySentence  Strategy = "sentence"
	StrategyParagraph Strategy = "paragraph"
	StrategyFixed     Strategy = "fixed"
)

// ParseStrategy converts a user-supplied string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySentence:
		return StrategySentence, nil
	case StrategyParagraph:
		return StrategyParagraph, nil
	case StrategyFixed:
		return StrategyFixed, nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q (expected sentence, paragraph or fixed)", s)
	}
}

// Default chunking parameters, in characters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Options configures a Split call. Zero values use the defaults above.
type Options struct {
	Strategy Strategy
	Size     int
	Overlap  int
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategySentence
	}
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	// Overlap must leave room for forward progress
	if o.Overlap >= o.Size {
		o.Overlap = o.Size - 1
	}
	return o
}

// Segment is one chunk of the normalized text. Text == normalized[Start:End].
type Segment struct {
	Text  string
	Start int
	End   int

	// OverlapsPrevious is true when this segment begins inside the previous
	// segment's span.
	OverlapsPrevious bool
}

type span struct {
	start int
	end   int
}

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// Normalize collapses all whitespace runs to single spaces and trims the
// result. This is the text sentence and fixed segments index into.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalizeParagraphs splits on blank lines, normalizes each paragraph and
// rejoins them with "\n\n". Returns the joined text and per-paragraph spans.
func normalizeParagraphs(text string) (string, []span) {
	var b strings.Builder
	var spans []span
	for _, raw := range blankLineRe.Split(text, -1) {
		p := Normalize(raw)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		start := b.Len()
		b.WriteString(p)
		spans = append(spans, span{start, b.Len()})
	}
	return b.String(), spans
}

// NormalizedText returns the text that Split's offsets index into for the
// given strategy.
func NormalizedText(text string, strategy Strategy) string {
	if strategy == StrategyParagraph {
		norm, _ := normalizeParagraphs(text)
		return norm
	}
	return Normalize(text)
}

// Split chunks text according to opts. Empty or whitespace-only input
// returns no segments.
func Split(text string, opts Options) []Segment {
	opts = opts.withDefaults()

	switch opts.Strategy {
	case StrategyParagraph:
		norm, paras := normalizeParagraphs(text)
		if len(paras) == 0 {
			return nil
		}
		return chunkParagraphs(norm, paras, opts.Size, opts.Overlap)
	case StrategyFixed:
		norm := Normalize(text)
		if norm == "" {
			return nil
		}
		return chunkFixed(norm, opts.Size, opts.Overlap)
	default:
		norm := Normalize(text)
		if norm == "" {
			return nil
		}
		return chunkSentences(norm, sentenceSpans(norm), opts.Size, opts.Overlap)
	}
}

// sentenceSpans scans normalized text for sentence boundaries: a run of
// terminal punctuation followed by a space (or end of text). Trailing text
// without terminal punctuation counts as a final sentence.
func sentenceSpans(norm string) []span {
	var spans []span
	n := len(norm)
	start := 0
	i := 0
	for i < n {
		c := norm[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		j := i + 1
		for j < n && (norm[j] == '.' || norm[j] == '!' || norm[j] == '?') {
			j++
		}
		if j >= n {
			spans = append(spans, span{start, j})
			start = j
			i = j
			continue
		}
		if norm[j] == ' ' {
			spans = append(spans, span{start, j})
			start = j + 1
		}
		i = j
	}
	if start < n {
		spans = append(spans, span{start, n})
	}
	return spans
}

func chunkSentences(norm string, sents []span, size, overlap int) []Segment {
	var segs []Segment
	lastEnd := -1

	emit := func(c span) {
		segs = append(segs, Segment{
			Text:             norm[c.start:c.end],
			Start:            c.start,
			End:              c.end,
			OverlapsPrevious: lastEnd >= 0 && c.start < lastEnd,
		})
		lastEnd = c.end
	}

	cur := span{-1, -1}
	for _, s := range sents {
		if cur.start < 0 {
			cur = s
			continue
		}
		if s.end-cur.start <= size {
			cur.end = s.end
			continue
		}
		emit(cur)
		if ns := overlapStart(norm, cur, overlap); ns < cur.end {
			cur = span{ns, s.end}
		} else {
			cur = s
		}
	}
	if cur.start >= 0 {
		emit(cur)
	}
	return segs
}

// overlapStart returns the start of the word-aligned overlap tail of chunk c,
// at most overlap characters long. Returns c.end when no overlap fits on a
// word boundary.
func overlapStart(norm string, c span, overlap int) int {
	if overlap <= 0 {
		return c.end
	}
	p := c.end - overlap
	if p <= c.start {
		return c.start
	}
	if norm[p-1] != ' ' {
		// shrink the overlap to the next word boundary
		for p < c.end && norm[p] != ' ' {
			p++
		}
		if p < c.end {
			p++
		}
	}
	return p
}

func chunkParagraphs(norm string, paras []span, size, overlap int) []Segment {
	var segs []Segment
	lastEnd := -1

	emit := func(c span) {
		segs = append(segs, Segment{
			Text:             norm[c.start:c.end],
			Start:            c.start,
			End:              c.end,
			OverlapsPrevious: lastEnd >= 0 && c.start < lastEnd,
		})
		lastEnd = c.end
	}

	cur := span{-1, -1}
	first := 0 // index of cur's first paragraph
	for i, p := range paras {
		if cur.start < 0 {
			cur = p
			first = i
			continue
		}
		if p.end-cur.start <= size {
			cur.end = p.end
			continue
		}
		emit(cur)
		// Carry whole trailing paragraphs that fit the overlap budget
		j := i
		for k := i - 1; k >= first; k-- {
			if paras[i-1].end-paras[k].start > overlap {
				break
			}
			j = k
		}
		if j < i {
			cur = span{paras[j].start, p.end}
		} else {
			cur = p
		}
		first = j
	}
	if cur.start >= 0 {
		emit(cur)
	}
	return segs
}

func chunkFixed(norm string, size, overlap int) []Segment {
	var segs []Segment
	n := len(norm)
	lastEnd := -1
	pos := 0

	for pos < n {
		end := pos + size
		if end >= n {
			end = n
		} else if norm[end] != ' ' && norm[end-1] != ' ' {
			// snap back to the last space so the window never splits a word;
			// windows containing no space are cut hard
			if sp := strings.LastIndexByte(norm[pos:end], ' '); sp > 0 {
				end = pos + sp
			}
		}

		segs = append(segs, Segment{
			Text:             norm[pos:end],
			Start:            pos,
			End:              end,
			OverlapsPrevious: lastEnd >= 0 && pos < lastEnd,
		})
		lastEnd = end
		if end >= n {
			break
		}

		next := end - overlap
		if next > pos && norm[next-1] != ' ' {
			for next < end && norm[next] != ' ' {
				next++
			}
			if next < end {
				next++
			}
		}
		if next <= pos || next >= end {
			// no usable overlap; continue after the window
			next = end
			for next < n && norm[next] == ' ' {
				next++
			}
		}
		pos = next
	}
	return segs
}
