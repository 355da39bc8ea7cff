package semantic

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ilyakh/lectograph/internal/model"
)

// relationConfidence is assigned to every marker-derived relation
const relationConfidence = 0.8

// Marker is one detected (word, relation type) pair
type Marker struct {
	Word string
	Type model.RelationType
}

// Analyzer refines transcribed segments: it re-splits them at discourse
// markers, infers adjacency relations and scores importance.
type Analyzer struct {
	lexicon *Lexicon
}

// NewAnalyzer creates an analyzer. A nil lexicon uses the built-in default.
func NewAnalyzer(lexicon *Lexicon) *Analyzer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Analyzer{lexicon: lexicon}
}

// DetectMarkers tests every configured marker word for case-sensitive
// substring membership in text, across all relation types, in lexicon
// iteration order. Matches are not deduplicated by position.
func (a *Analyzer) DetectMarkers(text string) []Marker {
	var found []Marker
	for _, relType := range a.lexicon.Types() {
		for _, word := range a.lexicon.Markers(relType) {
			if strings.Contains(text, word) {
				found = append(found, Marker{Word: word, Type: relType})
			}
		}
	}
	return found
}

// occurrence is one marker hit at a concrete rune offset
type occurrence struct {
	offset int // rune offset into the segment text
	word   string
	typ    model.RelationType
}

// SplitByMarkers re-splits a segment at its marker occurrences. Sub-segment
// timestamps are interpolated from the parent's interval proportionally to
// character position, assuming a uniform speaking rate across the segment.
// A segment with no boundary-respecting occurrences is returned unchanged.
func (a *Analyzer) SplitByMarkers(seg *model.Segment) []*model.Segment {
	markers := a.DetectMarkers(seg.Text)
	if len(markers) == 0 {
		return []*model.Segment{seg}
	}

	runes := []rune(seg.Text)

	var occs []occurrence
	for _, m := range markers {
		for _, off := range findOccurrences(runes, []rune(m.Word)) {
			occs = append(occs, occurrence{offset: off, word: m.Word, typ: m.Type})
		}
	}
	if len(occs) == 0 {
		return []*model.Segment{seg}
	}

	sort.SliceStable(occs, func(i, j int) bool { return occs[i].offset < occs[j].offset })

	total := len(runes)
	duration := seg.Duration()

	var subs []*model.Segment
	lastPos := 0

	for i, occ := range occs {
		subText := strings.TrimSpace(string(runes[lastPos:occ.offset]))
		if subText != "" {
			start := seg.StartTime + float64(lastPos)/float64(total)*duration
			end := seg.StartTime + float64(occ.offset)/float64(total)*duration

			sub := model.NewSegment(fmt.Sprintf("%s_sub%d", seg.ID, i), start, end, seg.AudioPath)
			sub.Text = subText
			sub.Confidence = seg.Confidence
			subs = append(subs, sub)
		}
		lastPos = occ.offset
	}

	// Trailing text after the last occurrence; it carries the markers of
	// every occurrence at or beyond its start offset.
	if trailing := strings.TrimSpace(string(runes[lastPos:])); trailing != "" {
		start := seg.StartTime + float64(lastPos)/float64(total)*duration

		sub := model.NewSegment(fmt.Sprintf("%s_sub%d", seg.ID, len(occs)), start, seg.EndTime, seg.AudioPath)
		sub.Text = trailing
		sub.Confidence = seg.Confidence
		for _, occ := range occs {
			if occ.offset >= lastPos {
				sub.Markers = append(sub.Markers, occ.word)
			}
		}
		subs = append(subs, sub)
	}

	if len(subs) == 0 {
		return []*model.Segment{seg}
	}
	return subs
}

// findOccurrences returns the rune offsets of every boundary-respecting
// occurrence of word in text. Boundary matching prevents splitting inside a
// longer alphabetic token that merely contains the word; CJK runs have no
// token separators, so Han-adjacent occurrences always qualify.
func findOccurrences(text, word []rune) []int {
	if len(word) == 0 || len(word) > len(text) {
		return nil
	}

	var offsets []int
	for i := 0; i+len(word) <= len(text); i++ {
		if !runesEqual(text[i:i+len(word)], word) {
			continue
		}
		if i > 0 && wordJoin(text[i-1], word[0]) {
			continue
		}
		if end := i + len(word); end < len(text) && wordJoin(word[len(word)-1], text[end]) {
			continue
		}
		offsets = append(offsets, i)
	}
	return offsets
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// wordJoin reports whether two adjacent runes belong to the same alphabetic
// token. Han runes never join.
func wordJoin(a, b rune) bool {
	if unicode.Is(unicode.Han, a) || unicode.Is(unicode.Han, b) {
		return false
	}
	return (unicode.IsLetter(a) || unicode.IsDigit(a)) && (unicode.IsLetter(b) || unicode.IsDigit(b))
}

// AnalyzeRelations re-detects each segment's markers, stores the matched
// words on the segment, and creates one relation per (marker, type) pair
// from the immediately preceding segment to the marked one.
func (a *Analyzer) AnalyzeRelations(segments []*model.Segment) []*model.Segment {
	for i, seg := range segments {
		markers := a.DetectMarkers(seg.Text)

		seg.Markers = make([]string, 0, len(markers))
		for _, m := range markers {
			seg.Markers = append(seg.Markers, m.Word)
		}

		if i == 0 || len(markers) == 0 {
			continue
		}

		prev := segments[i-1]
		for _, m := range markers {
			seg.Relations = append(seg.Relations, model.ParagraphRelation{
				SourceID:    prev.ID,
				TargetID:    seg.ID,
				Type:        m.Type,
				MarkerWords: []string{m.Word},
				Confidence:  relationConfidence,
				Description: fmt.Sprintf("通过标记词'%s'识别的%s关系", m.Word, m.Type.Label()),
			})
		}
	}
	return segments
}

// CalculateImportance scores one segment against the full, relation-annotated
// list. The result is clamped to [0, 1].
func (a *Analyzer) CalculateImportance(seg *model.Segment, all []*model.Segment) float64 {
	score := 0.5

	// Marker bonus: a summary marker outweighs a causality marker; only one
	// bonus applies.
	hasSummary, hasCausality := false, false
	for _, word := range seg.Markers {
		if t, ok := a.lexicon.TypeOf(word); ok {
			switch t {
			case model.RelationSummary:
				hasSummary = true
			case model.RelationCausality:
				hasCausality = true
			}
		}
	}
	if hasSummary {
		score += 0.3
	} else if hasCausality {
		score += 0.2
	}

	// Relation incidence across the whole list, as source or target
	refCount := 0
	for _, s := range all {
		for _, r := range s.Relations {
			if r.TargetID == seg.ID || r.SourceID == seg.ID {
				refCount++
			}
		}
	}
	bonus := 0.1 * float64(refCount)
	if bonus > 0.3 {
		bonus = 0.3
	}
	score += bonus

	if utf8.RuneCountInString(seg.Text) > 100 {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}

// Process runs the full semantic pass: re-split every segment at marker
// boundaries (flattened in original order), analyze relations over the
// flattened list, then score importance against the same list.
func (a *Analyzer) Process(segments []*model.Segment) []*model.Segment {
	var refined []*model.Segment
	for _, seg := range segments {
		refined = append(refined, a.SplitByMarkers(seg)...)
	}

	refined = a.AnalyzeRelations(refined)

	for _, seg := range refined {
		seg.ImportanceScore = a.CalculateImportance(seg, refined)
	}
	return refined
}
