package semantic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ilyakh/lectograph/internal/model"
)

// relationOrder fixes the lexicon iteration order. Marker detection and
// importance tie-breaking depend on it being deterministic.
var relationOrder = []model.RelationType{
	model.RelationContrast,
	model.RelationAddition,
	model.RelationCausality,
	model.RelationReferenceBack,
	model.RelationSummary,
	model.RelationExample,
}

// Lexicon maps relation types to their discourse-marker trigger words. The
// default lexicon is Chinese; it is configuration data, not logic, and can be
// extended per locale without touching the splitting algorithm.
type Lexicon struct {
	entries map[model.RelationType][]string
}

// DefaultLexicon returns the built-in Chinese marker lexicon
func DefaultLexicon() *Lexicon {
	return &Lexicon{entries: map[model.RelationType][]string{
		model.RelationContrast: {
			"但是", "然而", "不过", "可是", "反过来说", "相反", "相对而言", "与此相反",
		},
		model.RelationAddition: {
			"而且", "并且", "还有", "另外", "此外", "再者", "同时", "以及",
		},
		model.RelationCausality: {
			"所以", "因此", "因为", "由于", "导致", "结果", "因而", "从而",
		},
		model.RelationReferenceBack: {
			"回过头来讲", "前面说到", "刚才提到", "之前讲过", "如前所述", "正如我说的",
		},
		model.RelationSummary: {
			"总之", "综上所述", "总的来说", "概括来说", "归纳起来", "简而言之",
		},
		model.RelationExample: {
			"比如", "例如", "譬如", "比方说", "举例来说", "就像",
		},
	}}
}

// Merge appends custom markers into the existing per-type lists. Relation
// types not present in the lexicon are ignored.
func (l *Lexicon) Merge(custom map[model.RelationType][]string) {
	for relType, words := range custom {
		if _, known := l.entries[relType]; !known {
			continue
		}
		l.entries[relType] = append(l.entries[relType], words...)
	}
}

// Types returns the relation types in lexicon iteration order
func (l *Lexicon) Types() []model.RelationType {
	types := make([]model.RelationType, 0, len(relationOrder))
	for _, t := range relationOrder {
		if _, ok := l.entries[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Markers returns the trigger words for a relation type
func (l *Lexicon) Markers(t model.RelationType) []string {
	return l.entries[t]
}

// TypeOf returns the first relation type in lexicon iteration order whose
// marker list contains word.
func (l *Lexicon) TypeOf(word string) (model.RelationType, bool) {
	for _, t := range relationOrder {
		for _, w := range l.entries[t] {
			if w == word {
				return t, true
			}
		}
	}
	return model.RelationUnknown, false
}

// LoadOverride reads a YAML file mapping relation type names to additional
// marker words, e.g.
//
//	CONTRAST: ["偏偏"]
//	SUMMARY: ["说到底"]
func LoadOverride(path string) (map[model.RelationType][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon override: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lexicon override: %w", err)
	}

	custom := make(map[model.RelationType][]string, len(raw))
	for name, words := range raw {
		custom[model.RelationType(name)] = words
	}
	return custom, nil
}
