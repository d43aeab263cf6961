package lexical

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
)

const (
	Name = "lexical"

	DefaultMaxConcepts  = 18
	DefaultMaxRelations = 30

	maxBigrams       = 15
	maxUnigrams      = 10
	minBigramFreq    = 2
	minUnigramFreq   = 3
	minUnigramLength = 4
	minWordLength    = 3
	minParagraphLen  = 51
	minSentenceLen   = 21
	maxContextLen    = 300

	minDerivedStrength = 3
)

var (
	reParagraphBreak = regexp.MustCompile(`\n\s*\n`)
	reNewlines       = regexp.MustCompile(`\n+`)
	reNonWord        = regexp.MustCompile(`[^a-z0-9\s-]`)
	reNonAlnum       = regexp.MustCompile(`[^a-z0-9\s]`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// Extractor derives concepts from term frequencies and relations from terms
// sharing a paragraph. It needs no external service.
type Extractor struct{}

var _ extract.Extractor = (*Extractor)(nil)

// NewExtractor creates a lexical extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Name() string {
	return Name
}

type termCount struct {
	term  string
	count int
}

// frequencies counts terms while remembering the order of first occurrence.
type frequencies struct {
	counts map[string]int
	order  []string
}

func newFrequencies() *frequencies {
	return &frequencies{counts: make(map[string]int)}
}

func (f *frequencies) add(term string) {
	if _, ok := f.counts[term]; !ok {
		f.order = append(f.order, term)
	}
	f.counts[term]++
}

// ranked returns the terms accepted by keep, most frequent first. Ties keep
// the order of first occurrence.
func (f *frequencies) ranked(keep func(term string, count int) bool) []termCount {
	out := make([]termCount, 0)
	for _, term := range f.order {
		if keep(term, f.counts[term]) {
			out = append(out, termCount{term: term, count: f.counts[term]})
		}
	}
	slices.SortStableFunc(out, func(a, b termCount) int {
		return b.count - a.count
	})
	return out
}

func (e *Extractor) Extract(ctx context.Context, text, filename string, opts extract.Options) (*common.Graph, error) {
	maxConcepts := opts.MaxConcepts
	if maxConcepts <= 0 {
		maxConcepts = DefaultMaxConcepts
	}
	maxRelations := opts.MaxRelations
	if maxRelations <= 0 {
		maxRelations = DefaultMaxRelations
	}

	opts.Report(10, "Splitting text...")
	sentences := splitSentences(text)
	paragraphs := splitParagraphs(text)

	opts.Report(30, "Counting terms...")
	unigrams := newFrequencies()
	bigrams := newFrequencies()
	for _, para := range paragraphs {
		for _, term := range ngrams(para, 1) {
			unigrams.add(term)
		}
		for _, term := range ngrams(para, 2) {
			bigrams.add(term)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts.Report(55, "Selecting concepts...")
	normalized := normalizeText(text)
	selectedBigrams := bigrams.ranked(func(term string, count int) bool {
		return count >= minBigramFreq && strings.Contains(normalized, term)
	})
	selectedBigrams = selectedBigrams[:min(len(selectedBigrams), maxBigrams)]

	bigramWords := make(map[string]struct{})
	for _, b := range selectedBigrams {
		for _, w := range strings.Split(b.term, " ") {
			bigramWords[w] = struct{}{}
		}
	}
	selectedUnigrams := unigrams.ranked(func(term string, count int) bool {
		_, inBigram := bigramWords[term]
		return count >= minUnigramFreq && len(term) >= minUnigramLength && !inBigram
	})
	selectedUnigrams = selectedUnigrams[:min(len(selectedUnigrams), maxUnigrams)]

	terms := make([]termCount, 0, len(selectedBigrams)+len(selectedUnigrams))
	terms = append(terms, selectedBigrams...)
	terms = append(terms, selectedUnigrams...)
	terms = terms[:min(len(terms), maxConcepts)]

	if len(terms) == 0 {
		return nil, fmt.Errorf("%w in %s", extract.ErrNoConceptsFound, filename)
	}

	concepts := make([]extract.ConceptDraft, 0, len(terms))
	for _, t := range terms {
		label := titleCase(t.term)
		sentence := findContext(t.term, sentences)
		concepts = append(concepts, extract.ConceptDraft{
			Label:            label,
			Category:         string(classify(sentence)),
			Description:      fmt.Sprintf("Key concept extracted from the document with %d occurrences.", t.count),
			Context:          sentence,
			SocraticQuestion: socraticQuestion(label),
		})
	}

	opts.Report(80, "Linking concepts...")
	relations := link(terms, paragraphs, maxRelations)
	if len(concepts) > 1 && len(relations) == 0 {
		for i := 1; i < len(concepts); i++ {
			relations = append(relations, extract.RelationDraft{
				Source:   concepts[0].Label,
				Target:   concepts[i].Label,
				Label:    extract.DefaultRelationLabel,
				Strength: common.DefaultStrength,
			})
		}
	}

	opts.Report(95, "Building graph...")
	graph := extract.Finalize(extract.TitleFromFilename(filename), concepts, relations, maxConcepts, maxRelations)

	logger.Debug("[Lexical] Extracted graph", "file", filename, "paragraphs", len(paragraphs), "concepts", len(graph.Concepts), "relations", len(graph.Relations))
	return graph, nil
}

// link connects terms that appear in the same paragraph. The first
// maxRelations distinct pairs in document order are kept. Their strength
// grows with the number of paragraphs the pair shares.
func link(terms []termCount, paragraphs []string, maxRelations int) []extract.RelationDraft {
	type pair struct{ a, b int }
	counts := make(map[pair]int)
	order := make([]pair, 0)

	for _, para := range paragraphs {
		lower := strings.ToLower(para)
		present := make([]int, 0, len(terms))
		for i, t := range terms {
			if strings.Contains(lower, t.term) {
				present = append(present, i)
			}
		}
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				key := pair{present[i], present[j]}
				if _, ok := counts[key]; ok {
					counts[key]++
					continue
				}
				if len(order) < maxRelations {
					order = append(order, key)
					counts[key] = 1
				}
			}
		}
	}

	maxCount := 0
	for _, key := range order {
		maxCount = max(maxCount, counts[key])
	}

	relations := make([]extract.RelationDraft, 0, len(order))
	for _, key := range order {
		relations = append(relations, extract.RelationDraft{
			Source:   titleCase(terms[key.a].term),
			Target:   titleCase(terms[key.b].term),
			Label:    extract.DefaultRelationLabel,
			Strength: strengthFromCount(counts[key], maxCount),
		})
	}
	return relations
}

// strengthFromCount maps a co-occurrence count linearly onto [3,10]. When no
// pair occurs more than once every relation gets the default strength.
func strengthFromCount(count, maxCount int) int {
	if maxCount <= 1 {
		return common.DefaultStrength
	}
	scaled := float64(count-1) / float64(maxCount-1) * float64(common.MaxStrength-minDerivedStrength)
	return minDerivedStrength + int(math.Round(scaled))
}

func splitParagraphs(text string) []string {
	out := make([]string, 0)
	for _, p := range reParagraphBreak.Split(text, -1) {
		if len(strings.TrimSpace(p)) >= minParagraphLen {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences breaks text after '.', '!' or '?' when followed by
// whitespace.
func splitSentences(text string) []string {
	text = reNewlines.ReplaceAllString(text, " ")
	runes := []rune(text)

	out := make([]string, 0)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = appendSentence(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = appendSentence(out, string(runes[start:]))
	}
	return out
}

func appendSentence(out []string, s string) []string {
	if len([]rune(strings.TrimSpace(s))) >= minSentenceLen {
		out = append(out, s)
	}
	return out
}

func ngrams(text string, n int) []string {
	text = reNonWord.ReplaceAllString(strings.ToLower(text), "")

	words := make([]string, 0)
	for _, w := range strings.Fields(text) {
		if len(w) < minWordLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	out := make([]string, 0, max(len(words)-n+1, 0))
	for i := 0; i+n <= len(words); i++ {
		out = append(out, strings.Join(words[i:i+n], " "))
	}
	return out
}

func normalizeText(text string) string {
	text = reNonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	return reSpaces.ReplaceAllString(text, " ")
}

func titleCase(term string) string {
	words := strings.Split(term, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// findContext returns the first sentence mentioning term, falling back to
// the first sentence of the document.
func findContext(term string, sentences []string) string {
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), term) {
			return truncate(strings.TrimSpace(s), maxContextLen)
		}
	}
	if len(sentences) == 0 {
		return ""
	}
	return truncate(strings.TrimSpace(sentences[0]), maxContextLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func classify(context string) common.Category {
	lower := strings.ToLower(context)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return common.CategoryCoreConcept
}

func socraticQuestion(label string) string {
	sum := 0
	for _, r := range label {
		sum += int(r)
	}
	return fmt.Sprintf(questionTemplates[sum%len(questionTemplates)], label)
}
