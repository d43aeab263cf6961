package grade

import (
	"context"
	"math"
	"strings"
	"unicode"
)

const (
	minAnswerTokens = 3
	minScore        = 5
	maxScore        = 100

	keyTermWeight     = 40
	bigramWeight      = 20
	labelWeight       = 10
	lengthWeight      = 15
	explanationWeight = 15

	// answers of this many tokens get the full length score
	fullLengthTokens = 20
	// share of the context bigrams an answer has to reuse for the full overlap score
	bigramTarget = 0.3
)

const briefFeedback = "Your answer is too brief. Try to elaborate more on the concept and its significance."

var explanationMarkers = []string{
	"because", "means", "refers to", "involves", "allows", "enables",
	"for example", "such as", "in other words", "therefore", "this is",
}

var gradeStopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "can", "it", "its", "this", "that", "these",
	"those", "not", "no", "all", "also", "any", "some", "such", "than",
	"too", "very", "just", "about", "more", "most", "other", "each",
	"how", "what", "which", "who", "when", "where", "there", "here",
	"then", "so", "if", "as", "into", "through", "during", "before",
	"after", "above", "below", "between", "out", "up", "down", "over",
	"under", "again", "further", "once", "both", "few", "many", "much",
	"own", "same", "only", "even", "back", "well", "use", "used",
	"using", "make", "made", "like", "get", "got", "way",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LexicalScorer grades answers by their overlap with the concept's source
// context. It needs no model and is deterministic.
type LexicalScorer struct{}

var _ Scorer = LexicalScorer{}

func NewLexicalScorer() LexicalScorer {
	return LexicalScorer{}
}

func (LexicalScorer) Score(ctx context.Context, sub Submission) (Result, error) {
	if err := sub.Validate(); err != nil {
		return Result{}, err
	}
	score, feedback := lexicalScore(strings.TrimSpace(sub.Answer), sub.Context, sub.ConceptLabel, sub.Question)
	return newResult(score, feedback), nil
}

func lexicalScore(answer, source, label, question string) (int, string) {
	answerTokens := tokenize(answer)
	if len(answerTokens) < minAnswerTokens {
		return minScore, briefFeedback
	}

	terms := keyTerms(source)
	for term := range keyTerms(question) {
		terms[term] = struct{}{}
	}
	for term := range keyTerms(label) {
		terms[term] = struct{}{}
	}

	coverage := 0.0
	if len(terms) > 0 {
		answerTerms := keyTerms(answer)
		hits := 0
		for term := range terms {
			if _, ok := answerTerms[term]; ok {
				hits++
			}
		}
		coverage = float64(hits) / float64(len(terms))
	}

	lowerAnswer := strings.ToLower(answer)

	raw := coverage*keyTermWeight +
		bigramOverlap(answerTokens, tokenize(source))*bigramWeight +
		math.Min(float64(len(answerTokens))/fullLengthTokens, 1)*lengthWeight
	if strings.Contains(lowerAnswer, strings.ToLower(label)) {
		raw += labelWeight
	}
	for _, marker := range explanationMarkers {
		if strings.Contains(lowerAnswer, marker) {
			raw += explanationWeight
			break
		}
	}

	score := int(math.Round(math.Max(minScore, math.Min(maxScore, raw))))
	return score, FeedbackFor(score)
}

// bigramOverlap counts answer bigrams that also occur in the context.
func bigramOverlap(answer, source []string) float64 {
	bigrams := make(map[string]struct{})
	for i := 0; i+1 < len(source); i++ {
		bigrams[source[i]+" "+source[i+1]] = struct{}{}
	}
	if len(bigrams) == 0 {
		return 0
	}

	hits := 0
	for i := 0; i+1 < len(answer); i++ {
		if _, ok := bigrams[answer[i]+" "+answer[i+1]]; ok {
			hits++
		}
	}
	return math.Min(float64(hits)/(float64(len(bigrams))*bigramTarget), 1)
}

// tokenize lowercases text, turns everything but ASCII letters and digits
// into spaces and keeps words longer than two characters.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.IsSpace(r):
			return r
		}
		return ' '
	}, strings.ToLower(text))

	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) > 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func keyTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if _, stop := gradeStopWords[w]; stop || len(w) <= 3 {
			continue
		}
		terms[w] = struct{}{}
	}
	return terms
}
