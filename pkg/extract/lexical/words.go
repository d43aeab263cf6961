package lexical

import "github.com/OFFIS-RIT/synthetix/backend/pkg/common"

var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "shall", "can", "need", "dare",
	"ought", "used", "it", "its", "this", "that", "these", "those",
	"i", "me", "my", "we", "our", "you", "your", "he", "him", "his",
	"she", "her", "they", "them", "their", "what", "which", "who",
	"when", "where", "how", "not", "no", "nor", "as", "if", "then",
	"than", "too", "very", "just", "about", "above", "after", "again",
	"all", "also", "am", "any", "because", "before", "between", "both",
	"each", "few", "more", "most", "other", "over", "own", "same",
	"so", "some", "such", "up", "out", "only", "into", "through",
	"during", "here", "there", "once", "further", "while", "however",
	"although", "though", "since", "until", "unless", "whether",
	"either", "neither", "yet", "still", "already", "often", "never",
	"always", "sometimes", "usually", "many", "much", "well",
	"even", "back", "get", "go", "make", "like", "see",
	"know", "take", "come", "think", "look", "want", "give", "use",
	"find", "tell", "ask", "work", "seem", "feel", "try", "leave",
	"call", "one", "two", "three", "new", "first", "last", "long",
	"great", "little", "right", "old", "big", "high", "small",
	"large", "good", "bad", "different", "important", "said",
	"must", "now", "people", "way", "time", "part",
	"made", "set", "per", "end", "put", "say", "show", "let",
	"include", "includes", "including", "based", "using", "common",
	"type", "types", "involves", "requires", "allows", "performs",
	"known", "called", "given", "without",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// categoryKeywords is checked in order, the first category with a keyword
// in the context sentence wins.
var categoryKeywords = []struct {
	category common.Category
	keywords []string
}{
	{common.CategoryCoreConcept, []string{"definition", "fundamental", "principle", "theory", "concept", "framework", "key", "refers"}},
	{common.CategoryProcess, []string{"process", "method", "step", "procedure", "algorithm", "workflow", "phase", "technique"}},
	{common.CategoryEntity, []string{"system", "component", "structure", "model", "architecture", "module", "layer", "network"}},
	{common.CategoryProperty, []string{"property", "attribute", "characteristic", "feature", "quality", "aspect", "metric"}},
	{common.CategoryExample, []string{"example", "case", "instance", "illustration", "scenario", "application", "such as"}},
}

var questionTemplates = []string{
	"What would happen if %s didn't exist in this context?",
	"How does %s relate to the broader system described here?",
	"Can you explain %s in your own words without looking at the source?",
	"What assumptions does the concept of %s rely on?",
	"If you had to teach %s to someone, what analogy would you use?",
	"What are the boundary conditions or edge cases of %s?",
	"How might %s evolve or change in the future?",
	"What's the most counterintuitive aspect of %s?",
}
