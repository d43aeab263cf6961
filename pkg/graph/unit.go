package graph

import (
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"
)

// processUnit is a section of the document small enough for a single
// extraction request. start and end index the sentences it covers.
type processUnit struct {
	id    string
	start int
	end   int
	text  string
}

var tableDelimRe = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)+\|?\s*$`)

// transformIntoUnits groups consecutive sentences into units of at most
// maxTokens tokens. A single sentence longer than maxTokens becomes its own
// unit.
func transformIntoUnits(text string, encoder string, maxTokens int) ([]processUnit, error) {
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	sentences := splitIntoSentences(strings.TrimSpace(text))
	if len(sentences) == 0 {
		return nil, nil
	}

	var units []processUnit
	chunkStart := -1
	chunkEnd := -1

	join := func(from, to int) string {
		return strings.TrimSpace(strings.Join(sentences[from:to], " "))
	}

	flush := func() error {
		if chunkStart < 0 || chunkEnd <= chunkStart {
			return nil
		}
		uID, err := gonanoid.New()
		if err != nil {
			return err
		}
		units = append(units, processUnit{
			id:    uID,
			start: chunkStart,
			end:   chunkEnd,
			text:  join(chunkStart, chunkEnd),
		})
		chunkStart = -1
		chunkEnd = -1
		return nil
	}

	for i := range sentences {
		if chunkStart < 0 {
			chunkStart = i
			chunkEnd = i + 1
			continue
		}

		if len(enc.Encode(join(chunkStart, i+1), nil, nil)) <= maxTokens {
			chunkEnd = i + 1
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		chunkStart = i
		chunkEnd = i + 1
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return units, nil
}

// splitIntoSentences splits text into sentences. Blank lines end a sentence
// and markdown tables are kept together as one sentence.
func splitIntoSentences(text string) []string {
	lines := strings.Split(text, "\n")
	var sentences []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	appendLine := func(line string) {
		for _, sentence := range splitLineIntoSentences(line) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)
			if endsSentence(sentence) {
				flush()
			}
		}
	}

	isTableRow := func(line string) bool {
		return strings.Contains(strings.TrimSpace(line), "|")
	}

	inTable := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case inTable:
			if trimmed != "" && isTableRow(line) {
				current.WriteString("\n")
				current.WriteString(line)
				continue
			}
			inTable = false
			flush()
			if trimmed != "" {
				appendLine(trimmed)
			}
		case isTableRow(line) && i+1 < len(lines) && tableDelimRe.MatchString(strings.TrimSpace(lines[i+1])):
			flush()
			inTable = true
			current.WriteString(line)
		case isTableRow(line):
			flush()
			sentences = append(sentences, trimmed)
		case trimmed == "":
			flush()
		default:
			appendLine(trimmed)
		}
	}
	flush()

	result := sentences[:0]
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// splitLineIntoSentences splits a single line after sentence punctuation.
// Numbered list markers like "1. " do not end a sentence.
func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if !isTerminator(line[i]) {
			continue
		}
		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && isTerminator(line[j]) {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && strings.IndexByte(`"')]}`, line[j]) >= 0 {
			current.WriteByte(line[j])
			j++
		}

		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		sentences = append(sentences, remaining)
	}
	return sentences
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
