package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextStats summarizes a body of text
type TextStats struct {
	Words             int `json:"word_count" yaml:"word_count"`
	Characters        int `json:"char_count" yaml:"char_count"`
	Lines             int `json:"line_count" yaml:"line_count"`
	Paragraphs        int `json:"paragraph_count" yaml:"paragraph_count"`
	Sentences         int `json:"sentence_count" yaml:"sentence_count"`
	AvgWordLength     int `json:"avg_word_length" yaml:"avg_word_length"`
	AvgSentenceLength int `json:"avg_sentence_length" yaml:"avg_sentence_length"`
}

// Stats analyzes the current content
func (d *Document) Stats() TextStats {
	return AnalyzeText(d.content)
}

// AnalyzeText counts words, characters, lines, paragraphs and sentences.
// Averages are integer divisions: letters per word and words per sentence.
func AnalyzeText(text string) TextStats {
	if text == "" {
		return TextStats{}
	}

	words := strings.Fields(text)
	stats := TextStats{
		Words:      len(words),
		Characters: utf8.RuneCountInString(text),
	}

	lines := splitLines(text)
	stats.Lines = len(lines)

	inParagraph := false
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			if !inParagraph {
				stats.Paragraphs++
				inParagraph = true
			}
		} else {
			inParagraph = false
		}
	}

	stats.Sentences = countSentences(text)

	if stats.Words > 0 {
		letters := 0
		for _, w := range words {
			letters += utf8.RuneCountInString(w)
		}
		stats.AvgWordLength = letters / stats.Words
	}
	if stats.Sentences > 0 {
		stats.AvgSentenceLength = stats.Words / stats.Sentences
	}
	return stats
}

// splitLines splits on \n, \r\n and \r without producing a trailing empty line
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// countSentences counts the non-blank segments left after splitting on runs
// of terminal punctuation that are followed by whitespace or end of text
func countSentences(text string) int {
	runes := []rune(text)
	count := 0
	start := 0
	for i := 0; i < len(runes); {
		if !isTerminal(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && isTerminal(runes[j]) {
			j++
		}
		if j == len(runes) || unicode.IsSpace(runes[j]) {
			if strings.TrimSpace(string(runes[start:i])) != "" {
				count++
			}
			start = j
		}
		i = j
	}
	if strings.TrimSpace(string(runes[start:])) != "" {
		count++
	}
	return count
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
