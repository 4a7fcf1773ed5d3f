package service

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

var (
	sentenceBoundary  = regexp.MustCompile(`[.!?]+`)
	paragraphBoundary = regexp.MustCompile(`\n\s*\n`)
	silentSuffix      = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	vowelRun          = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// CalculateMetrics derives text statistics for a submission. It is pure and
// synchronous; nothing here touches the network.
func CalculateMetrics(assignment models.Assignment, submission models.Submission) models.Metrics {
	text := submission.SubmissionText
	words := strings.Fields(text)
	sentences := nonEmptySegments(sentenceBoundary.Split(text, -1))
	paragraphs := nonEmptySegments(paragraphBoundary.Split(text, -1))

	sentenceCount := len(sentences)
	divisor := sentenceCount
	if divisor < 1 {
		divisor = 1
	}

	return models.Metrics{
		WordCount:               len(words),
		CharacterCount:          utf8.RuneCountInString(text),
		SentenceCount:           sentenceCount,
		ParagraphCount:          len(paragraphs),
		AverageWordsPerSentence: int(math.Round(float64(len(words)) / float64(divisor))),
		ReadabilityScore:        ReadabilityScore(text),
		KeywordMatches:          KeywordMatches(assignment.Keywords, text),
	}
}

// ReadabilityScore approximates Flesch Reading Ease, clamped to [0, 100].
// Empty text scores 0.
func ReadabilityScore(text string) int {
	words := strings.Fields(text)
	sentences := nonEmptySegments(sentenceBoundary.Split(text, -1))
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	avgWordsPerSentence := float64(len(words)) / float64(len(sentences))
	avgSyllablesPerWord := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*avgWordsPerSentence - 84.6*avgSyllablesPerWord
	score = math.Max(0, math.Min(100, math.Round(score)))
	return int(score)
}

// countSyllables is a heuristic: strip a trailing silent-e pattern and a
// leading y, then count maximal runs of one or two vowel-like characters.
// Words of three letters or fewer count as one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}

	word = silentSuffix.ReplaceAllString(word, "")
	word = strings.TrimPrefix(word, "y")

	runs := vowelRun.FindAllString(word, -1)
	if len(runs) == 0 {
		return 1
	}
	return len(runs)
}

// KeywordMatches counts the keywords that occur, case-insensitively, as a
// substring anywhere in the text.
func KeywordMatches(keywords []string, text string) int {
	lower := strings.ToLower(text)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matches++
		}
	}
	return matches
}

func nonEmptySegments(segments []string) []string {
	kept := segments[:0:0]
	for _, segment := range segments {
		if strings.TrimSpace(segment) != "" {
			kept = append(kept, segment)
		}
	}
	return kept
}
