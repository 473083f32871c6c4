package services

import (
	"regexp"
	"sort"
	"strings"
)

// Topic extraction turns parsed document text into candidate query
// subjects: headings first, then frequent content words, then numeric
// patterns. Used by the synthesizer when grounding is enabled.

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,4}\s+(.+)$`)
	numberPattern  = regexp.MustCompile(`\b\d[\d,.]*\s*(%|percent|USD|EUR|CNY|元)?\b`)
	wordPattern    = regexp.MustCompile(`[\p{L}][\p{L}\-]{3,}`)
)

// stopWords are common words excluded from frequency-based topics.
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "their": {}, "there": {},
	"which": {}, "about": {}, "after": {}, "before": {}, "other": {}, "these": {},
	"those": {}, "into": {}, "over": {}, "under": {}, "between": {}, "such": {},
	"than": {}, "then": {}, "when": {}, "where": {}, "while": {}, "each": {},
	"more": {}, "most": {}, "some": {}, "only": {}, "also": {}, "very": {},
	"shall": {}, "must": {}, "upon": {}, "within": {}, "without": {},
}

// maxTopics bounds the candidate list per document.
const maxTopics = 8

// extractTopics returns candidate topics in preference order.
// An empty result means grounding must fall back to template slots.
func extractTopics(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var topics []string
	seen := make(map[string]struct{})

	add := func(topic string) {
		topic = strings.TrimSpace(topic)
		if topic == "" || len(topics) >= maxTopics {
			return
		}
		key := strings.ToLower(topic)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		topics = append(topics, topic)
	}

	// Headings are the strongest signal of what a document is about.
	for _, match := range headingPattern.FindAllStringSubmatch(text, maxTopics) {
		add(match[1])
	}

	// High-frequency content words.
	for _, word := range frequentWords(text, maxTopics) {
		add(word)
	}

	// Numeric patterns anchor questions about figures.
	for _, num := range numberPattern.FindAllString(text, 3) {
		if len(strings.TrimSpace(num)) >= 2 {
			add(strings.TrimSpace(num))
		}
	}

	return topics
}

// frequentWords returns the most repeated content words, minimum two
// occurrences, ties broken alphabetically for determinism.
func frequentWords(text string, limit int) []string {
	counts := make(map[string]int)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		counts[word]++
	}

	type wc struct {
		word  string
		count int
	}
	var words []wc
	for word, count := range counts {
		if count >= 2 {
			words = append(words, wc{word, count})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].count != words[j].count {
			return words[i].count > words[j].count
		}
		return words[i].word < words[j].word
	})

	var result []string
	for i, w := range words {
		if i >= limit {
			break
		}
		result = append(result, w.word)
	}
	return result
}
