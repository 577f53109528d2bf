// Package clean normalizes scraped text for embedding quality: entity
// unescaping, whitespace collapse, boilerplate and near-duplicate removal.
package clean

import (
	"html"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	emailRe      = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	urlRe        = regexp.MustCompile(`http[s]?://[^\s]+`)
	// Keep currency symbols: amount extraction downstream depends on "$".
	specialCharRe = regexp.MustCompile(`[^\w\s.,!?;:'"$-]`)
	// Insert a space after sentence punctuation only when followed by a
	// non-space, non-digit rune, so figures like 45,000 stay intact.
	punctSpacingRe = regexp.MustCompile(`([.,!?;:])([^\s\d])`)
	navTrailerRe   = regexp.MustCompile(`(?:Learn More About|See All News).*$`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)

	sentenceSplitRe = regexp.MustCompile(`([.!?])\s+`)

	boilerplateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Learn more about`),
		regexp.MustCompile(`(?i)Click here`),
		regexp.MustCompile(`(?i)Read more`),
		regexp.MustCompile(`(?i)Contact us`),
		regexp.MustCompile(`(?i)Please note`),
		regexp.MustCompile(`(?i)You can access`),
		regexp.MustCompile(`(?i)For more information`),
	}
)

const (
	minChunkLength = 20
	maxChunkLength = 800
	// A new chunk is dropped when its token overlap with any previously
	// retained chunk exceeds this ratio (first-seen wins).
	nearDupThreshold = 0.8
)

// Clean normalizes a block of text: HTML entities, whitespace, quote styles,
// stripped emails/URLs, punctuation spacing, trailing navigation labels.
func Clean(text string) string {
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = quoteReplacer.Replace(text)
	text = emailRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = specialCharRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctSpacingRe.ReplaceAllString(text, "$1 $2")
	text = navTrailerRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// IsBoilerplate reports whether text looks like navigation/footer filler.
func IsBoilerplate(text string) bool {
	for _, re := range boilerplateRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// SplitLongChunks splits text exceeding maxLen at sentence boundaries.
// Text at or under the limit is returned as a single chunk.
func SplitLongChunks(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = maxChunkLength
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	sentences := splitSentences(text)
	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		if currentLen+len(sentence) <= maxLen {
			current = append(current, sentence)
			currentLen += len(sentence)
			continue
		}
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{sentence}
		currentLen = len(sentence)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences splits on sentence-ending punctuation followed by space,
// keeping the punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceSplitRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Chunks cleans and filters a list of text chunks: drops short and
// boilerplate entries, splits overlong chunks, and suppresses exact and
// near duplicates. Paragraph breaks within a chunk survive; each paragraph
// is normalized separately. Near-duplicate suppression rejects a chunk when
// its token overlap with ANY previously retained chunk exceeds the
// threshold; the first-seen chunk always wins.
func Chunks(chunks []string) []string {
	var cleaned []string
	seen := make(map[string]bool)
	var retained [][]string // token sets of retained chunks, in order

	for _, chunk := range chunks {
		if len(strings.TrimSpace(chunk)) < minChunkLength {
			continue
		}
		if IsBoilerplate(chunk) {
			continue
		}

		cleanedChunk := cleanParagraphs(chunk)
		if len(cleanedChunk) < minChunkLength {
			continue
		}
		if seen[cleanedChunk] {
			continue
		}

		for _, split := range SplitLongChunks(cleanedChunk, maxChunkLength) {
			tokens := tokenSet(split)
			if isNearDuplicate(tokens, retained) {
				continue
			}
			seen[split] = true
			retained = append(retained, tokens)
			cleaned = append(cleaned, split)
		}
	}
	return cleaned
}

// cleanParagraphs normalizes each paragraph of a chunk separately, keeping
// the paragraph separators that Clean would collapse.
func cleanParagraphs(text string) string {
	parts := strings.Split(text, "\n\n")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := Clean(p); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, "\n\n")
}

func tokenSet(text string) []string {
	uniq := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		uniq[tok] = true
	}
	tokens := make([]string, 0, len(uniq))
	for tok := range uniq {
		tokens = append(tokens, tok)
	}
	return tokens
}

func isNearDuplicate(tokens []string, retained [][]string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, prev := range retained {
		prevSet := make(map[string]bool, len(prev))
		for _, tok := range prev {
			prevSet[tok] = true
		}
		overlap := 0
		for _, tok := range tokens {
			if prevSet[tok] {
				overlap++
			}
		}
		if float64(overlap)/float64(len(tokens)) > nearDupThreshold {
			return true
		}
	}
	return false
}
