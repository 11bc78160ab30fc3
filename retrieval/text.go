package retrieval

import "strings"

// NormalizeWhitespace collapses every whitespace run into a single space and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ChunkParagraphs splits text on blank-line boundaries into trimmed,
// non-empty paragraphs. It never returns an empty slice: a text without any
// non-empty paragraph yields the original text as its single chunk.
func ChunkParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c != "" {
			chunks = append(chunks, c)
		}
	}

	if len(chunks) == 0 {
		return []string{text}
	}

	return chunks
}

// indexableText builds the text a document is indexed under. The normalized
// title is repeated so title terms carry extra weight in the vector space.
func indexableText(title, body string) string {
	title = NormalizeWhitespace(title)
	return title + "\n" + title + "\n" + body
}
