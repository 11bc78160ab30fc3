package retrieval

import (
	"sort"
	"strings"
)

// Document is the read-only view of a stored document the retriever works
// with. Text is the best available text, extracted or manual.
type Document struct {
	ID    int64
	Title string
	Text  string
}

// Snippet is a scored paragraph-level excerpt of a ranked document.
type Snippet struct {
	Text  string
	Score float64
}

// RankedDocument is one retrieval result: a document, its cosine relevance
// against the question and its best snippets, highest first.
type RankedDocument struct {
	ID       int64
	Title    string
	Score    float64
	Snippets []Snippet
}

// Options tune a retrieval run. Zero values fall back to the defaults.
type Options struct {
	TopK            int
	SnippetsPerDoc  int
	MaxSnippetChars int
	MaxFeatures     int
}

const (
	DefaultTopK            = 5
	DefaultSnippetsPerDoc  = 2
	DefaultMaxSnippetChars = 450
	DefaultMaxFeatures     = 50000
)

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SnippetsPerDoc <= 0 {
		o.SnippetsPerDoc = DefaultSnippetsPerDoc
	}
	if o.MaxSnippetChars <= 0 {
		o.MaxSnippetChars = DefaultMaxSnippetChars
	}
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = DefaultMaxFeatures
	}
	return o
}

// Retrieve ranks docs against question and picks the best snippets inside the
// winners. The whole vector space is fitted from scratch on the given corpus
// snapshot and discarded when Retrieve returns.
//
// An empty question or corpus yields nil, as does a corpus with no usable
// vocabulary; none of these are errors.
func Retrieve(question string, docs []Document, opts Options) []RankedDocument {
	question = strings.TrimSpace(question)
	if question == "" || len(docs) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = indexableText(d.Title, d.Text)
	}

	space := Fit(corpus, opts.MaxFeatures)
	if space.Dimension() == 0 {
		return nil
	}

	rows := space.Transform(corpus)
	q := space.TransformOne(question)

	sims := make([]float64, len(rows))
	for i, row := range rows {
		sims[i] = dot(row, q)
	}

	order := sortByScore(sims)
	if len(order) > opts.TopK {
		order = order[:opts.TopK]
	}

	results := make([]RankedDocument, 0, len(order))
	for _, i := range order {
		results = append(results, RankedDocument{
			ID:       docs[i].ID,
			Title:    docs[i].Title,
			Score:    sims[i],
			Snippets: bestSnippets(docs[i].Text, q, space, opts),
		})
	}

	return results
}

// bestSnippets re-scores a document's paragraphs through the same fitted
// space the document ranking used. A document without extractable text still
// yields one snippet.
func bestSnippets(text string, q []float64, space *Vectorizer, opts Options) []Snippet {
	chunks := ChunkParagraphs(text)
	sims := make([]float64, len(chunks))
	for i, vec := range space.Transform(chunks) {
		sims[i] = dot(vec, q)
	}

	order := sortByScore(sims)
	if len(order) > opts.SnippetsPerDoc {
		order = order[:opts.SnippetsPerDoc]
	}

	snippets := make([]Snippet, 0, len(order))
	for _, i := range order {
		snippets = append(snippets, Snippet{
			Text:  truncate(NormalizeWhitespace(chunks[i]), opts.MaxSnippetChars),
			Score: sims[i],
		})
	}

	return snippets
}

// sortByScore returns indices ordered by descending score; ties keep the
// original corpus/chunk order.
func sortByScore(sims []float64) []int {
	order := make([]int, len(sims))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})
	return order
}

// truncate cuts s to at most maxChars characters, marking the cut with a
// single ellipsis rune.
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return strings.TrimRight(string(runes[:maxChars]), " ") + "…"
}
