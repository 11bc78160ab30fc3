package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer is a TF-IDF vector space fitted to one corpus snapshot. It lives
// for a single query: the same fitted vocabulary must vectorize the corpus,
// the question and every document chunk, or their scores are incomparable.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_]+`)

// Fit builds a vector space over corpus: case-insensitive unigrams and
// bigrams, English stopwords removed, vocabulary capped at maxFeatures terms
// ordered by total corpus frequency. IDF is smoothed, ln((1+n)/(1+df)) + 1.
func Fit(corpus []string, maxFeatures int) *Vectorizer {
	df := make(map[string]int)
	total := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range ngrams(tokenize(text)) {
			total[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return v
}

// Dimension returns the size of the fitted vocabulary.
func (v *Vectorizer) Dimension() int { return len(v.vocab) }

// Transform vectorizes texts through the fitted vocabulary, leaving it
// untouched. Rows are L2-normalized, so cosine similarity reduces to a dot
// product.
func (v *Vectorizer) Transform(texts []string) [][]float64 {
	rows := make([][]float64, len(texts))
	for i, t := range texts {
		rows[i] = v.TransformOne(t)
	}
	return rows
}

// TransformOne vectorizes a single text. Texts sharing no terms with the
// vocabulary produce a zero vector.
func (v *Vectorizer) TransformOne(text string) []float64 {
	vec := make([]float64, len(v.vocab))
	for _, term := range ngrams(tokenize(text)) {
		if i, ok := v.vocab[term]; ok {
			vec[i]++
		}
	}

	norm := 0.0
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// tokenize lowercases, extracts word tokens of two or more characters and
// drops stopwords.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ngrams emits the unigrams plus the adjacent bigrams of an already
// stopword-filtered token sequence.
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens)-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
