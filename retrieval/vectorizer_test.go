package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Fit_BuildsVocabulary(t *testing.T) {
	v := Fit([]string{"paid leave policy", "remote work policy"}, 0)

	assert.Contains(t, v.vocab, "leave")
	assert.Contains(t, v.vocab, "policy")
	assert.Contains(t, v.vocab, "paid leave")
	assert.Contains(t, v.vocab, "remote work")
	assert.Equal(t, len(v.vocab), v.Dimension())
}

func Test_Fit_DropsStopwordsAndShortTokens(t *testing.T) {
	v := Fit([]string{"the cat is on a mat"}, 0)

	assert.NotContains(t, v.vocab, "the")
	assert.NotContains(t, v.vocab, "is")
	assert.NotContains(t, v.vocab, "on")
	assert.NotContains(t, v.vocab, "a")
	assert.Contains(t, v.vocab, "cat")
	assert.Contains(t, v.vocab, "mat")
	// Bigrams span the removed stopwords.
	assert.Contains(t, v.vocab, "cat mat")
}

func Test_Fit_StopwordOnlyCorpus(t *testing.T) {
	v := Fit([]string{"the and of", "is was were"}, 0)
	assert.Equal(t, 0, v.Dimension())
}

func Test_Fit_MaxFeaturesKeepsMostFrequentTerms(t *testing.T) {
	corpus := []string{"alpha", "alpha", "alpha", "beta", "beta", "gamma"}
	v := Fit(corpus, 2)

	require.Equal(t, 2, v.Dimension())
	assert.Contains(t, v.vocab, "alpha")
	assert.Contains(t, v.vocab, "beta")
	assert.NotContains(t, v.vocab, "gamma")
}

func Test_TransformOne_L2Normalized(t *testing.T) {
	v := Fit([]string{"paid leave policy", "office dog policy"}, 0)

	vec := v.TransformOne("paid leave")
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func Test_TransformOne_UnknownTermsOnly(t *testing.T) {
	v := Fit([]string{"paid leave policy"}, 0)

	vec := v.TransformOne("zebra quantum")
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func Test_TransformOne_IdenticalTextsScoreOne(t *testing.T) {
	corpus := []string{"employees accrue leave monthly", "hardware return procedure"}
	v := Fit(corpus, 0)

	a := v.TransformOne("employees accrue leave monthly")
	b := v.TransformOne("employees accrue leave monthly")
	assert.InDelta(t, 1.0, dot(a, b), 1e-9)
}

func Test_Transform_SharedVocabulary(t *testing.T) {
	corpus := []string{"paid leave policy", "security badge rules"}
	v := Fit(corpus, 0)

	rows := v.Transform(corpus)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row, v.Dimension())
	}
	// Unrelated rows share no terms.
	assert.InDelta(t, 0.0, dot(rows[0], rows[1]), 1e-9)
}
