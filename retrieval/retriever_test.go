package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Retrieve_EmptyQuestion(t *testing.T) {
	docs := []Document{{ID: 1, Title: "Doc", Text: "some text"}}

	assert.Nil(t, Retrieve("", docs, Options{}))
	assert.Nil(t, Retrieve("   \t\n", docs, Options{}))
}

func Test_Retrieve_EmptyCorpus(t *testing.T) {
	assert.Nil(t, Retrieve("what is the leave policy?", nil, Options{}))
}

func Test_Retrieve_NoUsableVocabulary(t *testing.T) {
	docs := []Document{{ID: 1, Title: "a", Text: "of the and"}}
	assert.Nil(t, Retrieve("anything at all", docs, Options{}))
}

func Test_Retrieve_TopKBound(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "One", Text: "cats and dogs"},
		{ID: 2, Title: "Two", Text: "dogs and birds"},
		{ID: 3, Title: "Three", Text: "birds and fish"},
	}

	res := Retrieve("dogs", docs, Options{TopK: 2})
	assert.LessOrEqual(t, len(res), 2)

	res = Retrieve("dogs", docs, Options{TopK: 10})
	assert.LessOrEqual(t, len(res), len(docs))
}

func Test_Retrieve_ScoresNonIncreasing(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "Leave Policy", Text: "Employees get 20 days of paid leave annually.\n\nUnused leave does not roll over."},
		{ID: 2, Title: "Office Rules", Text: "No leave requests on Fridays.\n\nBadge access expires monthly."},
		{ID: 3, Title: "Hardware", Text: "Return laptops within one week of departure."},
	}

	res := Retrieve("how many leave days do employees get?", docs, Options{TopK: 3, SnippetsPerDoc: 2})
	require.NotEmpty(t, res)

	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
	for _, r := range res {
		for i := 1; i < len(r.Snippets); i++ {
			assert.GreaterOrEqual(t, r.Snippets[i-1].Score, r.Snippets[i].Score)
		}
	}
}

func Test_Retrieve_LeavePolicyScenario(t *testing.T) {
	docs := []Document{
		{ID: 7, Title: "Leave Policy", Text: "Employees get 20 days of paid leave annually."},
	}

	res := Retrieve("How many leave days do employees get?", docs, Options{})
	require.Len(t, res, 1)

	assert.Equal(t, int64(7), res[0].ID)
	assert.Equal(t, "Leave Policy", res[0].Title)
	require.NotEmpty(t, res[0].Snippets)
	assert.Contains(t, res[0].Snippets[0].Text, "20 days of paid leave")
	assert.Greater(t, res[0].Snippets[0].Score, 0.0)
}

// Reusing the fitted space across document and snippet scoring means a
// paragraph identical to the question must score a full 1.0 and its document
// must win the ranking.
func Test_Retrieve_ExactParagraphScoresOne(t *testing.T) {
	question := "what is the capital of France?"
	docs := []Document{
		{ID: 1, Title: "Pets", Text: "Dogs are welcome in the office.\n\nCats are tolerated."},
		{ID: 2, Title: "Geography", Text: "Mountains cover much of the country.\n\nwhat is the capital of France?"},
		{ID: 3, Title: "Food", Text: "The cafeteria serves lunch at noon."},
	}

	res := Retrieve(question, docs, Options{TopK: 3})
	require.NotEmpty(t, res)

	assert.Equal(t, int64(2), res[0].ID)
	require.NotEmpty(t, res[0].Snippets)
	assert.InDelta(t, 1.0, res[0].Snippets[0].Score, 1e-9)
}

func Test_Retrieve_EmptyDocumentStillYieldsSnippet(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "Leave Policy", Text: "Employees get 20 days of paid leave annually."},
		{ID: 2, Title: "Leave Addendum", Text: ""},
	}

	res := Retrieve("leave policy", docs, Options{TopK: 2})
	require.Len(t, res, 2)
	for _, r := range res {
		assert.NotEmpty(t, r.Snippets)
	}
}

func Test_Retrieve_TieBreakKeepsCorpusOrder(t *testing.T) {
	docs := []Document{
		{ID: 1, Title: "Note", Text: "zebra"},
		{ID: 2, Title: "Note", Text: "zebra"},
		{ID: 3, Title: "Note", Text: "zebra"},
	}

	res := Retrieve("zebra", docs, Options{TopK: 3})
	require.Len(t, res, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{res[0].ID, res[1].ID, res[2].ID})
}

func Test_truncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))

	long := strings.Repeat("ab", 10) // 20 chars
	out := truncate(long, 7)
	assert.Equal(t, "abababa…", out)
	assert.Equal(t, 8, len([]rune(out)))
}
