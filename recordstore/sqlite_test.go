package recordstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "docqa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func Test_CreateAndListDocuments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id1, err := store.CreateDocument(ctx, "Leave Policy", "Employees get 20 days of paid leave annually.")
	require.NoError(t, err)
	id2, err := store.CreateDocument(ctx, "Office Rules", "")
	require.NoError(t, err)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, id1, docs[0].ID)
	assert.Equal(t, "Leave Policy", docs[0].Title)
	assert.Equal(t, "Employees get 20 days of paid leave annually.", docs[0].BestText())
	assert.Equal(t, id2, docs[1].ID)
	assert.Empty(t, docs[1].BestText())
}

func Test_BestTextPrefersExtracted(t *testing.T) {
	d := Document{Text: "manual notes", ExtractedText: "extracted body"}
	assert.Equal(t, "extracted body", d.BestText())

	d.ExtractedText = ""
	assert.Equal(t, "manual notes", d.BestText())
}

func Test_UpsertDocumentFile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertDocumentFile(ctx, "docs/leave.pdf", "leave", "v1 text", 111)
	require.NoError(t, err)

	again, err := store.UpsertDocumentFile(ctx, "docs/leave.pdf", "leave", "v2 text", 222)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "v2 text", docs[0].ExtractedText)
	assert.Equal(t, uint32(222), docs[0].Crc)

	ingested, err := store.ListIngested(ctx)
	require.NoError(t, err)
	assert.Equal(t, []IngestedDoc{{File: "docs/leave.pdf", Crc: 222}}, ingested)
}

func Test_DeleteDocumentByFile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertDocumentFile(ctx, "docs/old.pdf", "old", "text", 1)
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocumentByFile(ctx, "docs/old.pdf"))
	require.NoError(t, store.DeleteDocumentByFile(ctx, "docs/never-existed.pdf"))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func Test_QuestionLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	qid, err := store.CreateQuestion(ctx, "How many leave days do employees get?")
	require.NoError(t, err)

	q, err := store.GetQuestion(ctx, qid)
	require.NoError(t, err)
	assert.Equal(t, "How many leave days do employees get?", q.Text)
	assert.Empty(t, q.Answer)

	require.NoError(t, store.SetAnswer(ctx, qid, "20 days."))

	q, err = store.GetQuestion(ctx, qid)
	require.NoError(t, err)
	assert.Equal(t, "20 days.", q.Answer)
}

func Test_SetRelatedDocumentsReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var docIDs []int64
	for i := range 3 {
		id, err := store.CreateDocument(ctx, fmt.Sprintf("doc %d", i), "text")
		require.NoError(t, err)
		docIDs = append(docIDs, id)
	}
	qid, err := store.CreateQuestion(ctx, "q")
	require.NoError(t, err)

	require.NoError(t, store.SetRelatedDocuments(ctx, qid, docIDs[:2]))
	require.NoError(t, store.SetRelatedDocuments(ctx, qid, docIDs[1:]))

	linked, err := store.RelatedDocumentIDs(ctx, qid)
	require.NoError(t, err)
	assert.Equal(t, docIDs[1:], linked)

	require.NoError(t, store.SetRelatedDocuments(ctx, qid, nil))

	linked, err = store.RelatedDocumentIDs(ctx, qid)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func Test_Tags(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tagID, err := store.CreateTag(ctx, "HR Policies")
	require.NoError(t, err)

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "hr-policies", tags[0].Slug)

	docID, err := store.CreateDocument(ctx, "Leave Policy", "text")
	require.NoError(t, err)

	require.NoError(t, store.TagDocument(ctx, docID, tagID))
	require.NoError(t, store.TagDocument(ctx, docID, tagID))
}

func Test_Slugify(t *testing.T) {
	var cases = []struct {
		input  string
		output string
	}{
		{input: "HR Policies", output: "hr-policies"},
		{input: "  Q3 / Finance  ", output: "q3-finance"},
		{input: "already-slugged", output: "already-slugged"},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.output, Slugify(c.input))
		})
	}
}
