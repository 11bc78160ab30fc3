// Package answering runs the retrieve and answer operations: it snapshots
// the corpus from the record store, delegates ranking to the retrieval core,
// maintains question records and their document links, and synthesizes an
// answer through the generation collaborator.
package answering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gamma-omg/docqa-mcp/recordstore"
	"github.com/gamma-omg/docqa-mcp/retrieval"
)

// NoAnswerText is returned verbatim when retrieval found nothing to ground
// an answer in. The generation collaborator is not consulted in that case.
const NoAnswerText = "I don't know based on the provided documents."

// ErrEmptyQuestion rejects empty or whitespace-only question text before any
// side effect happens.
var ErrEmptyQuestion = errors.New("question text is required")

// RecordStore is the slice of the record store the service needs.
type RecordStore interface {
	ListDocuments(ctx context.Context) ([]recordstore.Document, error)
	CreateQuestion(ctx context.Context, text string) (int64, error)
	GetQuestion(ctx context.Context, id int64) (recordstore.Question, error)
	SetRelatedDocuments(ctx context.Context, questionID int64, docIDs []int64) error
	SetAnswer(ctx context.Context, questionID int64, answer string) error
}

// Generator produces an answer from a question and its assembled context.
type Generator interface {
	Answer(ctx context.Context, question, contextText, model string) (string, error)
}

type Service struct {
	log   *slog.Logger
	store RecordStore
	gen   Generator
	opts  retrieval.Options
}

func NewService(log *slog.Logger, store RecordStore, gen Generator, opts retrieval.Options) *Service {
	return &Service{
		log:   log,
		store: store,
		gen:   gen,
		opts:  opts,
	}
}

// RetrieveResult is the outcome of the retrieve operation: a fresh question
// record and the ranked documents linked to it.
type RetrieveResult struct {
	QuestionID int64
	Question   string
	Results    []retrieval.RankedDocument
}

// AnswerResult is the outcome of the answer operation.
type AnswerResult struct {
	QuestionID int64
	Question   string
	Answer     string
	Sources    []retrieval.RankedDocument
}

// Retrieve ranks the corpus against question, creates a question record with
// no answer set and links the retrieved documents to it.
func (s *Service) Retrieve(ctx context.Context, question string, topK int) (RetrieveResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return RetrieveResult{}, ErrEmptyQuestion
	}

	results, err := s.retrieve(ctx, question, topK)
	if err != nil {
		return RetrieveResult{}, err
	}

	qid, err := s.store.CreateQuestion(ctx, question)
	if err != nil {
		return RetrieveResult{}, fmt.Errorf("failed to create question record: %w", err)
	}

	if err := s.store.SetRelatedDocuments(ctx, qid, documentIDs(results)); err != nil {
		return RetrieveResult{}, fmt.Errorf("failed to link documents: %w", err)
	}

	s.log.Info("retrieved documents", "question_id", qid, "results", len(results))

	return RetrieveResult{QuestionID: qid, Question: question, Results: results}, nil
}

// Answer runs retrieval, creates and fully populates a question record and
// returns the synthesized answer. With no retrieved context the answer is
// the fixed NoAnswerText literal and the generator is never invoked.
func (s *Service) Answer(ctx context.Context, question string, topK int, model string) (AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AnswerResult{}, ErrEmptyQuestion
	}

	qid, err := s.store.CreateQuestion(ctx, question)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to create question record: %w", err)
	}

	return s.synthesize(ctx, qid, question, topK, model)
}

// AnswerQuestion re-runs retrieval and synthesis for an already stored
// question, replacing its document links and answer.
func (s *Service) AnswerQuestion(ctx context.Context, questionID int64, topK int, model string) (AnswerResult, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return AnswerResult{}, err
	}

	question := strings.TrimSpace(q.Text)
	if question == "" {
		return AnswerResult{}, ErrEmptyQuestion
	}

	return s.synthesize(ctx, questionID, question, topK, model)
}

func (s *Service) synthesize(ctx context.Context, qid int64, question string, topK int, model string) (AnswerResult, error) {
	results, err := s.retrieve(ctx, question, topK)
	if err != nil {
		return AnswerResult{}, err
	}

	// Full replace: re-answering never accumulates stale links.
	if err := s.store.SetRelatedDocuments(ctx, qid, documentIDs(results)); err != nil {
		return AnswerResult{}, fmt.Errorf("failed to link documents: %w", err)
	}

	contextText := buildContext(results)
	if contextText == "" {
		if err := s.store.SetAnswer(ctx, qid, NoAnswerText); err != nil {
			return AnswerResult{}, fmt.Errorf("failed to persist answer: %w", err)
		}

		s.log.Info("no context retrieved", "question_id", qid)

		return AnswerResult{QuestionID: qid, Question: question, Answer: NoAnswerText}, nil
	}

	answer, err := s.gen.Answer(ctx, question, contextText, model)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to generate answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if err := s.store.SetAnswer(ctx, qid, answer); err != nil {
		return AnswerResult{}, fmt.Errorf("failed to persist answer: %w", err)
	}

	s.log.Info("synthesized answer", "question_id", qid, "sources", len(results))

	return AnswerResult{QuestionID: qid, Question: question, Answer: answer, Sources: results}, nil
}

// retrieve snapshots the corpus and runs the per-query retrieval pipeline.
func (s *Service) retrieve(ctx context.Context, question string, topK int) ([]retrieval.RankedDocument, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	corpus := make([]retrieval.Document, len(docs))
	for i, d := range docs {
		corpus[i] = retrieval.Document{ID: d.ID, Title: d.Title, Text: d.BestText()}
	}

	opts := s.opts
	if topK > 0 {
		opts.TopK = topK
	}

	return retrieval.Retrieve(question, corpus, opts), nil
}

// buildContext assembles the context string handed to the generator: a
// header line per document followed by its snippets, blank-line separated.
func buildContext(results []retrieval.RankedDocument) string {
	var parts []string
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[Document #%d] %s", r.ID, r.Title))
		for _, snip := range r.Snippets {
			parts = append(parts, "- "+snip.Text)
		}
		parts = append(parts, "")
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func documentIDs(results []retrieval.RankedDocument) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
