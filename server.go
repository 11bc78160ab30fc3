package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gamma-omg/docqa-mcp/answering"
	"github.com/gamma-omg/docqa-mcp/retrieval"
)

type qaService interface {
	Retrieve(ctx context.Context, question string, topK int) (answering.RetrieveResult, error)
	Answer(ctx context.Context, question string, topK int, model string) (answering.AnswerResult, error)
}

type snippetJSON struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type resultJSON struct {
	DocumentID int64         `json:"document_id"`
	Title      string        `json:"title"`
	Score      float64       `json:"score"`
	Snippets   []snippetJSON `json:"snippets"`
}

type retrieveResponse struct {
	QuestionID int64        `json:"question_id"`
	Question   string       `json:"question"`
	Results    []resultJSON `json:"results"`
}

type sourceJSON struct {
	DocumentID int64  `json:"document_id"`
	Title      string `json:"title"`
}

type askResponse struct {
	QuestionID int64        `json:"question_id"`
	Question   string       `json:"question"`
	Answer     string       `json:"answer"`
	Sources    []sourceJSON `json:"sources"`
}

// NewDocQAServer exposes the retrieve and ask operations as MCP tools.
func NewDocQAServer(svc qaService, log *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("DocQA", "0.1.0", server.WithToolCapabilities(false))

	retrieveTool := mcp.NewTool("retrieve",
		mcp.WithDescription("Retrieve the documents and passages most relevant to a question"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to search the document corpus with"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("How many documents to return (default 5)"),
		))

	srv.AddTool(retrieveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		topK := request.GetInt("top_k", 0)

		res, err := svc.Retrieve(ctx, question, topK)
		if err != nil {
			if !errors.Is(err, answering.ErrEmptyQuestion) {
				log.Error("retrieve failed", "error", err)
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(retrieveResponse{
			QuestionID: res.QuestionID,
			Question:   res.Question,
			Results:    toResultJSON(res.Results),
		})
	})

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question grounded in the document corpus"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("How many documents to ground the answer in (default 5)"),
		),
		mcp.WithString("model",
			mcp.Description("Generation model name, passed through to the backend"),
		))

	srv.AddTool(askTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		topK := request.GetInt("top_k", 0)
		model := request.GetString("model", "")

		res, err := svc.Answer(ctx, question, topK, model)
		if err != nil {
			if !errors.Is(err, answering.ErrEmptyQuestion) {
				log.Error("ask failed", "error", err)
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		sources := make([]sourceJSON, 0, len(res.Sources))
		for _, s := range res.Sources {
			sources = append(sources, sourceJSON{DocumentID: s.ID, Title: s.Title})
		}

		return jsonResult(askResponse{
			QuestionID: res.QuestionID,
			Question:   res.Question,
			Answer:     res.Answer,
			Sources:    sources,
		})
	})

	return srv
}

func toResultJSON(results []retrieval.RankedDocument) []resultJSON {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		snippets := make([]snippetJSON, 0, len(r.Snippets))
		for _, s := range r.Snippets {
			snippets = append(snippets, snippetJSON{Text: s.Text, Score: s.Score})
		}
		out = append(out, resultJSON{
			DocumentID: r.ID,
			Title:      r.Title,
			Score:      r.Score,
			Snippets:   snippets,
		})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
