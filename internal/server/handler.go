package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/workspace"
)

// DefinitionService is the use case the MCP adapter exposes.
type DefinitionService interface {
	Find(ctx context.Context, text string, offset int) (location.Result, error)
	FindAt(ctx context.Context, text string, line, character int) (location.Result, error)
	Content(ctx context.Context, identifier string) (string, error)
	Schemas() schema.Collection
}

// Explainer answers a free-form question about a document.
type Explainer interface {
	Explain(ctx context.Context, documentURI, text, query string) (string, error)
}

// DefinitionHandler は MCP リクエストを definition サービスのユースケースに変換する Adapter です。
type DefinitionHandler struct {
	service   DefinitionService
	reader    workspace.Reader
	explainer Explainer
}

// NewDefinitionHandler は DefinitionHandler を生成します。explainer は nil でも構いません。
func NewDefinitionHandler(service DefinitionService, reader workspace.Reader, explainer Explainer) *DefinitionHandler {
	return &DefinitionHandler{
		service:   service,
		reader:    reader,
		explainer: explainer,
	}
}

// FindDefinition は find-definition ツール呼び出しを処理します。
func (h *DefinitionHandler) FindDefinition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	var result location.Result
	if _, ok := args["offset"]; ok {
		result, err = h.service.Find(ctx, text, req.GetInt("offset", 0))
	} else {
		_, hasLine := args["line"]
		_, hasCharacter := args["character"]
		if !hasLine || !hasCharacter {
			return mcp.NewToolResultError("either offset or line and character are required"), nil
		}
		result, err = h.service.FindAt(ctx, text, req.GetInt("line", 0), req.GetInt("character", 0))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unable to resolve definition: %v", err)), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ListSchemas は読み込み済みスキーマの一覧を返します。
func (h *DefinitionHandler) ListSchemas(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schemas := h.service.Schemas()
	if schemas.Len() == 0 {
		return mcp.NewToolResultText("No schemas loaded."), nil
	}
	var lines []string
	for _, source := range schemas {
		lines = append(lines, fmt.Sprintf("%s (%d elements)", source.URI, len(source.Tags)))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// ExplainSymbol は Agent の ReAct ループでドキュメントに関する質問に答えます。
func (h *DefinitionHandler) ExplainSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.explainer == nil {
		return mcp.NewToolResultError("explain-symbol is not configured (GEMINI_API_KEY is missing)"), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	text, err := h.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := h.explainer.Explain(ctx, req.GetString("document_uri", ""), text, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("agent error: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// ReadContent は仮想ドキュメント (定義元またはメッセージ) を返します。
func (h *DefinitionHandler) ReadContent(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := h.service.Content(ctx, req.Params.URI)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

// document は text 引数、なければ document_uri の内容を返します。
func (h *DefinitionHandler) document(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	if text := req.GetString("text", ""); text != "" {
		return text, nil
	}
	uri := req.GetString("document_uri", "")
	if uri == "" {
		return "", fmt.Errorf("text or document_uri is required")
	}
	text, err := h.reader.ReadFile(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %v", uri, err)
	}
	return text, nil
}
