package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"google.golang.org/genai"

	"github.com/0muji4/xmldef/internal/config"
	"github.com/0muji4/xmldef/internal/definition"
	"github.com/0muji4/xmldef/internal/location"
)

var logger = commonlog.GetLogger("xmldef.agent")

// Definitions defines the lookups the agent's tools delegate to.
type Definitions interface {
	FindAt(ctx context.Context, text string, line, character int) (location.Result, error)
	Resolve(kind definition.SymbolKind, name string) (location.Result, error)
	Content(ctx context.Context, identifier string) (string, error)
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, generateConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Agent はLLMとスキーマ解決ツールを統括する構造体です
type Agent struct {
	generate      generateFunc
	definitions   Definitions
	model         string
	maxIterations int
	systemPrompt  string
	retryWait     time.Duration
}

// New は Gemini クライアントを生成し Agent を返します
func New(ctx context.Context, cfg config.Agent, definitions Definitions) (*Agent, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newAgent(client.Models.GenerateContent, cfg, definitions), nil
}

func newAgent(generate generateFunc, cfg config.Agent, definitions Definitions) *Agent {
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	maxIterations := cfg.MaxIterations
	if maxIterations < 2 {
		maxIterations = config.DefaultMaxIterations
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	return &Agent{
		generate:      generate,
		definitions:   definitions,
		model:         model,
		maxIterations: maxIterations,
		systemPrompt:  systemPrompt,
		retryWait:     30 * time.Second,
	}
}

// Explain はドキュメントに関する問いかけに対してReActループを実行します
func (a *Agent) Explain(ctx context.Context, documentURI, text, query string) (string, error) {
	if documentURI == "" {
		documentURI = "(inline document)"
	}
	history := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("Document: %s\n\n%s", documentURI, query), "user"),
	}

	generateConfig := &genai.GenerateContentConfig{
		Tools: tools(),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(a.systemPrompt)},
		},
	}

	// ReAct Loop
	for i := 0; i < a.maxIterations; i++ {
		logger.Infof("[%d/%d] thinking", i+1, a.maxIterations)

		resp, err := a.generateWithRetry(ctx, history, generateConfig)
		if err != nil {
			return "", err
		}

		functionCalls := resp.FunctionCalls()
		if len(functionCalls) == 0 {
			return resp.Text(), nil
		}

		history = append(history, resp.Candidates[0].Content)

		var responseParts []*genai.Part
		for _, call := range functionCalls {
			resultText, execErr := a.execute(ctx, call, text)
			if execErr != nil {
				resultText = fmt.Sprintf("Error: %v", execErr)
			}
			responseParts = append(responseParts, genai.NewPartFromFunctionResponse(
				call.Name,
				map[string]any{"result": resultText},
			))
		}

		history = append(history, &genai.Content{
			Role:  "tool",
			Parts: responseParts,
		})

		// ループ終盤で最終回答を促す
		if i == a.maxIterations-2 {
			history = append(history, genai.NewContentFromText(
				"You have one tool call left. Answer now in plain text using what you have gathered.",
				"user",
			))
		}
	}

	return "", fmt.Errorf("agent: loop limit exceeded")
}

// レート制限対応: 429 エラー時はリトライ（最大2回）
func (a *Agent) generateWithRetry(ctx context.Context, history []*genai.Content, generateConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for retry := 0; ; retry++ {
		resp, err := a.generate(ctx, a.model, history, generateConfig)
		if err == nil {
			return resp, nil
		}
		if !strings.Contains(err.Error(), "429") || retry >= 2 {
			return nil, fmt.Errorf("agent: generate content: %w", err)
		}
		wait := a.retryWait * time.Duration(retry+1)
		logger.Infof("rate limited, waiting %v", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (a *Agent) execute(ctx context.Context, call *genai.FunctionCall, text string) (string, error) {
	switch call.Name {
	case "resolve-symbol":
		name, _ := call.Args["name"].(string)
		kind, _ := call.Args["kind"].(string)
		logger.Infof("tool: resolve-symbol(%s, %s)", name, kind)
		return a.executeResolveSymbol(name, definition.SymbolKind(kind))

	case "find-definition":
		line, character := intArg(call.Args, "line"), intArg(call.Args, "character")
		logger.Infof("tool: find-definition(%d, %d)", line, character)
		return a.executeFindDefinition(ctx, text, line, character)

	case "read-definition":
		identifier, _ := call.Args["identifier"].(string)
		logger.Infof("tool: read-definition(%s)", identifier)
		return a.definitions.Content(ctx, identifier)

	case "read-document":
		logger.Info("tool: read-document")
		return text, nil
	}
	return "", fmt.Errorf("unknown tool %q", call.Name)
}

func (a *Agent) executeResolveSymbol(name string, kind definition.SymbolKind) (string, error) {
	if kind == "" {
		kind = definition.ElementKind
	}
	result, err := a.definitions.Resolve(kind, name)
	if err != nil {
		return "", fmt.Errorf("agent: resolve %s %q: %w", kind, name, err)
	}
	return describe(result), nil
}

func (a *Agent) executeFindDefinition(ctx context.Context, text string, line, character int) (string, error) {
	// ツールは 1-based、LSP 互換の解決は 0-based
	result, err := a.definitions.FindAt(ctx, text, line-1, character-1)
	if err != nil {
		return "", fmt.Errorf("agent: find definition %d:%d: %w", line, character, err)
	}
	return describe(result), nil
}

func describe(result location.Result) string {
	if !result.Found {
		return fmt.Sprintf("No definition found. Read %s for details.", result.URI)
	}
	return fmt.Sprintf("Defined in %s at line %d, column %d.\nRead it with read-definition(%s).",
		result.Target, result.Line+1, result.Column+1, result.URI)
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func tools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "resolve-symbol",
					Description: "Looks up an XML element or attribute name in the loaded XML Schemas and returns where it is declared.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name": {
								Type:        genai.TypeString,
								Description: "The element or attribute name, e.g. book or isbn",
							},
							"kind": {
								Type:        genai.TypeString,
								Description: "element or attribute",
								Enum:        []string{string(definition.ElementKind), string(definition.AttributeKind)},
							},
						},
						Required: []string{"name", "kind"},
					},
				},
				{
					Name:        "find-definition",
					Description: "Resolves the name at a position of the document under discussion. Use this when the same name may mean an element or an attribute.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"line": {
								Type:        genai.TypeInteger,
								Description: "Line number, starting at 1",
							},
							"character": {
								Type:        genai.TypeInteger,
								Description: "Column, starting at 1",
							},
						},
						Required: []string{"line", "character"},
					},
				},
				{
					Name:        "read-definition",
					Description: "Reads the schema source (or message) behind an identifier returned by resolve-symbol or find-definition.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"identifier": {
								Type:        genai.TypeString,
								Description: "The identifier to read",
							},
						},
						Required: []string{"identifier"},
					},
				},
				{
					Name:        "read-document",
					Description: "Reads the XML document under discussion.",
					Parameters: &genai.Schema{
						Type:       genai.TypeObject,
						Properties: map[string]*genai.Schema{},
					},
				},
			},
		},
	}
}
