package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// New は MCP サーバーを生成し、ツールとリソーステンプレートを登録して返します。
// ビジネスロジックは handler に委譲し、ここではプロトコル変換のみ行います。
func New(handler *DefinitionHandler, scheme string) *server.MCPServer {
	s := server.NewMCPServer(
		"xmldef",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	findTool := mcp.NewTool("find-definition",
		mcp.WithDescription("Resolves the XML element or attribute name at a cursor position to its XML Schema definition. Returns JSON with uri (readable as a resource), target, line and column."),
		mcp.WithString("text",
			mcp.Description("Full XML document text. Either text or document_uri is required."),
		),
		mcp.WithString("document_uri",
			mcp.Description("Path or URL of the XML document (file://, mem://, s3://, gs://)."),
		),
		mcp.WithNumber("offset",
			mcp.Description("Zero-based byte offset of the cursor."),
		),
		mcp.WithNumber("line",
			mcp.Description("Zero-based line of the cursor, used with character when offset is absent."),
		),
		mcp.WithNumber("character",
			mcp.Description("Zero-based UTF-16 character of the cursor."),
		),
	)
	s.AddTool(findTool, handler.FindDefinition)

	listTool := mcp.NewTool("list-schemas",
		mcp.WithDescription("Lists the loaded XML Schemas in lookup order."),
	)
	s.AddTool(listTool, handler.ListSchemas)

	if handler.explainer != nil {
		explainTool := mcp.NewTool("explain-symbol",
			mcp.WithDescription("Answers a question about an XML document by resolving its elements and attributes against the loaded schemas with an LLM."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The question, e.g. \"What does the isbn attribute on book mean?\""),
			),
			mcp.WithString("text",
				mcp.Description("Full XML document text."),
			),
			mcp.WithString("document_uri",
				mcp.Description("Path or URL of the XML document."),
			),
		)
		s.AddTool(explainTool, handler.ExplainSymbol)
	}

	contentTemplate := mcp.NewResourceTemplate(
		scheme+"://{target}",
		"definition",
		mcp.WithTemplateDescription("Definition source or diagnostic message behind a find-definition uri."),
		mcp.WithTemplateMIMEType("text/plain"),
	)
	s.AddResourceTemplate(contentTemplate, handler.ReadContent)

	return s
}
