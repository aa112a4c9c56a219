package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0muji4/xmldef/internal/location"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <document_uri> <offset> [schema...]")
		os.Exit(1)
	}

	documentURI := os.Args[1]
	offset, err := strconv.Atoi(os.Args[2])
	if err != nil {
		log.Fatalf("invalid offset %q: %v", os.Args[2], err)
	}

	serverBin := os.Getenv("MCP_SERVER_BIN")
	if serverBin == "" {
		serverBin = "mcp-server"
	}

	// --- MCP クライアントの起動（サーバープロセスを spawn） ---
	c, err := client.NewStdioMCPClient(
		serverBin,
		os.Environ(),
		os.Args[3:]...,
	)
	if err != nil {
		log.Fatalf("failed to create MCP client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// --- Initialize ハンドシェイク ---
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "xmldef-client",
		Version: "0.1.0",
	}

	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Connected to: %s %s\n", initResult.ServerInfo.Name, initResult.ServerInfo.Version)

	// --- find-definition ツールの呼び出し ---
	toolReq := mcp.CallToolRequest{}
	toolReq.Params.Name = "find-definition"
	toolReq.Params.Arguments = map[string]any{
		"document_uri": documentURI,
		"offset":       offset,
	}

	result, err := c.CallTool(ctx, toolReq)
	if err != nil {
		log.Fatalf("tool call failed: %v", err)
	}

	var text string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	if result.IsError {
		log.Fatalf("find-definition failed: %s", text)
	}
	fmt.Println(text)

	var found location.Result
	if err := json.Unmarshal([]byte(text), &found); err != nil {
		log.Fatalf("unexpected result: %v", err)
	}

	// --- 定義元 (またはメッセージ) をリソースとして読む ---
	readReq := mcp.ReadResourceRequest{}
	readReq.Params.URI = found.URI
	resource, err := c.ReadResource(ctx, readReq)
	if err != nil {
		log.Fatalf("read resource failed: %v", err)
	}
	for _, content := range resource.Contents {
		if tc, ok := content.(mcp.TextResourceContents); ok {
			fmt.Println(tc.Text)
		}
	}
}
