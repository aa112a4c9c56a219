package main

import (
	"context"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/tliron/commonlog"
	"github.com/viant/afs"

	"github.com/0muji4/xmldef/internal/agent"
	"github.com/0muji4/xmldef/internal/config"
	"github.com/0muji4/xmldef/internal/definition"
	"github.com/0muji4/xmldef/internal/server"
	"github.com/0muji4/xmldef/internal/workspace"
)

func main() {
	// --- 設定の読み込み (XMLDEF_CONFIG, GEMINI_API_KEY) ---
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	// 追加のスキーマは引数で渡せる
	cfg.AddSchemas(os.Args[1:]...)
	cfg.Log.Apply()
	logger := commonlog.GetLogger("xmldef.mcp")

	ctx := context.Background()
	fs := afs.New()

	// --- DI: Adapter 層の組み立て ---
	service, err := definition.Build(ctx, cfg, fs)
	if err != nil {
		log.Fatalf("failed to load schemas: %v", err)
	}

	var explainer server.Explainer
	if cfg.Agent.APIKey != "" {
		a, err := agent.New(ctx, cfg.Agent, service)
		if err != nil {
			log.Fatal(err)
		}
		explainer = a
	} else {
		logger.Notice("GEMINI_API_KEY is not set, explain-symbol is disabled")
	}

	// ドキュメントの読み取りは root 配下に限定する
	documents := workspace.NewFSReader(cfg.Root, fs)
	logger.Infof("documents confined to %s", documents.Root())
	handler := server.NewDefinitionHandler(service, documents, explainer)
	s := server.New(handler, cfg.Scheme)

	// --- Framework: MCP stdio サーバーの起動 ---
	logger.Noticef("xmldef MCP server starting with %d schema(s)", service.Schemas().Len())
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
