// confluence-mcp exposes Confluence operations as MCP tools over stdio.
//
// Configuration comes from the environment (CONFLUENCE_URL,
// CONFLUENCE_USERNAME, CONFLUENCE_API_TOKEN, CONFLUENCE_CLOUD), optionally
// seeded from a .env file or a YAML file passed with -config.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"atlassian-mcp/internal/application"
	"atlassian-mcp/internal/domain"
	"atlassian-mcp/internal/infrastructure"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to optional YAML configuration file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("confluence-mcp v%s\n", Version)
		return
	}

	log := logrus.New()
	log.SetOutput(os.Stderr) // stdout belongs to the stdio transport
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	// Local .env files are a development convenience; absence is fine.
	_ = godotenv.Load()

	var cfg *domain.ConnectionConfig
	var err error
	if *configPath != "" {
		cfg, err = domain.LoadConfigWithFile("CONFLUENCE", *configPath)
	} else {
		cfg, err = domain.LoadConfig("CONFLUENCE")
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.WithField("url", cfg.BaseURL).Info("Configuration loaded")

	holder := application.NewClientHolder(func() (application.ConfluenceService, error) {
		return infrastructure.NewConfluenceClient(cfg)
	})

	dispatcher := application.NewDispatcher(holder, application.ConfluenceTools(),
		domain.Redactor(cfg.APIToken), log)

	s := application.NewServer("confluence-mcp", Version, dispatcher)

	log.WithField("tools", len(dispatcher.Tools())).Info("Starting Confluence MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
