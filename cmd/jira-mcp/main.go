// jira-mcp exposes Jira operations as MCP tools over stdio.
//
// Configuration comes from the environment (JIRA_URL, JIRA_USERNAME,
// JIRA_API_TOKEN, JIRA_CLOUD), optionally seeded from a .env file or a
// YAML file passed with -config.
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
		fmt.Printf("jira-mcp v%s\n", Version)
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
		cfg, err = domain.LoadConfigWithFile("JIRA", *configPath)
	} else {
		cfg, err = domain.LoadConfig("JIRA")
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.WithField("url", cfg.BaseURL).Info("Configuration loaded")

	holder := application.NewClientHolder(func() (application.JiraService, error) {
		return infrastructure.NewJiraClient(cfg)
	})

	dispatcher := application.NewDispatcher(holder, application.JiraTools(),
		domain.Redactor(cfg.APIToken), log)

	s := application.NewServer("jira-mcp", Version, dispatcher)

	log.WithField("tools", len(dispatcher.Tools())).Info("Starting Jira MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
