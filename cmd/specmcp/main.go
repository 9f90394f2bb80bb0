// Command specmcp runs the SpecMCP code-analysis server: a catalog of
// static-analysis and LLM-assisted tools exposed to an AI coding assistant
// over the Model Context Protocol.
//
// Optional environment variables (see internal/config for the full list):
//
//	SPECMCP_CONFIG        - path to a TOML config file
//	SPECMCP_LOG_LEVEL     - log level: debug, info, warn, error (default: info)
//	OPENAI_API_KEY        - LLM provider key; the variable read is the one named
//	                        by llm.api_key_env (default OPENAI_API_KEY), for
//	                        both the "openai" and "gemini" providers
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/collegue/specmcp/internal/config"
	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/httpclient"
	"github.com/collegue/specmcp/internal/llm"
	"github.com/collegue/specmcp/internal/mcp"
	"github.com/collegue/specmcp/internal/orchestrator"
	"github.com/collegue/specmcp/internal/parser"
	"github.com/collegue/specmcp/internal/scheduler"
	"github.com/collegue/specmcp/internal/session"
	"github.com/collegue/specmcp/internal/tools/consistency"
	"github.com/collegue/specmcp/internal/tools/content"
	"github.com/collegue/specmcp/internal/tools/dependency"
	"github.com/collegue/specmcp/internal/tools/iac"
	"github.com/collegue/specmcp/internal/tools/impact"
	"github.com/collegue/specmcp/internal/tools/secrets"
	"github.com/collegue/specmcp/internal/tools/testrunner"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "specmcp: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "specmcp",
		Short: "Static-analysis tool server for AI coding assistants",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (overrides SPECMCP_CONFIG)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newScanCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(Version)
			return nil
		},
	}
}

// newServeCmd starts the long-lived MCP server, over stdio or HTTP
// depending on cfg.Transport.Mode (overridable with --transport).
func newServeCmd(configPath *string) *cobra.Command {
	var transportOverride string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if transportOverride != "" {
				cfg.Transport.Mode = transportOverride
			}

			logger := newLogger(cfg.Log.Level)
			version := resolveVersion(cfg.Server.Version)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			llmMgr, err := llm.NewManagerFromConfig(ctx, cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("creating llm manager: %w", err)
			}

			sessions := session.NewManager(
				cfg.Session.StorageDir,
				cfg.Session.CodeHistoryLimit,
				cfg.Session.ConversationHistoryLimit,
				cfg.Session.ExecutionHistoryLimit,
				logger,
			)
			sessions.CreateContext("default", nil)

			orch, _ := buildOrchestrator(ctx, cfg, llmMgr, logger)

			ec := &contract.ExecContext{
				LLM:       llmMgr,
				Sessions:  sessions,
				Progress:  contract.NoopProgressSink{},
				SessionID: "default",
			}

			sched := scheduler.NewScheduler(logger)
			sched.AddJob(sessionPruneJob{sessions: sessions}, 10*time.Minute)
			sched.Start(ctx)
			defer sched.Stop()

			registry := mcp.NewRegistry()
			for _, d := range orch.ListTools("") {
				registry.Register(adaptTool(orch, ec, d))
			}

			server := mcp.NewServer(registry, mcp.ServerInfo{
				Name:    cfg.Server.Name,
				Version: version,
			}, logger)

			logger.Info("starting specmcp",
				"version", version,
				"transport", cfg.Transport.Mode,
				"tools", len(orch.ListTools("")),
			)

			if cfg.Transport.Mode == "http" {
				httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, cfg.Transport.AuthToken, logger)
				addr := cfg.Transport.Host + ":" + cfg.Transport.Port
				srv := &http.Server{
					Addr:              addr,
					Handler:           httpServer.Handler(),
					ReadHeaderTimeout: 10 * time.Second,
				}
				go func() {
					<-ctx.Done()
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				logger.Info("listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			}

			return server.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&transportOverride, "transport", "", "override transport.mode: stdio or http")
	return cmd
}

// newScanCmd is a one-shot, non-interactive CLI entry point for running a
// single analysis tool over a file or inline content without starting the
// MCP server — useful in CI pipelines and local pre-commit hooks.
func newScanCmd(configPath *string) *cobra.Command {
	var toolName string
	var path string
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single analysis tool once and print its JSON result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := newLogger(cfg.Log.Level)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			llmMgr, err := llm.NewManagerFromConfig(ctx, cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("creating llm manager: %w", err)
			}

			orch, _ := buildOrchestrator(ctx, cfg, llmMgr, logger)

			toolArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}
			if path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				if _, ok := toolArgs["content"]; !ok {
					toolArgs["content"] = string(data)
				}
			}

			ec := &contract.ExecContext{LLM: llmMgr, Progress: contract.NoopProgressSink{}}
			result := orch.ExecuteTool(ctx, ec, toolName, toolArgs)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(out))

			if contract.IsErrorResult(result) {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&toolName, "tool", "secret_scan", "tool name to run (e.g. secret_scan, dependency_guard, iac_guardrails_scan)")
	cmd.Flags().StringVar(&path, "path", "", "file to read as the tool's `content` argument")
	cmd.Flags().StringVar(&argsJSON, "args", "", "additional tool arguments as a JSON object")
	return cmd
}

// buildOrchestrator constructs every analysis tool and registers it into a
// fresh Orchestrator. It also returns the content package's refactoring
// tool so callers can inspect the auto-chain wiring; iac's remediation
// hook is already bound to it by the time this function returns.
func buildOrchestrator(watchCtx context.Context, cfg *config.Config, llmMgr *llm.Manager, logger *slog.Logger) (*orchestrator.Orchestrator, *content.RefactoringTool) {
	orch := orchestrator.New(8)
	p := parser.New()

	osvClient := httpclient.New(10*time.Second, 3, cfg.DependencyGuard.RateLimitPerSecond)
	osv := dependency.NewClient(osvClient, cfg.DependencyGuard.OSVEndpoint, cfg.DependencyGuard.PyPIEndpoint, cfg.DependencyGuard.NpmEndpoint)

	lists := dependency.NewListStore(cfg.DependencyGuard.BlocklistPath, cfg.DependencyGuard.AllowlistPath, logger)
	if err := lists.Watch(watchCtx); err != nil {
		logger.Warn("dependency guard list hot-reload disabled", "error", err)
	}

	refactoringTool := content.NewRefactoringTool(p)

	tools := []contract.Tool{
		dependency.New(osv, lists),
		secrets.New(),
		consistency.New(p),
		iac.New(refactoringTool.Core),
		impact.New(p),
		testrunner.New(),
		content.NewGenerationTool(p),
		content.NewExplanationTool(p),
		refactoringTool,
		content.NewDocumentationTool(p),
		content.NewTestGenerationTool(p),
	}

	for _, t := range tools {
		if !orch.RegisterTool(t) {
			logger.Warn("duplicate tool registration skipped", "tool", t.Descriptor().Name)
		}
	}

	return orch, refactoringTool
}

// sessionMaxIdle is how long a session context may go untouched before
// sessionPruneJob reclaims it.
const sessionMaxIdle = 24 * time.Hour

// sessionPruneJob implements scheduler.Job, periodically clearing out
// session contexts nobody has touched in sessionMaxIdle — otherwise a
// long-running server accumulates one file per abandoned session forever.
type sessionPruneJob struct {
	sessions *session.Manager
}

func (sessionPruneJob) Name() string { return "session_prune" }

func (j sessionPruneJob) Run(ctx context.Context) error {
	j.sessions.PruneIdle(sessionMaxIdle)
	return nil
}

func resolveVersion(configured string) string {
	if Version != "dev" {
		return Version
	}
	return configured
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
