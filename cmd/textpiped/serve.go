package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"textpipe/internal/common/fsutil"
	"textpipe/internal/config"
	"textpipe/internal/httpapi"
	"textpipe/internal/manager"
	"textpipe/internal/registry"
	"textpipe/pkg/pipeline"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Scan the models directory and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	f := cmd.Flags()
	f.String("config", envOr("TEXTPIPED_CONFIG", ""), "Config file (yaml, json or toml); flags override it")
	f.String("addr", envOr("TEXTPIPED_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	f.String("models-dir", envOr("TEXTPIPED_MODELS_DIR", "~/models/llm"), "Directory to scan for *.gguf model files")
	f.String("default-model", envOr("TEXTPIPED_DEFAULT_MODEL", ""), "Model served when a request omits one")
	f.String("default-task", envOr("TEXTPIPED_DEFAULT_TASK", ""), "Task assumed when a request omits one")
	f.Int("memory-budget-mb", 0, "Memory budget in MB across loaded pipelines (0 = unlimited)")
	f.Int("memory-margin-mb", 0, "Reserved memory margin in MB to keep free")
	f.Int("batch-size", 0, "Device-level batch size hint for new pipelines")
	f.Int("max-new-tokens", 0, "Default cap on generated tokens (0 = runtime default)")
	f.Int("max-queue-depth", 0, "Per-pipeline admission queue depth (0 = default)")
	f.Int("max-wait-ms", 0, "Max queue wait in milliseconds before 429 (0 = default)")
	f.Int("device", -1, "Accelerator index for new pipelines (-1 = CPU)")
	f.String("device-map", "", "Placement strategy, e.g. auto (exclusive with --device)")
	f.String("runtime", envOr("TEXTPIPED_RUNTIME", "llama"), "Model runtime: llama (in-process) or server")
	f.String("server-url", envOr("TEXTPIPED_SERVER_URL", ""), "Base URL of an OpenAI-compatible server (runtime=server)")
	f.String("server-api-key", envOr("TEXTPIPED_SERVER_API_KEY", ""), "API key sent to the server runtime")
	f.Int("context-size", 0, "Context window for in-process llama models (0 = default)")
	f.Int("threads", 0, "Generation threads for in-process llama models (0 = auto)")
	f.String("state-path", envOr("TEXTPIPED_STATE_PATH", ""), "File persisting least-recently-used metadata across restarts")
	f.String("log-level", envOr("TEXTPIPED_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	f.Bool("log-json", envOrBool("TEXTPIPED_LOG_JSON", false), "Emit JSON logs instead of console output")
	f.Int64("max-body-bytes", 0, "Request body cap in bytes (0 = 1 MiB)")
	f.Int64("generate-timeout-seconds", 0, "Per-request generation timeout (0 = none)")
	f.Bool("cors", false, "Enable CORS")
	f.String("cors-origins", "", "Comma-separated allowed CORS origins (empty = all)")
	f.String("cors-methods", "", "Comma-separated allowed CORS methods")
	f.String("cors-headers", "", "Comma-separated allowed CORS headers")
	return cmd
}

func runServe(cmd *cobra.Command) error {
	flags := cmd.Flags()

	var fileCfg config.Config
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		fileCfg = loaded
	}
	cfg := effectiveConfig(cmd, fileCfg)

	logJSON, _ := flags.GetBool("log-json")
	logLevel, _ := flags.GetString("log-level")
	logger := newLogger(logLevel, logJSON)

	modelsDir, err := fsutil.ExpandHome(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("resolve models dir: %w", err)
	}
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		return fmt.Errorf("scan models dir %s: %w", modelsDir, err)
	}
	if len(reg) == 0 {
		logger.Warn().Str("dir", modelsDir).Msg("no models found")
	}

	rt, err := selectRuntime(cfg, modelsDir)
	if err != nil {
		return err
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:      reg,
		BudgetMB:      cfg.MemoryBudgetMB,
		MarginMB:      cfg.MemoryMarginMB,
		DefaultModel:  cfg.DefaultModel,
		DefaultTask:   cfg.DefaultTask,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitMS) * time.Millisecond,
		BatchSize:     cfg.BatchSize,
		MaxNewTokens:  cfg.MaxNewTokens,
		Device:        cfg.Device,
		DeviceMap:     cfg.DeviceMap,
		Runtime:       rt,
		StatePath:     cfg.StatePath,
		Logger:        logger,
	})

	httpapi.SetLogger(logger)
	if n, _ := flags.GetInt64("max-body-bytes"); n > 0 {
		httpapi.SetMaxBodyBytes(n)
	}
	if sec, _ := flags.GetInt64("generate-timeout-seconds"); sec > 0 {
		httpapi.SetGenerateTimeoutSeconds(sec)
	}
	if on, _ := flags.GetBool("cors"); on {
		origins, _ := flags.GetString("cors-origins")
		methods, _ := flags.GetString("cors-methods")
		headers, _ := flags.GetString("cors-headers")
		httpapi.SetCORSOptions(true, splitCSV(origins), splitCSV(methods), splitCSV(headers))
	}

	// Long generations join this context; canceling it aborts them once the
	// graceful window has passed.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("models_dir", modelsDir).
			Int("models", len(reg)).
			Str("runtime", rt.Name()).
			Msg("textpiped listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	cancelBase()
	if err := mgr.Close(); err != nil {
		logger.Error().Err(err).Msg("close manager")
	}
	return nil
}

// effectiveConfig merges flag values over the file config. An explicitly set
// flag wins; otherwise a non-zero file value wins; otherwise the flag default
// applies (which carries the TEXTPIPED_* environment).
func effectiveConfig(cmd *cobra.Command, file config.Config) config.Config {
	out := file
	out.Addr = resolveString(cmd, "addr", file.Addr)
	out.ModelsDir = resolveString(cmd, "models-dir", file.ModelsDir)
	out.DefaultModel = resolveString(cmd, "default-model", file.DefaultModel)
	out.DefaultTask = resolveString(cmd, "default-task", file.DefaultTask)
	out.MemoryBudgetMB = resolveInt(cmd, "memory-budget-mb", file.MemoryBudgetMB)
	out.MemoryMarginMB = resolveInt(cmd, "memory-margin-mb", file.MemoryMarginMB)
	out.BatchSize = resolveInt(cmd, "batch-size", file.BatchSize)
	out.MaxNewTokens = resolveInt(cmd, "max-new-tokens", file.MaxNewTokens)
	out.MaxQueueDepth = resolveInt(cmd, "max-queue-depth", file.MaxQueueDepth)
	out.MaxWaitMS = resolveInt(cmd, "max-wait-ms", file.MaxWaitMS)
	out.DeviceMap = resolveString(cmd, "device-map", file.DeviceMap)
	out.Runtime = resolveString(cmd, "runtime", file.Runtime)
	out.ServerURL = resolveString(cmd, "server-url", file.ServerURL)
	out.ServerAPIKey = resolveString(cmd, "server-api-key", file.ServerAPIKey)
	out.ContextSize = resolveInt(cmd, "context-size", file.ContextSize)
	out.Threads = resolveInt(cmd, "threads", file.Threads)
	out.StatePath = resolveString(cmd, "state-path", file.StatePath)
	if cmd.Flags().Changed("device") {
		if d, _ := cmd.Flags().GetInt("device"); d >= 0 {
			out.Device = &d
		} else {
			out.Device = nil
		}
	}
	return out
}

func resolveString(cmd *cobra.Command, name, fromFile string) string {
	v, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) || fromFile == "" {
		return v
	}
	return fromFile
}

func resolveInt(cmd *cobra.Command, name string, fromFile int) int {
	v, _ := cmd.Flags().GetInt(name)
	if cmd.Flags().Changed(name) || fromFile == 0 {
		return v
	}
	return fromFile
}

// selectRuntime picks the model runtime. "llama" resolves to the in-process
// runtime when built with the llama tag, otherwise to a stub whose loads fail
// with a runtime-unavailable error.
func selectRuntime(cfg config.Config, modelsDir string) (pipeline.ModelRuntime, error) {
	switch cfg.Runtime {
	case "", "llama":
		return llamaRuntime(modelsDir, cfg.ContextSize, cfg.Threads), nil
	case "server":
		return pipeline.NewServerRuntime(pipeline.ServerRuntimeConfig{
			BaseURL: cfg.ServerURL,
			APIKey:  cfg.ServerAPIKey,
		})
	default:
		return nil, fmt.Errorf("unknown runtime %q (expected llama or server)", cfg.Runtime)
	}
}

// newLogger builds the process logger. Console output is the default; JSON
// suits log collectors.
func newLogger(level string, jsonOut bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if !jsonOut {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// splitCSV splits a comma-separated flag value, trimming spaces and dropping
// empty entries. An all-empty input yields nil.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
