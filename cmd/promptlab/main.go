package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/promptlab/internal/catalog"
	"github.com/pavelanni/promptlab/internal/handler"
	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/practice"
	"github.com/pavelanni/promptlab/internal/simulator"
	"github.com/pavelanni/promptlab/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "promptlab",
		Short:        "Practice writing prompts that help AI tutors teach",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, scoreCmd(), buildCmd(), tryCmd(), catalogCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `promptlab --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

// addProviderFlags registers the live LLM settings shared by serve and try.
func addProviderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("openai-key", "", "Default OpenAI API key")
	f.String("anthropic-key", "", "Default Anthropic API key")
	f.String("groq-key", "", "Default Groq API key")
	f.String("hf-token", "", "Optional Hugging Face token")
	f.String("ollama-url", llm.DefaultOllamaURL, "Ollama server URL")
	f.String("bedrock-region", "", "AWS region for Bedrock (empty disables Bedrock)")
	f.String("bedrock-model", llm.DefaultBedrockModel, "Bedrock model ID")
	f.Duration("sim-delay-min", time.Second, "Minimum simulated response delay")
	f.Duration("sim-delay-max", 3*time.Second, "Maximum simulated response delay")
	f.Uint64("seed", 0, "Seed for simulated responses (0 = random)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", store.MemoryDSN, "SQLite DSN for session data (default keeps everything in memory)")
	f.StringP("lang", "l", "en", "Fallback UI language (en, es)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /learn)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.Duration("session-ttl", store.DefaultSessionTTL, "Lifetime of a browsing session")
	addProviderFlags(cmd)
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PROMPTLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("promptlab")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/promptlab")
	v.AddConfigPath("/etc/promptlab")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// newGateway registers every provider and the configured default keys.
func newGateway(v *viper.Viper) *llm.Gateway {
	gw := llm.NewGateway(
		llm.NewOpenAI(""),
		llm.NewGroq(""),
		llm.NewAnthropic(""),
		llm.NewOllama(v.GetString("ollama-url")),
		llm.NewHuggingFace(""),
	)
	if region := v.GetString("bedrock-region"); region != "" {
		gw.Register(llm.NewBedrock(region, v.GetString("bedrock-model")))
	}
	for id, key := range map[string]string{
		"openai":      "openai-key",
		"anthropic":   "anthropic-key",
		"groq":        "groq-key",
		"huggingface": "hf-token",
	} {
		gw.SetCredential(id, v.GetString(key))
	}
	return gw
}

func newSimulator(v *viper.Viper) *simulator.Generator {
	minDelay, maxDelay := v.GetDuration("sim-delay-min"), v.GetDuration("sim-delay-max")
	if seed := v.GetUint64("seed"); seed != 0 {
		return simulator.NewSeeded(seed, minDelay, maxDelay)
	}
	return simulator.New(simulator.Options{MinDelay: minDelay, MaxDelay: maxDelay})
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	gw := newGateway(v)
	ollama := llm.NewOllama(v.GetString("ollama-url"))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := ollama.Ping(ctx); err != nil {
		slog.Info("Ollama not reachable, live Ollama tests will report errors", "url", ollama.Endpoint(), "error", err)
	} else {
		slog.Info("Ollama endpoint OK", "url", ollama.Endpoint())
	}
	cancel()

	runner := practice.NewRunner(newSimulator(v), gw)
	h := handler.New(db, cat, runner, gw, model.AppConfig{
		BasePath:      v.GetString("base-path"),
		SecureCookies: v.GetBool("secure-cookies"),
		SessionTTL:    v.GetDuration("session-ttl"),
	})

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"db", v.GetString("db"),
		"base_path", v.GetString("base-path"),
		"session_ttl", v.GetDuration("session-ttl"),
		"bedrock", v.GetString("bedrock-region") != "",
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
