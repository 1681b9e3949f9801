package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/polarbaker/LinkedOut-AiPostBot/config"
	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
	"github.com/polarbaker/LinkedOut-AiPostBot/provider"
	"github.com/polarbaker/LinkedOut-AiPostBot/server"
	"github.com/polarbaker/LinkedOut-AiPostBot/workflow"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envPath := flag.String("config", ".env", "path to .env file")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides PORT)")
	verbose := flag.Bool("v", false, "enable debug logs")

	title := flag.String("title", "", "article title")
	content := flag.String("content", "", "article content")
	summary := flag.String("summary", "", "article summary, used when content is empty")
	url := flag.String("url", "", "article url")
	source := flag.String("source", "", "article source name")
	postType := flag.String("type", string(generator.ProfessionalInsight), "post type")

	tone := flag.String("tone", "", "voice tone")
	vocabulary := flag.String("vocabulary", "", "vocabulary patterns")
	structure := flag.String("structure", "", "sentence structure")
	emoji := flag.String("emoji", "", "emoji usage")
	industry := flag.String("industry", "", "industry-specific language")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := provider.Resolve(ctx, provider.Settings{
		Provider:      cfg.LLM.Provider,
		OpenAIKey:     cfg.LLM.OpenAIKey,
		OpenAIModel:   cfg.LLM.OpenAIModel,
		OpenAIBaseURL: cfg.LLM.OpenAIBaseURL,
		GeminiKey:     cfg.LLM.GeminiKey,
		GeminiModel:   cfg.LLM.GeminiModel,
		ForceMock:     cfg.LLM.MockMode,
	})
	defer gw.Close()

	opts := []generator.Option{}
	if cfg.ScoringConfig != "" {
		weights, err := generator.LoadScoringWeights(cfg.ScoringConfig)
		if err != nil {
			slog.Error("Failed to load scoring config", "path", cfg.ScoringConfig, "error", err)
			os.Exit(1)
		}
		opts = append(opts, generator.WithScoringWeights(weights))
	}
	gen, err := generator.New(gw, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serve {
		listen := *addr
		if listen == "" {
			listen = net.JoinHostPort("", cfg.Port)
		}
		if err := runServer(ctx, listen, gen, gw, cfg); err != nil {
			slog.Error("Server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if *title == "" && *content == "" && *summary == "" {
		fmt.Fprintln(os.Stderr, "--title, --content or --summary is required (or use --serve)")
		os.Exit(1)
	}

	profile := generator.VoiceProfile{
		Tone:              *tone,
		Vocabulary:        *vocabulary,
		SentenceStructure: *structure,
		EmojiUsage:        *emoji,
		IndustryLanguage:  *industry,
	}
	article := generator.SourceArticle{
		Title:   *title,
		Content: *content,
		Summary: *summary,
		URL:     *url,
		Source:  *source,
	}

	slog.Info("[cli] Generating post", "title", article.Title, "post_type", *postType, "provider", gw.Kind(), "mock", gw.IsMock())
	post := gen.Generate(ctx, profile, article, generator.PostType(*postType))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(post); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, listen string, gen *generator.Generator, gw *provider.Gateway, cfg *config.Config) error {
	srv, err := server.New(gen, workflow.NewQueue(), gw, cfg)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting web server", "addr", listen, "provider", gw.Kind(), "mock", gw.IsMock())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutdown started, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
