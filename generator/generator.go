// Package generator drafts LinkedIn posts from a voice profile and a source
// article and estimates how well they will perform.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/polarbaker/LinkedOut-AiPostBot/provider"
)

// Generator turns (voice profile, article, post type) into a GeneratedPost.
// Nothing in it changes after New, so one Generator serves concurrent calls.
type Generator struct {
	gw      Gateway
	weights ScoringWeights
	synth   *Synthesizer
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Generator)

// WithScoringWeights installs a private copy of w; later changes to the
// caller's BaseScores map do not reach the generator.
func WithScoringWeights(w ScoringWeights) Option {
	w = w.clone()
	return func(g *Generator) { g.weights = w }
}

// WithRandSource pins the mock-mode randomness, mainly for tests.
func WithRandSource(src rand.Source) Option {
	return func(g *Generator) { g.synth = NewSynthesizer(src) }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func New(gw Gateway, opts ...Option) (*Generator, error) {
	if gw == nil {
		return nil, errors.New("llm gateway is required")
	}
	g := &Generator{
		gw:      gw,
		weights: DefaultScoringWeights(),
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.synth == nil {
		g.synth = NewSynthesizer(nil)
	}
	return g, nil
}

// Weights returns a copy of the active scoring weights.
func (g *Generator) Weights() ScoringWeights { return g.weights.clone() }

// Generate never returns an error: provider failures produce a degraded
// post, and mock mode produces a synthetic one.
func (g *Generator) Generate(ctx context.Context, profile VoiceProfile, article SourceArticle, postType PostType) GeneratedPost {
	profile = profile.WithDefaults()
	article = article.WithDefaults()
	now := g.now()

	if g.gw.IsMock() {
		g.log.Debug("[generator] Mock mode, composing synthetic post", "title", article.Title, "post_type", postType)
		return g.synth.Compose(article, postType, now)
	}

	prompt := BuildPostPrompt(profile, article, postType)
	raw, err := g.gw.CompleteChat(ctx, prompt.Messages(), prompt.MaxTokens)
	if err != nil {
		return g.degraded(article, postType, now, err)
	}
	content, err := PostProcess(raw)
	if err != nil {
		return g.degraded(article, postType, now, fmt.Errorf("%w: %v", provider.ErrEmptyResponse, err))
	}

	hashtags := g.extractHashtags(ctx, content, profile.IndustryLanguage)
	score := g.weights.Score(content, postType)

	g.log.Info("[generator] Post generated",
		"title", article.Title,
		"post_type", postType,
		"chars", len([]rune(content)),
		"engagement", score,
	)

	return GeneratedPost{
		ID:                  postID(article.Title, now),
		Content:             content,
		Hashtags:            hashtags,
		EstimatedEngagement: score,
		Source:              article.Source,
		SourceURL:           article.URL,
		SourceTitle:         article.Title,
		PostType:            postType,
		CreatedAt:           now,
		Status:              StatusPending,
	}
}

// extractHashtags asks the model for hashtags and falls back to a fixed set
// on any failure.
func (g *Generator) extractHashtags(ctx context.Context, content, industryTerms string) []string {
	prompt := BuildHashtagPrompt(content, industryTerms)
	raw, err := g.gw.CompleteChat(ctx, prompt.Messages(), prompt.MaxTokens)
	if err != nil {
		g.log.Warn("[generator] Hashtag generation failed, using fallback",
			"error", err, "failure", provider.Classify(err))
		return append([]string(nil), fallbackHashtags...)
	}
	tags, ok := ParseHashtagList(raw)
	if !ok {
		g.log.Warn("[generator] No hashtag list in model response, using fallback")
		return append([]string(nil), fallbackHashtags...)
	}
	return tags
}

func (g *Generator) degraded(article SourceArticle, postType PostType, now time.Time, err error) GeneratedPost {
	g.log.Error("[generator] Post generation failed, returning degraded post",
		"title", article.Title,
		"error", err,
		"failure", provider.Classify(err),
	)
	return GeneratedPost{
		ID:                  postID(article.Title, now),
		Content:             fmt.Sprintf("Error generating content for article: %s. Please try again.", article.Title),
		Hashtags:            append([]string(nil), errorHashtags...),
		EstimatedEngagement: 1.0,
		Source:              article.Source,
		SourceURL:           article.URL,
		SourceTitle:         article.Title,
		PostType:            postType,
		CreatedAt:           now,
		Status:              StatusPending,
	}
}

// postID is a name-based UUID over title and timestamp. Unique enough for a
// review queue, not meant to be unguessable.
func postID(title string, now time.Time) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(title+now.Format(time.RFC3339Nano))).String()
}
