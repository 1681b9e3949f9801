package generator

import (
	"fmt"
	"maps"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// LengthBand is a character-count range. Max is inclusive for the optimal
// band and exclusive for the acceptable band.
type LengthBand struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ScoringWeights holds every constant of the engagement heuristic so it can
// be recalibrated without touching the algorithm.
type ScoringWeights struct {
	BaseScores  map[PostType]float64 `yaml:"base_scores"`
	DefaultBase float64              `yaml:"default_base"`

	OptimalLength          LengthBand `yaml:"optimal_length"`
	AcceptableLength       LengthBand `yaml:"acceptable_length"`
	OptimalLengthFactor    float64    `yaml:"optimal_length_factor"`
	AcceptableLengthFactor float64    `yaml:"acceptable_length_factor"`
	OutOfBandLengthFactor  float64    `yaml:"out_of_band_length_factor"`

	QuestionFactor float64 `yaml:"question_factor"`

	HashtagMin           int     `yaml:"hashtag_min"`
	HashtagMax           int     `yaml:"hashtag_max"`
	HashtagInRangeFactor float64 `yaml:"hashtag_in_range_factor"`
	HashtagOverFactor    float64 `yaml:"hashtag_over_factor"`

	MinScore float64 `yaml:"min_score"`
	MaxScore float64 `yaml:"max_score"`
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		BaseScores: map[PostType]float64{
			ProfessionalInsight: 7.2,
			QuickUpdate:         5.8,
			QuestionStarter:     8.0,
			StoryFormat:         7.5,
			IndustryAnalysis:    6.9,
		},
		DefaultBase: 6.5,

		OptimalLength:          LengthBand{Min: 500, Max: 800},
		AcceptableLength:       LengthBand{Min: 400, Max: 1500},
		OptimalLengthFactor:    1.0,
		AcceptableLengthFactor: 0.8,
		OutOfBandLengthFactor:  0.6,

		QuestionFactor: 1.1,

		HashtagMin:           3,
		HashtagMax:           5,
		HashtagInRangeFactor: 1.2,
		HashtagOverFactor:    1.1,

		MinScore: 1,
		MaxScore: 10,
	}
}

// LoadScoringWeights reads a YAML file on top of the defaults; keys missing
// from the file keep their default value.
func LoadScoringWeights(path string) (ScoringWeights, error) {
	w := DefaultScoringWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read scoring config: %w", err)
	}
	w = w.clone()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return DefaultScoringWeights(), fmt.Errorf("parse scoring config %s: %w", path, err)
	}
	if w.MinScore > w.MaxScore {
		return DefaultScoringWeights(), fmt.Errorf("scoring config %s: min_score %.1f above max_score %.1f", path, w.MinScore, w.MaxScore)
	}
	return w, nil
}

// clone returns a copy that shares no map with w.
func (w ScoringWeights) clone() ScoringWeights {
	w.BaseScores = maps.Clone(w.BaseScores)
	return w
}

// Score is the engagement estimate of a finished post: base score of the
// post type times the length, question and hashtag factors, clamped to
// [MinScore, MaxScore] and rounded to one decimal. It is pure.
func (w ScoringWeights) Score(text string, postType PostType) float64 {
	base, ok := w.BaseScores[postType.Normalize()]
	if !ok {
		base = w.DefaultBase
	}
	score := base *
		w.lengthFactor(utf8.RuneCountInString(text)) *
		w.questionFactor(text) *
		w.hashtagFactor(countHashtags(text))

	score = math.Min(w.MaxScore, math.Max(w.MinScore, score))
	return math.Round(score*10) / 10
}

func (w ScoringWeights) lengthFactor(n int) float64 {
	switch {
	case n >= w.OptimalLength.Min && n <= w.OptimalLength.Max:
		return w.OptimalLengthFactor
	case n >= w.AcceptableLength.Min && n < w.AcceptableLength.Max:
		return w.AcceptableLengthFactor
	default:
		return w.OutOfBandLengthFactor
	}
}

func (w ScoringWeights) questionFactor(text string) float64 {
	if strings.Contains(text, "?") {
		return w.QuestionFactor
	}
	return 1.0
}

func (w ScoringWeights) hashtagFactor(n int) float64 {
	switch {
	case n >= w.HashtagMin && n <= w.HashtagMax:
		return w.HashtagInRangeFactor
	case n > w.HashtagMax:
		return w.HashtagOverFactor
	default:
		return 1.0
	}
}

// countHashtags counts whitespace-separated tokens that start with '#'
// followed by at least one more character.
func countHashtags(text string) int {
	n := 0
	for _, tok := range strings.Fields(text) {
		if len(tok) > 1 && tok[0] == '#' {
			n++
		}
	}
	return n
}
