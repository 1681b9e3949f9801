package generator

import (
	"strings"
	"time"
)

// VoiceProfile describes a user's writing style. Empty fields fall back to
// neutral defaults through WithDefaults.
type VoiceProfile struct {
	Tone              string `json:"tone,omitempty"`
	Vocabulary        string `json:"vocabulary,omitempty"`
	SentenceStructure string `json:"sentenceStructure,omitempty"`
	EmojiUsage        string `json:"emojiUsage,omitempty"`
	IndustryLanguage  string `json:"industryLanguage,omitempty"`
}

func (v VoiceProfile) WithDefaults() VoiceProfile {
	v.Tone = orDefault(v.Tone, "professional")
	v.Vocabulary = orDefault(v.Vocabulary, "standard professional vocabulary")
	v.SentenceStructure = orDefault(v.SentenceStructure, "varied")
	v.EmojiUsage = orDefault(v.EmojiUsage, "minimal")
	v.IndustryLanguage = orDefault(v.IndustryLanguage, "general")
	return v
}

// SourceArticle is one piece of external content to summarise.
type SourceArticle struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
}

func (a SourceArticle) WithDefaults() SourceArticle {
	a.Title = orDefault(a.Title, "Recent industry developments")
	a.Source = orDefault(a.Source, "Article")
	return a
}

// Body is the article content, or its summary when the content is empty.
func (a SourceArticle) Body() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	return a.Summary
}

// PostType is the rhetorical shape of a generated post.
type PostType string

const (
	ProfessionalInsight PostType = "Professional Insight"
	QuickUpdate         PostType = "Quick Update"
	QuestionStarter     PostType = "Question Starter"
	StoryFormat         PostType = "Story Format"
	IndustryAnalysis    PostType = "Industry Analysis"
)

var postTypeDirectives = map[PostType]string{
	ProfessionalInsight: "Share professional expertise with a thought leadership angle",
	QuickUpdate:         "Brief status update on professional activities or industry trends",
	QuestionStarter:     "Ask an engaging question to start a conversation with your network",
	StoryFormat:         "Share a narrative about a professional experience or learning",
	IndustryAnalysis:    "Analyze recent industry developments with your expert perspective",
}

// PostTypes lists the known post types in display order.
func PostTypes() []PostType {
	return []PostType{ProfessionalInsight, QuickUpdate, QuestionStarter, StoryFormat, IndustryAnalysis}
}

// Normalize maps unknown values to ProfessionalInsight.
func (p PostType) Normalize() PostType {
	if _, ok := postTypeDirectives[p]; ok {
		return p
	}
	return ProfessionalInsight
}

func (p PostType) Directive() string {
	return postTypeDirectives[p.Normalize()]
}

// Status is where a post sits in the approval workflow. Generation only
// ever produces StatusPending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusScheduled Status = "scheduled"
	StatusRejected  Status = "rejected"
)

// GeneratedPost is the result of one generation call. Its JSON form is the
// contract with the approval queue and the UI.
type GeneratedPost struct {
	ID                  string    `json:"id"`
	Content             string    `json:"content"`
	Hashtags            []string  `json:"hashtags"`
	EstimatedEngagement float64   `json:"estimatedEngagement"`
	Source              string    `json:"source,omitempty"`
	SourceURL           string    `json:"sourceUrl"`
	SourceTitle         string    `json:"sourceTitle"`
	PostType            PostType  `json:"postType"`
	CreatedAt           time.Time `json:"createdAt"`
	Status              Status    `json:"status"`
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
