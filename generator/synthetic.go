package generator

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	syntheticMinEngagement = 7.0
	syntheticMaxEngagement = 9.5
)

var syntheticTemplates = map[PostType][2]string{
	ProfessionalInsight: {
		"I just came across this fascinating article on {title}. It's a great reminder that {insight}. What are your thoughts on this approach? {url}",
		"Having worked in this field for years, the insights from this article on {title} align with what I've observed. Key takeaway: {insight}. #ThoughtLeadership {url}",
	},
	QuickUpdate: {
		"Quick industry update: {title} - {insight} Read more: {url}",
		"Just saw this and had to share: {title} - What caught my attention was {insight}. {url}",
	},
	QuestionStarter: {
		"After reading this article on {title}, I'm curious: {question} What's your experience with this? {url}",
		"This got me thinking: {question} - The article that sparked this question: {title}. {url}",
	},
	StoryFormat: {
		"When I first started in this industry, {insight} wasn't common knowledge. Now, as this article on {title} shows, it's becoming standard practice. Here's what I've learned along the way... {url}",
		"I remember when {insight} was considered radical thinking. Now it's mainstream as shown in this piece on {title}. {url}",
	},
	IndustryAnalysis: {
		"Looking at the trends discussed in this article on {title}, three key patterns emerge: 1) {insight} 2) Increasing focus on innovation 3) Shift toward sustainable practices. What other patterns are you noticing? {url}",
		"Market analysis: This piece on {title} highlights {insight}. I'm seeing similar patterns across the sector. Thoughts? {url}",
	},
}

var syntheticInsights = [...]string{
	"focusing on customer experience drives better long-term results",
	"data-driven decision making is essential for growth",
	"adaptability is becoming the most valued organizational trait",
	"building authentic relationships is still the foundation of business success",
	"innovation happens at the intersection of different disciplines",
}

var syntheticQuestions = [...]string{
	"How are you implementing these ideas in your organization?",
	"Do you think this trend will continue over the next 5 years?",
	"What's been your biggest challenge when applying similar approaches?",
	"How does this compare to your experience in the industry?",
	"Is this a game-changer or just another passing trend?",
}

var syntheticHashtags = [...]string{"#Innovation", "#Leadership", "#ProfessionalDevelopment", "#Industry"}

// Synthesizer fills fixed templates to produce posts without a language
// model. The random source is the only shared state and is locked per call.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer uses src for every random choice; nil seeds a PCG source
// from the runtime's entropy.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Synthesizer{rng: rand.New(src)}
}

// Compose builds a post for the (already defaulted) article. It performs no
// I/O and cannot fail.
func (s *Synthesizer) Compose(article SourceArticle, postType PostType, now time.Time) GeneratedPost {
	s.mu.Lock()
	templates := syntheticTemplates[postType.Normalize()]
	template := templates[s.rng.IntN(len(templates))]
	insight := syntheticInsights[s.rng.IntN(len(syntheticInsights))]
	question := syntheticQuestions[s.rng.IntN(len(syntheticQuestions))]

	span := syntheticMaxEngagement - syntheticMinEngagement
	engagement := math.Round((syntheticMinEngagement+s.rng.Float64()*span)*10) / 10

	tags := syntheticHashtags
	s.rng.Shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })
	count := 3 + s.rng.IntN(2)
	s.mu.Unlock()

	content := strings.NewReplacer(
		"{title}", article.Title,
		"{insight}", insight,
		"{question}", question,
		"{url}", article.URL,
	).Replace(template)

	return GeneratedPost{
		ID:                  postID(article.Title, now),
		Content:             strings.TrimSpace(content),
		Hashtags:            append([]string(nil), tags[:count]...),
		EstimatedEngagement: engagement,
		Source:              article.Source,
		SourceURL:           article.URL,
		SourceTitle:         article.Title,
		PostType:            postType,
		CreatedAt:           now,
		Status:              StatusPending,
	}
}
