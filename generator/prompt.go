package generator

import (
	"fmt"
	"strings"

	"github.com/polarbaker/LinkedOut-AiPostBot/provider"
)

const (
	postMaxTokens    = 800
	hashtagMaxTokens = 150

	promptContentLimit  = 2000
	hashtagContentLimit = 1000

	postSystemPrompt    = "You are an expert LinkedIn content creator who specializes in mimicking personal writing styles."
	hashtagSystemPrompt = "You generate relevant hashtags for LinkedIn content."
)

// Prompt is the set of messages sent to the model for one call.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Messages flattens the prompt into the ordered role-tagged list the
// gateway expects.
func (p Prompt) Messages() []provider.Message {
	msgs := make([]provider.Message, 0, 2)
	if p.System != "" {
		msgs = append(msgs, provider.Message{Role: provider.RoleSystem, Content: p.System})
	}
	return append(msgs, provider.Message{Role: provider.RoleUser, Content: p.User})
}

// BuildPostPrompt builds the main generation prompt. Inputs are expected to
// have their defaults applied already.
func BuildPostPrompt(profile VoiceProfile, article SourceArticle, postType PostType) Prompt {
	var sb strings.Builder
	sb.WriteString("Create a LinkedIn post based on the following article:\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
	sb.WriteString(fmt.Sprintf("Source: %s\n", article.Source))
	sb.WriteString(fmt.Sprintf("Content: %s\n", truncate(article.Body(), promptContentLimit)))
	sb.WriteString(fmt.Sprintf("URL: %s\n\n", article.URL))

	sb.WriteString("The post should match the following personal writing style:\n")
	sb.WriteString(fmt.Sprintf("- Tone: %s\n", profile.Tone))
	sb.WriteString(fmt.Sprintf("- Vocabulary patterns: %s\n", profile.Vocabulary))
	sb.WriteString(fmt.Sprintf("- Sentence structure: %s\n", profile.SentenceStructure))
	sb.WriteString(fmt.Sprintf("- Emoji usage: %s\n", profile.EmojiUsage))
	sb.WriteString(fmt.Sprintf("- Industry-specific language: %s\n\n", profile.IndustryLanguage))

	pt := postType.Normalize()
	sb.WriteString(fmt.Sprintf("Post type: %s - %s\n\n", pt, pt.Directive()))

	sb.WriteString("Requirements:\n")
	sb.WriteString("1. The post should be 900-1200 characters long\n")
	sb.WriteString("2. Include 3-5 relevant hashtags at the end\n")
	sb.WriteString("3. Maintain the authentic voice based on the style profile\n")
	sb.WriteString("4. Include a brief introduction to provide context\n")
	sb.WriteString("5. End with a call-to-action or conversation starter\n")
	sb.WriteString(fmt.Sprintf("6. If appropriate for the writing style (emoji usage: %s), include relevant emojis\n", profile.EmojiUsage))
	sb.WriteString("7. DO NOT include \"Title:\" or any other metadata in the post\n\n")
	sb.WriteString("Write only the LinkedIn post content, nothing else.")

	return Prompt{
		System:    postSystemPrompt,
		User:      sb.String(),
		MaxTokens: postMaxTokens,
	}
}

// BuildHashtagPrompt asks for 3-5 hashtags as a list literal.
func BuildHashtagPrompt(content, industryTerms string) Prompt {
	var sb strings.Builder
	sb.WriteString("Generate 3-5 relevant LinkedIn hashtags based on the following content:\n\n")
	sb.WriteString(fmt.Sprintf("Content: %s\n\n", truncate(content, hashtagContentLimit)))
	sb.WriteString(fmt.Sprintf("Industry terms to consider: %s\n\n", industryTerms))
	sb.WriteString(`Return only the hashtags as a list of strings, for example ["#One", "#Two", "#Three"]. Include the # symbol.`)

	return Prompt{
		System:    hashtagSystemPrompt,
		User:      sb.String(),
		MaxTokens: hashtagMaxTokens,
	}
}

// truncate cuts s to limit runes and marks the cut with "...".
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
