// Package render turns post drafts into HTML for the review preview.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
)

// LinkedIn shows line breaks as typed, so single newlines must survive.
var md = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

var previewPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "span")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(post-preview|hashtags?)$`)).OnElements("article", "p", "span")
	return p
}()

var (
	headingRe = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	hashtagRe = regexp.MustCompile(`(^|[\s>])#([\p{L}\p{N}_]+)`)
)

// MarkdownToHTML converts a draft to HTML. Raw HTML in the draft is dropped
// by goldmark's default (safe) renderer.
func MarkdownToHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PostHTML renders a generated post as a sanitized preview fragment: body
// with linkified hashtags, followed by the hashtags not already in the body.
func PostHTML(post generator.GeneratedPost) (string, error) {
	body, err := MarkdownToHTML(post.Content)
	if err != nil {
		return "", fmt.Errorf("render post %s: %w", post.ID, err)
	}
	body = flattenHeadings(body)
	body = linkifyHashtags(body)

	var b strings.Builder
	b.WriteString(`<article class="post-preview">`)
	b.WriteString(body)
	if footer := missingHashtags(post.Content, post.Hashtags); len(footer) > 0 {
		b.WriteString(`<p class="hashtags">`)
		for i, tag := range footer {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, `<span class="hashtag">%s</span>`, html.EscapeString(tag))
		}
		b.WriteString("</p>")
	}
	b.WriteString("</article>")
	return previewPolicy.Sanitize(b.String()), nil
}

// flattenHeadings rewrites headings as bold paragraphs; a post has no
// document outline.
func flattenHeadings(s string) string {
	return headingRe.ReplaceAllStringFunc(s, func(block string) string {
		parts := headingRe.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		return fmt.Sprintf("<p><strong>%s</strong></p>", strings.TrimSpace(parts[2]))
	})
}

func linkifyHashtags(s string) string {
	return hashtagRe.ReplaceAllString(s, `$1<span class="hashtag">#$2</span>`)
}

func missingHashtags(content string, tags []string) []string {
	present := make(map[string]bool)
	for _, m := range hashtagRe.FindAllStringSubmatch(content, -1) {
		present[strings.ToLower(m[2])] = true
	}
	var out []string
	for _, tag := range tags {
		name := strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if name == "" || present[strings.ToLower(name)] {
			continue
		}
		present[strings.ToLower(name)] = true
		out = append(out, "#"+name)
	}
	return out
}
