package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
)

func TestMarkdownToHTML_KeepsLineBreaks(t *testing.T) {
	out, err := MarkdownToHTML("first line\nsecond line")
	require.NoError(t, err)

	assert.Contains(t, out, "first line<br")
	assert.Contains(t, out, "second line</p>")
}

func TestMarkdownToHTML_DropsRawHTML(t *testing.T) {
	out, err := MarkdownToHTML("hello <script>alert(1)</script>")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
}

func TestPostHTML(t *testing.T) {
	post := generator.GeneratedPost{
		ID:       "p1",
		Content:  "## Big news\nWhat do you think? #AI #Tech",
		Hashtags: []string{"#ai", "#Cloud", "Data", "#cloud", " "},
	}

	out, err := PostHTML(post)
	require.NoError(t, err)

	assert.Contains(t, out, `<article class="post-preview">`)
	assert.Contains(t, out, "<p><strong>Big news</strong></p>")
	assert.NotContains(t, out, "<h2")
	assert.Contains(t, out, `<span class="hashtag">#AI</span>`)
	assert.Contains(t, out, `<span class="hashtag">#Tech</span>`)
	assert.Contains(t, out, `<p class="hashtags"><span class="hashtag">#Cloud</span> <span class="hashtag">#Data</span></p>`)
	assert.NotContains(t, out, `<span class="hashtag">#ai</span>`)
}

func TestPostHTML_NoFooterWhenAllTagsInline(t *testing.T) {
	out, err := PostHTML(generator.GeneratedPost{
		Content:  "Shipping today #Launch",
		Hashtags: []string{"#Launch"},
	})
	require.NoError(t, err)

	assert.NotContains(t, out, `class="hashtags"`)
	assert.Contains(t, out, `<span class="hashtag">#Launch</span>`)
}

func TestLinkifyHashtags_IgnoresFragmentsAndEntities(t *testing.T) {
	in := `<p>see https://x.test/a#b and it&#39;s #Go</p>`
	assert.Equal(t, `<p>see https://x.test/a#b and it&#39;s <span class="hashtag">#Go</span></p>`, linkifyHashtags(in))
}

func TestPostHTML_StripsUnsafeMarkup(t *testing.T) {
	out, err := PostHTML(generator.GeneratedPost{
		Content:  "[click](javascript:alert(1)) and <img src=x onerror=alert(1)>",
		Hashtags: []string{`#ok"><script>`},
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "<script>")
}
