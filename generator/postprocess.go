package generator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	minHashtags = 3
	maxHashtags = 5
)

var (
	fallbackHashtags = []string{"#leadership", "#innovation", "#professional"}
	errorHashtags    = []string{"#error"}

	// first bracketed substring, non-greedy, may span lines
	listPattern = regexp.MustCompile(`(?s)\[.*?\]`)
)

// PostProcess trims the model output and rejects an empty completion.
func PostProcess(raw string) (string, error) {
	post := strings.TrimSpace(raw)
	if post == "" {
		return "", errors.New("model returned empty post")
	}
	return post, nil
}

// ParseHashtagList extracts hashtags from the first list literal found in
// text. It accepts JSON arrays as well as single-quoted lists, prefixes
// missing '#', drops blanks and duplicates and keeps at most five tags.
// ok is false when the first list holds fewer than three usable tags.
func ParseHashtagList(text string) (tags []string, ok bool) {
	literal := listPattern.FindString(text)
	if literal == "" {
		return nil, false
	}

	var items []string
	if gjson.Valid(literal) {
		for _, r := range gjson.Parse(literal).Array() {
			if r.Type == gjson.String {
				items = append(items, r.String())
			}
		}
	} else {
		inner := literal[1 : len(literal)-1]
		for _, raw := range strings.Split(inner, ",") {
			items = append(items, strings.Trim(strings.TrimSpace(raw), `"'`))
		}
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		tag := normalizeHashtag(item)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == maxHashtags {
			break
		}
	}
	if len(tags) < minHashtags {
		return nil, false
	}
	return tags, true
}

func normalizeHashtag(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), "#")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return ""
	}
	return "#" + s
}
