package tags

import (
	"regexp"
	"strings"
)

// Tag is a single user-supplied tag.
// Hard tags must appear verbatim in generated lines; soft tags may be paraphrased.
type Tag struct {
	Text string `json:"text"`
	Hard bool   `json:"hard"`
}

// Arrays partitions tag texts by kind, preserving input order.
type Arrays struct {
	Hard []string `json:"hard"`
	Soft []string `json:"soft"`
}

// quotedRegex matches a token fully wrapped in double quotes.
var quotedRegex = regexp.MustCompile(`^".+"$`)

// curlyQuotes maps typographic quotes to their straight forms.
var curlyQuotes = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// Parse splits a comma-separated tag string into tags.
// A token is hard iff it is wrapped in double quotes or starts with '@'.
// Empty tokens are dropped; duplicates are kept.
func Parse(raw string) []Tag {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]Tag, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(curlyQuotes.Replace(part))
		if token == "" {
			continue
		}

		hard := quotedRegex.MatchString(token) || strings.HasPrefix(token, "@")
		text := cleanText(token)
		if text == "" {
			continue
		}
		result = append(result, Tag{Text: text, Hard: hard})
	}
	return result
}

// cleanText strips a leading '@' and wrapping quotes until neither remains.
func cleanText(token string) string {
	text := token
	for {
		prev := text
		text = strings.TrimPrefix(text, "@")
		text = strings.TrimLeft(text, `"'`)
		text = strings.TrimRight(text, `"'`)
		text = strings.TrimSpace(text)
		if text == prev {
			return text
		}
	}
}

// GetArrays parses raw and partitions the tags by the Hard flag.
func GetArrays(raw string) Arrays {
	return Split(Parse(raw))
}

// Split partitions already-parsed tags by the Hard flag.
func Split(tags []Tag) Arrays {
	arrays := Arrays{Hard: []string{}, Soft: []string{}}
	for _, t := range tags {
		if t.Hard {
			arrays.Hard = append(arrays.Hard, t.Text)
		} else {
			arrays.Soft = append(arrays.Soft, t.Text)
		}
	}
	return arrays
}

// FromArrays converts the pre-structured {hard, soft} form into tags.
// Entries are cleaned like parsed tokens; blank entries are dropped.
// Hard tags come first.
func FromArrays(a Arrays) []Tag {
	result := make([]Tag, 0, len(a.Hard)+len(a.Soft))
	for _, h := range a.Hard {
		if text := cleanText(curlyQuotes.Replace(h)); text != "" {
			result = append(result, Tag{Text: text, Hard: true})
		}
	}
	for _, s := range a.Soft {
		if text := cleanText(curlyQuotes.Replace(s)); text != "" {
			result = append(result, Tag{Text: text, Hard: false})
		}
	}
	return result
}

// Join renders tags back into a comma-separated string, marking hard tags with '@'.
func Join(tags []Tag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Hard {
			parts = append(parts, "@"+t.Text)
		} else {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, ", ")
}

// Texts returns the text of each tag, in order.
func Texts(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Text
	}
	return out
}
