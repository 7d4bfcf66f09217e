package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// Suggestion flags an unsafe tag and proposes replacements.
// OriginalTag is never modified.
type Suggestion struct {
	OriginalTag           string   `json:"original_tag"`
	SuggestedAlternatives []string `json:"suggested_alternatives"`
	Reason                string   `json:"reason"`
}

// ListResult partitions a tag list: every input tag lands in exactly one field.
type ListResult struct {
	SafeTags    []string     `json:"safe_tags"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Validation is the as-you-type view of a single tag.
type Validation struct {
	IsValid     bool     `json:"is_valid"`
	Warning     string   `json:"warning,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type phrase struct {
	text         string
	alternatives []string
	reason       string
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// Sanitizer matches tags against a compiled rule table.
// It is read-only after New and safe for concurrent use.
type Sanitizer struct {
	phrases             []phrase
	patterns            []pattern
	genericAlternatives []string
	genericReason       string
}

// New compiles rules into a Sanitizer.
func New(rules *Rules) (*Sanitizer, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules must not be nil")
	}
	if err := rules.validate("rules"); err != nil {
		return nil, err
	}

	s := &Sanitizer{
		genericAlternatives: append([]string(nil), rules.GenericAlternatives...),
		genericReason:       rules.GenericReason,
	}
	if s.genericReason == "" {
		s.genericReason = "Contains potentially sensitive content"
	}

	for _, p := range rules.Phrases {
		text := strings.ToLower(strings.TrimSpace(p.Phrase))
		reason := p.Reason
		if reason == "" {
			reason = fmt.Sprintf("The phrase %q may come across as offensive or stereotyping", text)
		}
		s.phrases = append(s.phrases, phrase{
			text:         text,
			alternatives: append([]string(nil), p.Alternatives...),
			reason:       reason,
		})
	}

	for _, p := range rules.Patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p.Name, err)
		}
		s.patterns = append(s.patterns, pattern{name: p.Name, re: re})
	}

	return s, nil
}

// NewDefault returns a Sanitizer over the embedded rule table.
func NewDefault() (*Sanitizer, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return New(rules)
}

// SanitizeTag returns a suggestion for an unsafe tag, or nil if the tag is safe.
// Phrase table first, then patterns; first match wins.
func (s *Sanitizer) SanitizeTag(tag string) *Suggestion {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if lower == "" {
		return nil
	}

	for _, p := range s.phrases {
		if strings.Contains(lower, p.text) {
			return &Suggestion{
				OriginalTag:           tag,
				SuggestedAlternatives: append([]string(nil), p.alternatives...),
				Reason:                p.reason,
			}
		}
	}

	for _, p := range s.patterns {
		if p.re.MatchString(lower) {
			return &Suggestion{
				OriginalTag:           tag,
				SuggestedAlternatives: append([]string(nil), s.genericAlternatives...),
				Reason:                s.genericReason,
			}
		}
	}

	return nil
}

// SanitizeTagList splits tags into safe ones and suggestions, preserving order.
func (s *Sanitizer) SanitizeTagList(tags []string) ListResult {
	result := ListResult{
		SafeTags:    make([]string, 0, len(tags)),
		Suggestions: make([]Suggestion, 0),
	}
	for _, tag := range tags {
		if sug := s.SanitizeTag(tag); sug != nil {
			result.Suggestions = append(result.Suggestions, *sug)
			continue
		}
		result.SafeTags = append(result.SafeTags, tag)
	}
	return result
}

// ValidateTagInput reports whether a single tag is acceptable as typed.
func (s *Sanitizer) ValidateTagInput(input string) Validation {
	sug := s.SanitizeTag(input)
	if sug == nil {
		return Validation{IsValid: true}
	}
	return Validation{
		IsValid:     false,
		Warning:     sug.Reason,
		Suggestions: sug.SuggestedAlternatives,
	}
}

// SanitizeText scans free text, such as a generated caption line, and returns
// one suggestion per matching rule. OriginalTag holds the matched span.
func (s *Sanitizer) SanitizeText(text string) []Suggestion {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var found []Suggestion
	for _, p := range s.phrases {
		idx := strings.Index(lower, p.text)
		if idx < 0 {
			continue
		}
		matched := p.text
		// Slice the original only when lowering kept byte offsets intact.
		if len(lower) == len(text) {
			matched = text[idx : idx+len(p.text)]
		}
		found = append(found, Suggestion{
			OriginalTag:           matched,
			SuggestedAlternatives: append([]string(nil), p.alternatives...),
			Reason:                p.reason,
		})
	}

	for _, p := range s.patterns {
		loc := p.re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		matched := lower[loc[0]:loc[1]]
		if len(lower) == len(text) {
			matched = text[loc[0]:loc[1]]
		}
		found = append(found, Suggestion{
			OriginalTag:           matched,
			SuggestedAlternatives: append([]string(nil), s.genericAlternatives...),
			Reason:                s.genericReason,
		})
	}

	return found
}

// PatternNames lists the compiled pattern names in match order.
func (s *Sanitizer) PatternNames() []string {
	names := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		names[i] = p.name
	}
	return names
}

// Phrases lists the phrase table entries in match order.
func (s *Sanitizer) Phrases() []PhraseRule {
	out := make([]PhraseRule, len(s.phrases))
	for i, p := range s.phrases {
		out[i] = PhraseRule{
			Phrase:       p.text,
			Alternatives: append([]string(nil), p.alternatives...),
			Reason:       p.reason,
		}
	}
	return out
}
