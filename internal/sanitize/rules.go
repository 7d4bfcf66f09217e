package sanitize

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hpungsan/quip/internal/errors"
)

//go:embed rules.json
var defaultRulesJSON []byte

// Rules is the rule table driving the sanitizer.
// Phrases are checked before patterns; within each list, first match wins.
type Rules struct {
	Phrases             []PhraseRule  `json:"phrases"`
	Patterns            []PatternRule `json:"patterns"`
	GenericAlternatives []string      `json:"generic_alternatives"`
	GenericReason       string        `json:"generic_reason"`
}

// PhraseRule maps a problematic phrase to ranked alternatives (first = preferred).
type PhraseRule struct {
	Phrase       string   `json:"phrase"`
	Alternatives []string `json:"alternatives"`
	// Reason is optional; a reason naming the phrase is generated when empty.
	Reason string `json:"reason,omitempty"`
}

// PatternRule is a named regular expression matched case-insensitively.
type PatternRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// DefaultRules returns the embedded rule table.
func DefaultRules() (*Rules, error) {
	return parseRules(defaultRulesJSON, "embedded")
}

// LoadRules reads a rule table from a JSON file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRulesInvalid(path, err.Error())
	}
	return parseRules(data, path)
}

func parseRules(data []byte, source string) (*Rules, error) {
	rules := &Rules{}
	if err := json.Unmarshal(data, rules); err != nil {
		return nil, errors.NewRulesInvalid(source, err.Error())
	}
	if err := rules.validate(source); err != nil {
		return nil, err
	}
	return rules, nil
}

// validate checks the table is usable before compiling it.
func (r *Rules) validate(source string) error {
	for i, p := range r.Phrases {
		if strings.TrimSpace(p.Phrase) == "" {
			return errors.NewRulesInvalid(source, fmt.Sprintf("phrase %d is empty", i))
		}
		if len(p.Alternatives) == 0 {
			return errors.NewRulesInvalid(source, fmt.Sprintf("phrase %q has no alternatives", p.Phrase))
		}
	}
	for i, p := range r.Patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			return errors.NewRulesInvalid(source, fmt.Sprintf("pattern %d is empty", i))
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return errors.NewRulesInvalid(source, fmt.Sprintf("pattern %q does not compile: %v", p.Name, err))
		}
	}
	if len(r.Patterns) > 0 && len(r.GenericAlternatives) == 0 {
		return errors.NewRulesInvalid(source, "generic_alternatives must not be empty when patterns are set")
	}
	return nil
}
