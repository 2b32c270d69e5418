package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/resumeforge/reconcile/internal/types"
)

// Pre-compiled patterns for cleaning model output. Models occasionally wrap
// the JSON in code fences or prose despite being told not to.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)`{3}(?:json)?\\s*\\n?([\\s\\S]*?)\\n?`{3}")
	jsonObjectRegex    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// ParseRecord parses the extraction service's response text into a
// candidate record. Strategy sequence:
//  1. Direct JSON parse
//  2. Strip code fences and retry
//  3. Extract the outermost JSON object, fix trailing commas, and retry
func ParseRecord(text string) (*types.CandidateRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	if record, err := tryParse(text); err == nil {
		return record, nil
	}

	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		if record, err := tryParse(strings.TrimSpace(m[1])); err == nil {
			return record, nil
		}
	}

	if m := jsonObjectRegex.FindString(text); m != "" {
		cleaned := trailingCommaRegex.ReplaceAllString(m, "$1")
		if record, err := tryParse(cleaned); err == nil {
			return record, nil
		}
	}

	snippet := text
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return nil, fmt.Errorf("response is not a candidate record: %q", snippet)
}

func tryParse(text string) (*types.CandidateRecord, error) {
	var record types.CandidateRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, err
	}
	return &record, nil
}
