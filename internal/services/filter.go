package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"unicode"
)

// Default terms used when no blocklist is configured.
var defaultBlockedWords = []string{
	"spamlink",
	"slur1",
	"slur2",
}

// Filter is the content admissibility gate for posts, comments and chat
// messages. Check is a pure function over the configured blocklist: no I/O,
// no side effects.
type Filter struct {
	words   map[string]struct{} // single tokens, matched whole-word
	phrases []string            // terms with spaces, matched as substrings
}

var (
	filterInstance *Filter
	filterOnce     sync.Once
)

// GetFilter returns the singleton filter, configured from BLOCKLIST_FILE
// (one term per line, # comments) or BLOCKED_WORDS (comma separated),
// falling back to the built-in list.
func GetFilter() *Filter {
	filterOnce.Do(func() {
		filterInstance = NewFilter(loadBlocklist())
	})
	return filterInstance
}

func NewFilter(terms []string) *Filter {
	f := &Filter{words: make(map[string]struct{})}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if strings.ContainsRune(t, ' ') {
			f.phrases = append(f.phrases, t)
		} else {
			f.words[t] = struct{}{}
		}
	}
	return f
}

func loadBlocklist() []string {
	if path := os.Getenv("BLOCKLIST_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read blocklist file %s: %v, using defaults", path, err)
			return defaultBlockedWords
		}
		var terms []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			terms = append(terms, line)
		}
		return terms
	}

	if words := os.Getenv("BLOCKED_WORDS"); words != "" {
		return strings.Split(words, ",")
	}

	return defaultBlockedWords
}

// Check reports whether text is admissible. When it is not, reason names the
// offending term.
func (f *Filter) Check(text string) (clean bool, reason string) {
	lower := strings.ToLower(text)

	for _, token := range strings.FieldsFunc(lower, isWordBreak) {
		if _, blocked := f.words[token]; blocked {
			return false, fmt.Sprintf("content contains a blocked term: %q", token)
		}
	}

	for _, phrase := range f.phrases {
		if strings.Contains(lower, phrase) {
			return false, fmt.Sprintf("content contains a blocked term: %q", phrase)
		}
	}

	return true, ""
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
