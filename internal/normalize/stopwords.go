package normalize

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed stopwords_en.txt
var embeddedStopwords []byte

// Stopwords is a case-insensitive word set.
type Stopwords map[string]struct{}

// DefaultStopwords returns the embedded English stopword set.
func DefaultStopwords() Stopwords {
	return parseStopwords(embeddedStopwords)
}

// LoadStopwords reads a stopword file, one word per line. Blank lines and
// lines starting with # are ignored.
func LoadStopwords(path string) (Stopwords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords file: %w", err)
	}

	return parseStopwords(data), nil
}

func parseStopwords(data []byte) Stopwords {
	set := make(Stopwords)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}

		set[strings.ToLower(word)] = struct{}{}
	}

	return set
}

// Contains reports whether a word is in the set, ignoring case.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]

	return ok
}
