package textstat

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
)

// StopWordList names one of the embedded stop-word lists
type StopWordList string

const (
	Russian StopWordList = "russian"
	English StopWordList = "english"
	// NoStopWords keeps every term
	NoStopWords StopWordList = "none"
)

//go:embed stopwords/*.txt
var stopWordFiles embed.FS

// LoadStopWords returns the normalized terms of list
func LoadStopWords(list StopWordList) (map[string]struct{}, error) {
	name := StopWordList(strings.ToLower(string(list)))
	if name == NoStopWords || name == "" {
		return map[string]struct{}{}, nil
	}

	data, err := stopWordFiles.ReadFile("stopwords/" + string(name) + ".txt")
	if err != nil {
		return nil, fmt.Errorf("unknown stop word list %q", list)
	}

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if word := Normalize(strings.TrimSpace(scanner.Text())); word != "" {
			words[word] = struct{}{}
		}
	}
	return words, scanner.Err()
}
