package textstat

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyVocabulary is returned by Fit when no document yields a single
// term, for instance when every word is a stop word.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// DefaultMaxFeatures caps the vocabulary size
const DefaultMaxFeatures = 500

// Options configures Fit
type Options struct {
	// MaxFeatures keeps the most frequent terms; <= 0 keeps all
	MaxFeatures int
	StopWords   StopWordList
}

// DefaultOptions returns the Russian stop-word list with 500 features
func DefaultOptions() Options {
	return Options{MaxFeatures: DefaultMaxFeatures, StopWords: Russian}
}

// Vectorizer maps documents to L2-normalized TF-IDF vectors over a fixed
// vocabulary. It is immutable once Fit returns.
type Vectorizer struct {
	index     map[string]int
	terms     []string
	idf       []float64
	stopWords map[string]struct{}
}

// Fit learns the vocabulary and idf weights of corpus. Terms are ranked by
// total count (ties alphabetical) and capped at MaxFeatures; feature
// indices follow alphabetical order. idf is ln((1+n)/(1+df)) + 1.
func Fit(corpus []string, opts Options) (*Vectorizer, error) {
	stopWords, err := LoadStopWords(opts.StopWords)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range filterTerms(Tokenize(doc), stopWords) {
			counts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(counts) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if opts.MaxFeatures > 0 && len(terms) > opts.MaxFeatures {
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v := &Vectorizer{
		index:     make(map[string]int, len(terms)),
		terms:     terms,
		idf:       make([]float64, len(terms)),
		stopWords: stopWords,
	}
	for i, term := range terms {
		v.index[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return v, nil
}

// Transform projects docs onto the fitted vocabulary. Unknown terms are
// ignored; a document without known terms maps to the zero vector.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(v.terms))
		for _, term := range filterTerms(Tokenize(doc), v.stopWords) {
			if j, ok := v.index[term]; ok {
				row[j]++
			}
		}
		for j := range row {
			row[j] *= v.idf[j]
		}
		normalize(row)
		rows[i] = row
	}
	return rows
}

// Dimension is the vocabulary size
func (v *Vectorizer) Dimension() int {
	return len(v.terms)
}

// Vocabulary returns a copy of the terms in feature order
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

func filterTerms(tokens []string, stopWords map[string]struct{}) []string {
	kept := tokens[:0]
	for _, t := range tokens {
		if _, stop := stopWords[t]; !stop {
			kept = append(kept, t)
		}
	}
	return kept
}

func normalize(row []float64) {
	norm := Norm(row)
	if norm == 0 {
		return
	}
	for i := range row {
		row[i] /= norm
	}
}
