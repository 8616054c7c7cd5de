package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/models"
	"vkprofiler/pkg/textstat"
)

// ErrNoProfile is returned when Compare is given a nil profile
var ErrNoProfile = errors.New("no reference profile to compare against")

// ReferenceProfile aggregates the text and group signals of reference users.
// It is immutable: every accessor returns a copy.
type ReferenceProfile struct {
	vectorizer     *textstat.Vectorizer
	mean           []float64
	groupFrequency map[string]int
	documents      int
}

// ComparisonResult scores a user against a ReferenceProfile
type ComparisonResult struct {
	TextSimilarity  float64 `json:"text_similarity"`
	GroupSimilarity float64 `json:"group_similarity"`
}

// GroupCount is a group name with its number of occurrences
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Option adjusts how Build fits the text model
type Option func(*textstat.Options)

// WithMaxFeatures caps the vocabulary size; n <= 0 keeps every term
func WithMaxFeatures(n int) Option {
	return func(o *textstat.Options) {
		o.MaxFeatures = n
	}
}

// WithStopWords selects the embedded stop-word list
func WithStopWords(list textstat.StopWordList) Option {
	return func(o *textstat.Options) {
		o.StopWords = list
	}
}

// Build fits the text model on every post of users and tallies their groups.
// It fails with errors.ErrEmptyCorpus when no usable text remains.
func Build(users []models.UserRecord, opts ...Option) (*ReferenceProfile, error) {
	options := textstat.DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var corpus []string
	for _, user := range users {
		corpus = append(corpus, nonBlank(user.Posts)...)
	}
	if len(corpus) == 0 {
		return nil, errs.ErrEmptyCorpus
	}

	vectorizer, err := textstat.Fit(corpus, options)
	if err != nil {
		if errors.Is(err, textstat.ErrEmptyVocabulary) {
			return nil, fmt.Errorf("%w: %w", errs.ErrEmptyCorpus, err)
		}
		return nil, fmt.Errorf("failed to fit text model: %w", err)
	}

	frequency := make(map[string]int)
	for _, user := range users {
		for _, group := range user.Groups {
			frequency[group]++
		}
	}

	return &ReferenceProfile{
		vectorizer:     vectorizer,
		mean:           textstat.Mean(vectorizer.Transform(corpus)),
		groupFrequency: frequency,
		documents:      len(corpus),
	}, nil
}

// Compare scores texts and groups against p. Text similarity is the cosine
// of the mean TF-IDF vectors; group similarity sums the reference count of
// every listed group and divides by the number of distinct reference groups
// (at least 1). Duplicate entries in groups count each time. p must come
// from Build.
func Compare(texts, groups []string, p *ReferenceProfile) (ComparisonResult, error) {
	if p == nil || p.vectorizer == nil {
		return ComparisonResult{}, ErrNoProfile
	}

	texts = nonBlank(texts)
	if len(texts) == 0 {
		return ComparisonResult{}, errs.ErrEmptyInput
	}

	mean := textstat.Mean(p.vectorizer.Transform(texts))

	var total int
	for _, group := range groups {
		total += p.groupFrequency[group]
	}

	return ComparisonResult{
		TextSimilarity:  textstat.Cosine(mean, p.mean),
		GroupSimilarity: float64(total) / float64(max(1, len(p.groupFrequency))),
	}, nil
}

// CompareUser scores a collected user against p
func CompareUser(user models.UserRecord, p *ReferenceProfile) (ComparisonResult, error) {
	return Compare(user.Posts, user.Groups, p)
}

// Dimension is the size of the frozen vocabulary
func (p *ReferenceProfile) Dimension() int {
	return p.vectorizer.Dimension()
}

// Vocabulary returns the frozen terms in feature order
func (p *ReferenceProfile) Vocabulary() []string {
	return p.vectorizer.Vocabulary()
}

// Mean returns a copy of the profile's mean TF-IDF vector
func (p *ReferenceProfile) Mean() []float64 {
	return append([]float64(nil), p.mean...)
}

// Documents is the number of posts the model was fitted on
func (p *ReferenceProfile) Documents() int {
	return p.documents
}

// GroupFrequency returns a copy of the group tally
func (p *ReferenceProfile) GroupFrequency() map[string]int {
	out := make(map[string]int, len(p.groupFrequency))
	for k, v := range p.groupFrequency {
		out[k] = v
	}
	return out
}

// TopGroups returns up to n groups by count, then name. n <= 0 returns all.
func (p *ReferenceProfile) TopGroups(n int) []GroupCount {
	groups := make([]GroupCount, 0, len(p.groupFrequency))
	for name, count := range p.groupFrequency {
		groups = append(groups, GroupCount{Name: name, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Name < groups[j].Name
	})
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// TopTerms returns up to n vocabulary terms by weight in the mean vector
func (p *ReferenceProfile) TopTerms(n int) []string {
	terms := p.vectorizer.Vocabulary()
	order := make([]int, len(terms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return p.mean[order[i]] > p.mean[order[j]]
	})
	if n > 0 && len(order) > n {
		order = order[:n]
	}

	top := make([]string, len(order))
	for i, idx := range order {
		top[i] = terms[idx]
	}
	return top
}

func nonBlank(texts []string) []string {
	var kept []string
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			kept = append(kept, text)
		}
	}
	return kept
}
