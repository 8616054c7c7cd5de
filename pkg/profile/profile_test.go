package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/models"
	"vkprofiler/pkg/textstat"
)

func catsAndDogs() []models.UserRecord {
	return []models.UserRecord{
		{ID: 1, Posts: []string{"кот", "кот собака"}, Groups: []string{"group1"}},
		{ID: 2, Posts: []string{"собака рыба"}, Groups: []string{"group1", "group2"}},
	}
}

func TestBuild(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	assert.Equal(t, []string{"кот", "рыба", "собака"}, p.Vocabulary())
	assert.Equal(t, 3, p.Dimension())
	assert.Equal(t, 3, p.Documents())
	assert.Len(t, p.Mean(), 3)

	if diff := cmp.Diff(map[string]int{"group1": 2, "group2": 1}, p.GroupFrequency()); diff != "" {
		t.Errorf("GroupFrequency mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	tests := []struct {
		name  string
		users []models.UserRecord
	}{
		{"no users", nil},
		{"no posts", []models.UserRecord{{ID: 1, Groups: []string{"g"}}}},
		{"blank posts", []models.UserRecord{{ID: 1, Posts: []string{"", "   ", "\n\t"}}}},
		{"only stop words", []models.UserRecord{{ID: 1, Posts: []string{"и это", "а"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.users)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, errs.ErrEmptyCorpus)
		})
	}
}

func TestBuildOptions(t *testing.T) {
	users := []models.UserRecord{{Posts: []string{"это кот это кот собака"}}}

	p, err := Build(users, WithStopWords(textstat.NoStopWords), WithMaxFeatures(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"кот", "это"}, p.Vocabulary())
}

func TestCompareGroupSimilarity(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	got, err := Compare([]string{"кот"}, []string{"group1"}, p)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.GroupSimilarity, 1e-9)
	assert.Greater(t, got.TextSimilarity, 0.0)

	// counts are summed, not capped
	got, err = Compare([]string{"кот"}, []string{"group1", "group2", "group1"}, p)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got.GroupSimilarity, 1e-9)

	got, err = Compare([]string{"кот"}, []string{"unknown"}, p)
	require.NoError(t, err)
	assert.Zero(t, got.GroupSimilarity)
}

func TestCompareWithoutReferenceGroups(t *testing.T) {
	p, err := Build([]models.UserRecord{{Posts: []string{"кот"}}})
	require.NoError(t, err)

	got, err := Compare([]string{"кот"}, []string{"group1"}, p)
	require.NoError(t, err)
	assert.Zero(t, got.GroupSimilarity)
}

func TestCompareSelfSimilarity(t *testing.T) {
	users := catsAndDogs()
	p, err := Build(users)
	require.NoError(t, err)

	var texts []string
	for _, u := range users {
		texts = append(texts, u.Posts...)
	}

	got, err := Compare(texts, nil, p)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.TextSimilarity, 1e-9)
}

func TestCompareKeepsVocabularyFrozen(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)
	before := p.Vocabulary()

	got, err := Compare([]string{"птица летает высоко", "жираф"}, nil, p)
	require.NoError(t, err)
	assert.Zero(t, got.TextSimilarity, "unknown words map to the zero vector")

	assert.Equal(t, before, p.Vocabulary())
	assert.Equal(t, len(before), p.Dimension())
}

func TestCompareEmptyInput(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	for _, texts := range [][]string{nil, {}, {"", "  "}} {
		_, err := Compare(texts, []string{"group1"}, p)
		assert.ErrorIs(t, err, errs.ErrEmptyInput)
	}
}

func TestCompareWithoutProfile(t *testing.T) {
	_, err := Compare([]string{"кот"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoProfile)

	_, err = CompareUser(models.UserRecord{Posts: []string{"кот"}}, &ReferenceProfile{})
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestCompareUser(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	got, err := CompareUser(models.UserRecord{ID: 3, Posts: []string{"кот"}, Groups: []string{"group1"}}, p)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.GroupSimilarity, 1e-9)
}

func TestTopGroups(t *testing.T) {
	p, err := Build([]models.UserRecord{
		{Posts: []string{"кот"}, Groups: []string{"b", "a", "c"}},
		{Posts: []string{"кот"}, Groups: []string{"c", "a"}},
	})
	require.NoError(t, err)

	want := []GroupCount{{Name: "a", Count: 2}, {Name: "c", Count: 2}, {Name: "b", Count: 1}}
	assert.Equal(t, want, p.TopGroups(0))
	assert.Equal(t, want[:2], p.TopGroups(2))
}

func TestTopTerms(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	top := p.TopTerms(1)
	require.Len(t, top, 1)
	assert.Contains(t, []string{"кот", "собака"}, top[0])
	assert.Len(t, p.TopTerms(0), 3)
}

func TestAccessorsReturnCopies(t *testing.T) {
	p, err := Build(catsAndDogs())
	require.NoError(t, err)

	p.Mean()[0] = 42
	p.GroupFrequency()["group1"] = 42
	p.Vocabulary()[0] = "mutated"

	assert.NotEqual(t, 42.0, p.Mean()[0])
	assert.Equal(t, 2, p.GroupFrequency()["group1"])
	assert.Equal(t, "кот", p.Vocabulary()[0])
}
