package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuild(t *testing.T) {
	builder := NewBuilder(nil, zap.NewNop())

	t.Run("term frequencies per document", func(t *testing.T) {
		idx := builder.Build(map[string]string{
			"a.txt": "cat dog cat",
			"b.txt": "dog bird",
		})

		assert.Equal(t, Postings{
			"cat":  {"a.txt": 2},
			"dog":  {"a.txt": 1, "b.txt": 1},
			"bird": {"b.txt": 1},
		}, idx.Postings)
		assert.Equal(t, []string{"a.txt", "b.txt"}, idx.DocIDs)
		assert.Equal(t, []string{"a.txt", "b.txt"}, idx.GetPostingList("dog"))
		assert.Equal(t, []string{}, idx.GetPostingList("fish"))
	})

	t.Run("document without terms has no postings", func(t *testing.T) {
		idx := builder.Build(map[string]string{
			"empty.txt": "",
			"stop.txt":  "the and of 123",
			"a.txt":     "cat",
		})

		assert.Equal(t, Postings{"cat": {"a.txt": 1}}, idx.Postings)
		assert.Equal(t, []string{"a.txt", "empty.txt", "stop.txt"}, idx.DocIDs)
		assert.Equal(t, []string{"a.txt"}, idx.Documents())
	})

	t.Run("empty collection", func(t *testing.T) {
		idx := builder.Build(map[string]string{})

		assert.Empty(t, idx.Postings)
		assert.Empty(t, idx.DocIDs)
	})

	t.Run("rebuild is identical", func(t *testing.T) {
		docs := map[string]string{
			"x.txt": "alpha beta gamma alpha",
			"y.txt": "beta delta",
			"z.txt": "гамма дельта",
		}
		first := builder.Build(docs)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, builder.Build(docs))
		}
	})

	t.Run("no zero counts", func(t *testing.T) {
		idx := builder.Build(map[string]string{"a.txt": "one two two three three three"})
		for _, docs := range idx.Postings {
			for _, freq := range docs {
				assert.GreaterOrEqual(t, freq, 1)
			}
		}
	})
}

func TestTermCounts(t *testing.T) {
	idx := NewBuilder(nil, zap.NewNop()).Build(map[string]string{
		"a.txt": "cat dog cat",
		"b.txt": "dog bird cat",
	})

	counts := idx.TermCounts()
	assert.Equal(t, map[string]int{"cat": 3, "dog": 2, "bird": 1}, counts)

	for term, docs := range idx.Postings {
		sum := 0
		for _, freq := range docs {
			sum += freq
		}
		assert.Equal(t, sum, counts[term], term)
	}
}

func TestCheckLinks(t *testing.T) {
	idx := NewBuilder(nil, zap.NewNop()).Build(map[string]string{"a.txt": "cat", "b.txt": "dog"})

	assert.NoError(t, idx.CheckLinks(DocLinks{"a.txt": {}, "b.txt": {}}))
	assert.Error(t, idx.CheckLinks(DocLinks{"a.txt": {}}))
}
