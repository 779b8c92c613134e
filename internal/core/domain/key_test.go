package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/core/domain"
)

func TestCanonicalKey_ArgumentOrderDoesNotMatter(t *testing.T) {
	a, err := domain.ParseArguments(`{"path": "/tmp/a.txt", "encoding": "utf-8", "limit": 100}`)
	require.NoError(t, err)
	b, err := domain.ParseArguments(`{"limit": 100, "encoding": "utf-8", "path": "/tmp/a.txt"}`)
	require.NoError(t, err)

	assert.Equal(t, domain.CanonicalKey("read_file", a), domain.CanonicalKey("read_file", b))
}

func TestCanonicalKey_NestedMapsAreCanonicalized(t *testing.T) {
	a, err := domain.ParseArguments(`{"filter": {"min": 1, "max": 9}, "path": "/x"}`)
	require.NoError(t, err)
	b, err := domain.ParseArguments(`{"path": "/x", "filter": {"max": 9, "min": 1}}`)
	require.NoError(t, err)

	assert.Equal(t, domain.CanonicalKey("search_files", a), domain.CanonicalKey("search_files", b))
}

func TestCanonicalKey_SliceOrderMatters(t *testing.T) {
	a := map[string]any{"paths": []any{"a", "b"}}
	b := map[string]any{"paths": []any{"b", "a"}}

	assert.NotEqual(t, domain.CanonicalKey("read_file", a), domain.CanonicalKey("read_file", b))
}

func TestCanonicalKey_DifferentValuesProduceDifferentKeys(t *testing.T) {
	a := map[string]any{"path": "/tmp/a.txt"}
	b := map[string]any{"path": "/tmp/b.txt"}

	assert.NotEqual(t, domain.CanonicalKey("read_file", a), domain.CanonicalKey("read_file", b))
}

func TestCanonicalKey_OperationIsPartOfTheKey(t *testing.T) {
	args := map[string]any{"path": "/tmp/a.txt"}

	keyA := domain.CanonicalKey("read_file", args)
	keyB := domain.CanonicalKey("file_metadata", args)

	assert.NotEqual(t, keyA, keyB)
	assert.Contains(t, keyA, "read_file:")
}

func TestParseArguments_EmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "null", "{}"} {
		args, err := domain.ParseArguments(doc)
		require.NoError(t, err, "document %q", doc)
		assert.NotNil(t, args)
		assert.Empty(t, args)
	}
}

func TestParseArguments_InvalidJSON(t *testing.T) {
	_, err := domain.ParseArguments(`{"path":`)
	require.Error(t, err)
}
