package graphql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample SDL document for testing
const sampleSDL = `type Query {
  ok: Boolean
}
`

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com/schema.graphql", true},
		{"https://example.com/schema.graphql", true},
		{"/etc/schemas/api.graphql", false},
		{"schema.graphql", false},
		{"ftp://example.com/schema.graphql", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsURL(tt.in), "IsURL(%q)", tt.in)
	}
}

func TestSchemaSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, os.WriteFile(path, []byte(sampleSDL), 0644))

	source := NewSchemaSource(path, nil)

	t.Run("resolve reads the file", func(t *testing.T) {
		got, err := source.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleSDL, got)
	})

	t.Run("resolve local reads the file", func(t *testing.T) {
		got, err := source.ResolveLocal(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleSDL, got)
	})

	t.Run("repeated reads are byte-identical", func(t *testing.T) {
		first, err := source.ResolveLocal(context.Background())
		require.NoError(t, err)
		second, err := source.ResolveLocal(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestSchemaSourceFileMissing(t *testing.T) {
	source := NewSchemaSource(filepath.Join(t.TempDir(), "missing.graphql"), nil)

	_, err := source.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)

	_, err = source.ResolveLocal(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
}

func TestSchemaSourceURL(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(sampleSDL))
	}))
	defer server.Close()

	source := NewSchemaSource(server.URL+"/schema.graphql", nil)

	got, err := source.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSDL, got)

	// No caching across calls: each resolve fetches again.
	_, err = source.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestSchemaSourceURLHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	source := NewSchemaSource(server.URL+"/schema.graphql", nil)

	_, err := source.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
	assert.Contains(t, err.Error(), "404")
}

// ResolveLocal must never fetch remote documents, even when the configured
// source is a URL; the value falls through to the file strategy and fails.
func TestSchemaSourceURLNotFetchedLocally(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(sampleSDL))
	}))
	defer server.Close()

	source := NewSchemaSource(server.URL+"/schema.graphql", nil)

	_, err := source.ResolveLocal(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
	assert.Equal(t, int32(0), fetches.Load())
}

// A configured file keeps the introspection path quiet: no live request
// is made when the file strategy applies.
func TestSchemaSourceFileSkipsIntrospection(t *testing.T) {
	var introspections atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		introspections.Add(1)
		w.Write([]byte(`{"data": ` + sampleIntrospectionData + `}`))
	}))
	defer upstream.Close()

	path := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, os.WriteFile(path, []byte(sampleSDL), 0644))

	source := NewSchemaSource(path, NewClient(upstream.URL, nil))

	got, err := source.ResolveLocal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSDL, got)
	assert.Equal(t, int32(0), introspections.Load())
}

func TestSchemaSourceLive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": ` + sampleIntrospectionData + `}`))
	}))
	defer upstream.Close()

	source := NewSchemaSource("", NewClient(upstream.URL, nil))

	t.Run("resolve introspects", func(t *testing.T) {
		got, err := source.Resolve(context.Background())
		require.NoError(t, err)
		assert.Contains(t, got, "type Query {")
		assert.Contains(t, got, "type User implements Node {")
	})

	t.Run("resolve local introspects", func(t *testing.T) {
		got, err := source.ResolveLocal(context.Background())
		require.NoError(t, err)
		assert.Contains(t, got, "type Query {")
	})
}

func TestSchemaSourceLiveFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	source := NewSchemaSource("", NewClient(url, nil))

	_, err := source.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
}

func TestSchemaSourceNoClient(t *testing.T) {
	source := NewSchemaSource("", nil)

	_, err := source.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
}
