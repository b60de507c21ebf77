package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Node
	}{
		{"", Node{Kind: KindRoot}},
		{"/", Node{Kind: KindRoot}},
		{"documents", Node{Kind: KindDocumentList}},
		{"documents/guide", Node{Kind: KindDocument, DocumentID: "guide"}},
		{"bogus", Node{Kind: KindInvalid}},
		{"documents/a/b", Node{Kind: KindInvalid}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.path), "path %q", tc.path)
	}
}

func TestHTMLToText(t *testing.T) {
	html := []byte(`<html><head><style>.x{}</style></head><body>
		<h1>Title</h1>
		<script>alert("nope")</script>
		<p>Some   <b>bold</b> text.</p>
	</body></html>`)

	text, err := htmlToText(html, bluemonday.UGCPolicy())
	require.NoError(t, err)

	s := string(text)
	assert.Contains(t, s, "Title")
	assert.Contains(t, s, "Some bold text.")
	assert.NotContains(t, s, "alert")
	assert.NotContains(t, s, ".x{}")
}

func newDocsServer(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()
	store := map[string]string{
		"guide": "<html><body><p>hello world</p></body></html>",
		"plain": "just plain text",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"guide","title":"Guide"},{"id":"plain","title":"Plain"}]`))
	})
	mux.HandleFunc("GET /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		doc, ok := store[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(doc))
	})
	mux.HandleFunc("PUT /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		store[r.PathValue("id")] = "stored"
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := store[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(store, id)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New("Docs", "remote docs under test", baseURL, "test-token", nil, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, a.Initialize(context.Background()))
	return a
}

func TestReadConvertsHTML(t *testing.T) {
	srv, _ := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	data, err := a.Read("documents/guide")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestReadPassesPlainTextThrough(t *testing.T) {
	srv, _ := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	data, err := a.Read("documents/plain")
	require.NoError(t, err)
	assert.Equal(t, "just plain text", string(data))
}

func TestReadIsMemoized(t *testing.T) {
	srv, _ := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	_, err := a.Read("documents/guide")
	require.NoError(t, err)

	// With the remote gone, the cached conversion still serves.
	srv.Close()
	data, err := a.Read("documents/guide")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// Explicit invalidation drops it.
	require.NoError(t, a.ClearCache())
	_, err = a.Read("documents/guide")
	assert.Error(t, err)
}

func TestListFiles(t *testing.T) {
	srv, _ := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	files, err := a.ListFiles("documents", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"guide", "plain"}, files)

	dirs, err := a.ListDirectories("", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"documents"}, dirs)
}

func TestWriteRespectsOverwrite(t *testing.T) {
	srv, _ := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	err := a.Write("documents/guide", []byte("new content"), false)
	assert.ErrorIs(t, err, vfs.ErrAlreadyExists)

	require.NoError(t, a.Write("documents/guide", []byte("new content"), true))
	require.NoError(t, a.Write("documents/fresh", []byte("content"), false))
}

func TestDelete(t *testing.T) {
	srv, store := newDocsServer(t)
	a := newTestAdapter(t, srv.URL)

	require.NoError(t, a.Delete("documents/plain"))
	_, ok := store["plain"]
	assert.False(t, ok)

	assert.ErrorIs(t, a.Delete("documents/plain"), vfs.ErrNotFound)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	t.Setenv("DOCS_API_TOKEN", "")
	a, err := New("Docs", "", "http://localhost:1", "", nil, t.TempDir())
	require.NoError(t, err)

	assert.False(t, a.IsAuthorized())
	_, listErr := a.ListFiles("documents", "")
	assert.ErrorIs(t, listErr, vfs.ErrUnauthorized)

	ok, msg := a.TestConnection(context.Background())
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}
