// Package docs adapts a remote document API to the virtual filesystem
// contract. Documents live in one flat collection; fetched HTML is
// converted to plain text and memoized through the two-tier content
// cache, so repeated reads of the same logical document avoid the
// network and the conversion cost.
package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bridgefs/bridgefs/internal/cache"
	"github.com/bridgefs/bridgefs/internal/creds"
	"github.com/bridgefs/bridgefs/internal/remote"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Credential lookup for the docs adapter.
const (
	docsCredKey = "docs_api_token"
	docsEnvVar  = "DOCS_API_TOKEN"
)

const collectionDocuments = "documents"

// Kind is the node type of a classified docs-schema path.
type Kind int

const (
	KindInvalid Kind = iota
	KindRoot
	KindDocumentList
	KindDocument
)

// Node is the typed descriptor of a classified docs path.
type Node struct {
	Kind       Kind
	DocumentID string
}

// Classify maps a virtual path to its node descriptor. Total function;
// the schema is flat: / · /documents · /documents/{id}.
func Classify(path string) Node {
	segments := vfs.SplitPath(path)
	switch len(segments) {
	case 0:
		return Node{Kind: KindRoot}
	case 1:
		if segments[0] == collectionDocuments {
			return Node{Kind: KindDocumentList}
		}
	case 2:
		if segments[0] == collectionDocuments {
			return Node{Kind: KindDocument, DocumentID: segments[1]}
		}
	}
	return Node{Kind: KindInvalid}
}

// indexEntry is one document in the remote listing.
type indexEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Adapter is the remote-document vfs.Adapter.
type Adapter struct {
	info      vfs.Info
	client    *remote.Client
	baseURL   string
	token     string
	cache     *cache.Cache
	sanitizer *bluemonday.Policy
}

// New builds a docs adapter against baseURL, resolving the API token
// through the standard chain and persisting converted content in
// cacheDir.
func New(name, description, baseURL, token string, store creds.Store, cacheDir string) (*Adapter, error) {
	contentCache, err := cache.New(cacheDir, cache.DefaultMemoryCapacity)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		info:      vfs.Info{Name: name, Description: description},
		client:    remote.New(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     creds.Resolve(token, store, docsCredKey, docsEnvVar),
		cache:     contentCache,
		sanitizer: bluemonday.UGCPolicy(),
	}, nil
}

// Definition implements vfs.Adapter.
func (a *Adapter) Definition() vfs.Info { return a.info }

// Initialize implements vfs.Adapter; construction already prepared the
// cache directory, so there is nothing further to set up.
func (a *Adapter) Initialize(ctx context.Context) error { return nil }

// Dispose implements vfs.Adapter. The disk cache tier survives across
// instances until explicitly cleared.
func (a *Adapter) Dispose() error { return nil }

// IsAuthorized reports token presence only.
func (a *Adapter) IsAuthorized() bool { return a.token != "" }

// TestConnection probes the index endpoint.
func (a *Adapter) TestConnection(ctx context.Context) (bool, string) {
	if !a.IsAuthorized() {
		return false, "no API token resolved"
	}
	entries, err := a.index(ctx)
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("%d documents indexed", len(entries))
}

// ClearCache drops all memoized conversions in both tiers. Invalidation
// is call-explicit; keys derive from identity, not content.
func (a *Adapter) ClearCache() error { return a.cache.Clear() }

// Exists implements vfs.Adapter.
func (a *Adapter) Exists(path string) bool {
	switch node := Classify(path); node.Kind {
	case KindRoot, KindDocumentList:
		return true
	case KindDocument:
		entries, err := a.index(context.Background())
		if err != nil {
			return false
		}
		for _, e := range entries {
			if e.ID == node.DocumentID {
				return true
			}
		}
	}
	return false
}

// Read fetches a document, converting HTML to plain text. The result is
// memoized under the document's logical path, so a cache hit skips both
// the fetch and the conversion.
func (a *Adapter) Read(path string) ([]byte, error) {
	node := Classify(path)
	if node.Kind != KindDocument {
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}

	identity := collectionDocuments + "/" + node.DocumentID
	if data, ok := a.cache.Get(identity); ok {
		return data, nil
	}

	data, err := a.fetch(context.Background(), node.DocumentID)
	if err != nil {
		return nil, err
	}

	if mimetype.Detect(data).Is("text/html") {
		if text, convErr := htmlToText(data, a.sanitizer); convErr == nil {
			data = text
		}
	}

	if err := a.cache.Put(identity, data); err != nil {
		return data, nil // serve the content even if memoization failed
	}
	return data, nil
}

// Write stores a document via the remote API.
func (a *Adapter) Write(path string, data []byte, overwrite bool) error {
	node := Classify(path)
	if node.Kind != KindDocument {
		return fmt.Errorf("%q: %w", path, vfs.ErrUnsupported)
	}
	if !a.IsAuthorized() {
		return fmt.Errorf("%s: %w", a.info.Name, vfs.ErrUnauthorized)
	}
	if !overwrite && a.Exists(path) {
		return fmt.Errorf("%q: %w", path, vfs.ErrAlreadyExists)
	}

	body, err := sonic.Marshal(map[string]string{"content": string(data)})
	if err != nil {
		return err
	}
	return a.client.Do(context.Background(), func() error {
		resp, err := a.client.Resty.R().
			SetAuthToken(a.token).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Put(a.baseURL + "/documents/" + node.DocumentID)
		if err != nil {
			return fmt.Errorf("store document %q: %w", node.DocumentID, err)
		}
		if resp.IsError() {
			return fmt.Errorf("store document %q: %s", node.DocumentID, resp.Status())
		}
		return nil
	})
}

// Append fetches, concatenates, and rewrites the document.
func (a *Adapter) Append(path string, data []byte) error {
	existing, err := a.Read(path)
	if err != nil && !errors.Is(err, vfs.ErrNotFound) {
		return err
	}
	return a.Write(path, append(existing, data...), true)
}

// Delete removes a document via the remote API.
func (a *Adapter) Delete(path string) error {
	node := Classify(path)
	if node.Kind != KindDocument {
		return fmt.Errorf("%q: %w", path, vfs.ErrUnsupported)
	}
	if !a.IsAuthorized() {
		return fmt.Errorf("%s: %w", a.info.Name, vfs.ErrUnauthorized)
	}
	var notFound bool
	err := a.client.Do(context.Background(), func() error {
		resp, err := a.client.Resty.R().
			SetAuthToken(a.token).
			Delete(a.baseURL + "/documents/" + node.DocumentID)
		if err != nil {
			return fmt.Errorf("delete document %q: %w", node.DocumentID, err)
		}
		if resp.StatusCode() == 404 {
			notFound = true
			return nil
		}
		if resp.IsError() {
			return fmt.Errorf("delete document %q: %s", node.DocumentID, resp.Status())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if notFound {
		return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
	return nil
}

// ListFiles returns document ids from the remote index.
func (a *Adapter) ListFiles(path, pattern string) ([]string, error) {
	switch Classify(path).Kind {
	case KindDocumentList:
		entries, err := a.index(context.Background())
		if err != nil {
			return nil, err
		}
		names := []string{}
		for _, e := range entries {
			if pattern != "" {
				if ok, matchErr := doublestar.Match(pattern, e.ID); matchErr != nil || !ok {
					continue
				}
			}
			names = append(names, e.ID)
		}
		return names, nil
	case KindRoot:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// ListDirectories returns the fixed collection names; the schema has no
// nested directories.
func (a *Adapter) ListDirectories(path, pattern string) ([]string, error) {
	switch Classify(path).Kind {
	case KindRoot:
		return []string{collectionDocuments}, nil
	case KindDocumentList:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// Size implements vfs.Adapter via Read, so it prices the converted
// content, not the remote original.
func (a *Adapter) Size(path string) (int64, error) {
	data, err := a.Read(path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (a *Adapter) index(ctx context.Context) ([]indexEntry, error) {
	if !a.IsAuthorized() {
		return nil, fmt.Errorf("%s: %w", a.info.Name, vfs.ErrUnauthorized)
	}
	var body []byte
	err := a.client.Do(ctx, func() error {
		resp, err := a.client.Resty.R().
			SetContext(ctx).
			SetAuthToken(a.token).
			Get(a.baseURL + "/documents")
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("list documents: %s", resp.Status())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var entries []indexEntry
	if err := sonic.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse document index: %w", err)
	}
	return entries, nil
}

func (a *Adapter) fetch(ctx context.Context, id string) ([]byte, error) {
	if !a.IsAuthorized() {
		return nil, fmt.Errorf("%s: %w", a.info.Name, vfs.ErrUnauthorized)
	}
	// A 404 is an answer from a healthy endpoint, not a failure the
	// breaker should count.
	var (
		body     []byte
		notFound bool
	)
	err := a.client.Do(ctx, func() error {
		resp, err := a.client.Resty.R().
			SetContext(ctx).
			SetAuthToken(a.token).
			Get(a.baseURL + "/documents/" + id)
		if err != nil {
			return fmt.Errorf("fetch document %q: %w", id, err)
		}
		if resp.StatusCode() == 404 {
			notFound = true
			return nil
		}
		if resp.IsError() {
			return fmt.Errorf("fetch document %q: %s", id, resp.Status())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, fmt.Errorf("document %q: %w", id, vfs.ErrNotFound)
	}
	return body, nil
}
