package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "csconfs/internal/log"
)

// Remote is a data file served over HTTP.
type Remote struct {
	// ID is a short name used in logs and for the cache directory label.
	ID  string
	URL string
}

// FetchResult contains the outcome of fetching a single remote file.
type FetchResult struct {
	Remote    Remote
	Body      []byte
	FromCache bool // true if the body came from disk (304, network error or non-OK status)
}

// cacheMeta holds HTTP validators for a single URL.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads remote data files with conditional requests and keeps the
// last good body on disk, so a flaky upstream never empties the catalog.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: cacheDir,
	}
}

// Fetch retrieves one remote file, honoring ETag and Last-Modified.
func (f *Fetcher) Fetch(ctx context.Context, src Remote) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("remote URL is empty")
	}

	dir := f.cachePathForURL(src.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return FetchResult{}, err
	}

	meta, _ := loadCacheMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, "body"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	fromCache := func(reason error) (FetchResult, error) {
		if len(cached) == 0 {
			return FetchResult{}, reason
		}
		appLog.Error("fetch failed, using cached body", reason, "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Remote: src, Body: cached, FromCache: true}, nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fromCache(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fromCache(err)
		}
		newMeta := cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(dir, newMeta, body); err != nil {
			appLog.Error("fetch cache save failed", err, "id", src.ID, "url", redactURL(src.URL))
		}
		appLog.Info("fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return FetchResult{Remote: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Debug("fetch not modified; using cache", "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Remote: src, Body: cached, FromCache: true}, nil

	default:
		return fromCache(errors.New(resp.Status))
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(dir string) (cacheMeta, error) {
	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}
	return meta, nil
}

func saveCache(dir string, meta cacheMeta, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(dir, "body"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host so tokens in paths or queries never
// reach the logs.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 {
		return "remote://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
