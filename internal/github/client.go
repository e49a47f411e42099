package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/repochat/internal/model"
)

const (
	defaultAPIBase      = "https://api.github.com"
	defaultMaxFileBytes = 100 * 1024
	fetchConcurrency    = 10
)

// skipDirs are path components that never contain ingestable sources.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
	"venv":         {},
	".venv":        {},
	"vendor":       {},
	".idea":        {},
	".vscode":      {},
}

// fetchExtensions is the allowlist of file types worth fetching.
var fetchExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {}, ".mjs": {}, ".cjs": {},
	".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".sass": {}, ".less": {},
	".java": {}, ".cpp": {}, ".c": {}, ".h": {}, ".hpp": {}, ".cs": {}, ".go": {}, ".rs": {}, ".rb": {}, ".php": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".xml": {}, ".ini": {}, ".cfg": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {}, ".bat": {}, ".cmd": {},
	".swift": {}, ".kt": {}, ".scala": {}, ".lua": {}, ".r": {}, ".sql": {},
	".txt": {}, ".rst": {}, ".tex": {}, ".md": {},
}

type Config struct {
	Token        string `json:"token"`
	APIBase      string `json:"api_base"`
	MaxFileBytes int    `json:"max_file_bytes"`
}

// Client fetches repository content through the GitHub REST API. One
// tree call enumerates every file, blob contents are fetched in
// parallel, and FetchRepository returns only after every blob fetch
// settled, so ingestion always starts from a complete result.
type Client struct {
	token        string
	apiBase      string
	maxFileBytes int
	client       *http.Client
}

func New(cfg Config) *Client {
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	maxFileBytes := cfg.MaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = defaultMaxFileBytes
	}
	return &Client{
		token:        strings.TrimSpace(cfg.Token),
		apiBase:      apiBase,
		maxFileBytes: maxFileBytes,
		client:       &http.Client{Timeout: 120 * time.Second},
	}
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
func ParseRepoURL(repoURL string) (string, string, error) {
	trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(repoURL), "/"), ".git")
	idx := strings.Index(trimmed, "github.com/")
	if idx < 0 {
		return "", "", fmt.Errorf("invalid github url: %s", repoURL)
	}
	parts := strings.Split(trimmed[idx+len("github.com/"):], "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid github url: %s", repoURL)
	}
	return parts[0], parts[1], nil
}

type repoInfo struct {
	DefaultBranch string `json:"default_branch"`
}

type treeResponse struct {
	Tree []treeEntry `json:"tree"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

type blobResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchRepository returns the fetchable files of a repository plus the
// sorted listing of every non-skipped file path. A private or empty
// repository yields zero files and no error beyond what the API
// reports for the tree call.
func (c *Client) FetchRepository(ctx context.Context, repoURL string) ([]model.SourceFile, []string, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, nil, err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner", owner), zap.String("repo", name))

	var info repoInfo
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), &info); err != nil {
		return nil, nil, fmt.Errorf("fetch repository info: %w", err)
	}
	var tree treeResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", owner, name, info.DefaultBranch), &tree); err != nil {
		return nil, nil, fmt.Errorf("fetch repository tree: %w", err)
	}

	var allPaths []string
	var toFetch []treeEntry
	for _, entry := range tree.Tree {
		if entry.Type != "blob" || hasSkippedDir(entry.Path) {
			continue
		}
		allPaths = append(allPaths, entry.Path)
		ext := strings.ToLower(path.Ext(entry.Path))
		if _, ok := fetchExtensions[ext]; !ok {
			continue
		}
		if entry.Size <= 0 || entry.Size >= c.maxFileBytes {
			continue
		}
		toFetch = append(toFetch, entry)
	}
	sort.Strings(allPaths)
	logger.Info("repository tree fetched",
		zap.String("branch", info.DefaultBranch),
		zap.Int("total_files", len(allPaths)),
		zap.Int("to_fetch", len(toFetch)),
	)

	files := make([]model.SourceFile, len(toFetch))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)
	for i, entry := range toFetch {
		eg.Go(func() error {
			content, err := c.fetchBlob(gctx, owner, name, entry.SHA)
			if err != nil {
				// one unreadable blob should not sink the whole fetch
				logger.Warn("blob fetch failed", zap.String("path", entry.Path), zap.Error(err))
				return nil
			}
			files[i] = model.SourceFile{Path: entry.Path, Content: content}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	result := make([]model.SourceFile, 0, len(files))
	for _, file := range files {
		if file.Path != "" && file.Content != "" {
			result = append(result, file)
		}
	}
	return readmeFirst(result), allPaths, nil
}

func (c *Client) fetchBlob(ctx context.Context, owner, name, sha string) (string, error) {
	var blob blobResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/git/blobs/%s", owner, name, sha), &blob); err != nil {
		return "", err
	}
	if blob.Encoding != "base64" {
		return blob.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode blob content: %w", err)
	}
	return string(raw), nil
}

func (c *Client) get(ctx context.Context, apiPath string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+apiPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "repochat")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func hasSkippedDir(filePath string) bool {
	for _, part := range strings.Split(filePath, "/") {
		if _, ok := skipDirs[part]; ok {
			return true
		}
	}
	return false
}

// readmeFirst moves the repository README to the front so it leads the
// fragment ordering.
func readmeFirst(files []model.SourceFile) []model.SourceFile {
	for i, file := range files {
		if strings.EqualFold(path.Base(file.Path), "README.md") {
			readme := files[i]
			rest := append(files[:i:i], files[i+1:]...)
			return append([]model.SourceFile{readme}, rest...)
		}
	}
	return files
}
