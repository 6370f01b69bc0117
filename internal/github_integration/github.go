package github_integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v53/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/dynoinc/sprykersearch/internal/config"
	"github.com/dynoinc/sprykersearch/internal/results"
)

type Config struct {
	// Personal access token. GITHUB_PERSONAL_ACCESS_TOKEN is honoured as well.
	Token string `envconfig:"GITHUB_PERSONAL_ACCESS_TOKEN"`

	// GitHub App installation credentials, used instead of Token when AppID is set.
	AppID          int64  `split_words:"true"`
	InstallationID int64  `split_words:"true"`
	PrivateKeyPath string `split_words:"true"`

	APIURL string `envconfig:"API_URL" default:"https://api.github.com/"`
}

// NewClient builds a GitHub client authenticated with the configured App or
// token. Without either, requests are anonymous and heavily rate limited.
func NewClient(cfg Config) (*github.Client, error) {
	base := otelhttp.NewTransport(http.DefaultTransport)
	apiURL := strings.TrimSuffix(cfg.APIURL, "/")

	var transport http.RoundTripper
	switch {
	case cfg.AppID != 0:
		tr, err := ghinstallation.NewKeyFromFile(base, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("creating GitHub App transport: %w", err)
		}
		if apiURL != "" {
			tr.BaseURL = apiURL
		}
		slog.Debug("Using GitHub App installation for authentication", "app_id", cfg.AppID)
		transport = tr
	case cfg.Token != "":
		slog.Debug("Using GitHub API token for authentication")
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   base,
		}
	default:
		slog.Warn("No GitHub API token found. API rate limits may apply.")
		transport = base
	}

	client := github.NewClient(&http.Client{Transport: transport})
	if apiURL != "" {
		u, err := url.Parse(apiURL + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}

	return client, nil
}

// Backend serves repository search, code search and documentation content
// from the GitHub REST API.
type Backend struct {
	client       *github.Client
	packageLimit int
	docsOwner    string
	docsRepo     string
}

func NewBackend(client *github.Client, cfg config.Search) *Backend {
	return &Backend{
		client:       client,
		packageLimit: cfg.PackageLimit(),
		docsOwner:    cfg.DocsOwner(),
		docsRepo:     cfg.DocsRepo(),
	}
}

func (b *Backend) SearchRepositories(ctx context.Context, query string) (results.RepositoryPage, error) {
	start := time.Now()
	res, resp, err := b.client.Search.Repositories(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: b.packageLimit},
	})
	slog.DebugContext(ctx, "GitHub API: search repositories", "query", query, "status", statusOf(resp), "duration", time.Since(start))
	if err != nil {
		return results.RepositoryPage{}, fmt.Errorf("GitHub API request failed: %w", err)
	}

	page := results.RepositoryPage{
		Items:      make([]results.Repository, 0, len(res.Repositories)),
		TotalCount: res.GetTotal(),
	}
	for _, repo := range res.Repositories {
		page.Items = append(page.Items, results.Repository{
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			Description: repo.GetDescription(),
			URL:         repo.GetHTMLURL(),
		})
	}

	return page, nil
}

func (b *Backend) SearchCode(ctx context.Context, query string) (results.CodePage, error) {
	start := time.Now()
	res, resp, err := b.client.Search.Code(ctx, query, &github.SearchOptions{})
	slog.DebugContext(ctx, "GitHub API: search code", "query", query, "status", statusOf(resp), "duration", time.Since(start))
	if err != nil {
		return results.CodePage{}, fmt.Errorf("GitHub API code search request failed: %w", err)
	}

	page := results.CodePage{
		Items:      make([]results.CodeMatch, 0, len(res.CodeResults)),
		TotalCount: res.GetTotal(),
	}
	for _, match := range res.CodeResults {
		page.Items = append(page.Items, results.CodeMatch{
			Name:       match.GetName(),
			Path:       match.GetPath(),
			URL:        match.GetHTMLURL(),
			Repository: match.GetRepository().GetFullName(),
		})
	}

	return page, nil
}

// FetchDoc returns the decoded content of a file in the documentation
// repository. path may start with a slash.
func (b *Backend) FetchDoc(ctx context.Context, path string) (string, error) {
	start := time.Now()
	file, _, resp, err := b.client.Repositories.GetContents(ctx, b.docsOwner, b.docsRepo, strings.TrimPrefix(path, "/"), nil)
	slog.DebugContext(ctx, "GitHub API: get file contents", "path", path, "status", statusOf(resp), "duration", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("GitHub API content request failed: %w", err)
	}
	if file == nil {
		return "", fmt.Errorf("GitHub API content request failed: %s is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}

	return content, nil
}

func statusOf(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
