// Package gateway provides a gateway to the GitHub API: an authenticated
// HTTP client, a page-number paginator and the collection endpoints built on them.
package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/naka-gawa/osci-stats/internal/domain"
)

// IssueFilter narrows the issues listing of a repository.
type IssueFilter struct {
	// Since is passed verbatim as the since parameter. GitHub applies it to
	// the issue's last update time, not its creation time.
	Since string
	// Creator restricts the listing to items opened by one account.
	Creator string
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	ListRepositories(ctx context.Context, owner string) ([]string, error)
	ListIssues(ctx context.Context, repo string, filter IssueFilter) ([]domain.ActivityItem, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client  Requester
	baseURL string
	logger  *log.Logger
}

var _ Fetcher = (*GitHubGateway)(nil)

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty baseURL targets the public API.
func NewGitHubGateway(client Requester, baseURL string, logger *log.Logger) *GitHubGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &GitHubGateway{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// ListRepositories returns the full names of all public repositories of an
// organization, in the order the API returns them.
func (g *GitHubGateway) ListRepositories(ctx context.Context, owner string) ([]string, error) {
	g.logger.Printf("Fetching public repositories of %s...", owner)
	endpoint := fmt.Sprintf("%s/orgs/%s/repos?type=public", g.baseURL, url.PathEscape(owner))

	repos, err := FetchAll[domain.Repository](ctx, g.client, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.FullName)
	}
	g.logger.Printf("Completed fetching %d repositories.", len(names))
	return names, nil
}

// ListIssues returns every issue and pull request of repo (owner/name) in
// any state, narrowed by filter.
func (g *GitHubGateway) ListIssues(ctx context.Context, repo string, filter IssueFilter) ([]domain.ActivityItem, error) {
	q := url.Values{}
	q.Set("state", "all")
	if filter.Since != "" {
		q.Set("since", filter.Since)
	}
	if filter.Creator != "" {
		q.Set("creator", filter.Creator)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/issues?%s", g.baseURL, repo, q.Encode())

	items, err := FetchAll[domain.ActivityItem](ctx, g.client, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues of %s: %w", repo, err)
	}
	g.logger.Printf("  %s: fetched %d issues and pull requests.", repo, len(items))
	return items, nil
}
