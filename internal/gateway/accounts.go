package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// RateLimit is the quota state of one GitHub API.
type RateLimit struct {
	Resource  string
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// AccountService answers questions about GitHub accounts and quotas using
// the go-github REST client and the GraphQL client.
type AccountService struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	authenticated bool
	logger        *log.Logger
}

// rateLimitQuery reads the GraphQL quota, which is separate from the REST one.
type rateLimitQuery struct {
	RateLimit struct {
		Limit     githubv4.Int
		Remaining githubv4.Int
		ResetAt   githubv4.DateTime
	}
}

// NewAccountService creates an AccountService. httpClient may be nil.
// The credential is attached through an OAuth2 transport when present.
func NewAccountService(credential, baseURL string, httpClient *http.Client, logger *log.Logger) (*AccountService, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if credential != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient = &http.Client{
			Timeout: httpClient.Timeout,
			Transport: &oauth2.Transport{
				Base:   base,
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential}),
			},
		}
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if baseURL != "" && baseURL != DefaultBaseURL {
		trimmed := strings.TrimSuffix(baseURL, "/")
		u, err := url.Parse(trimmed + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
		}
		restClient.BaseURL = u
		graphqlClient = githubv4.NewEnterpriseClient(trimmed+"/graphql", httpClient)
	}

	return &AccountService{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		authenticated: credential != "",
		logger:        logger,
	}, nil
}

// UserExists reports whether login names an existing GitHub account.
// Only a 404 means "no such user"; other failures are returned as errors.
func (s *AccountService) UserExists(ctx context.Context, login string) (bool, error) {
	_, resp, err := s.restClient.Users.Get(ctx, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			s.logger.Printf("  %s: not found", login)
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user %s: %w", login, err)
	}
	return true, nil
}

// RateLimits returns the REST core and search quotas and, for authenticated
// clients, the GraphQL quota. GitHub rejects anonymous GraphQL queries.
func (s *AccountService) RateLimits(ctx context.Context) ([]RateLimit, error) {
	limits, _, err := s.restClient.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}

	var out []RateLimit
	if limits.Core != nil {
		out = append(out, fromRate("core", limits.Core))
	}
	if limits.Search != nil {
		out = append(out, fromRate("search", limits.Search))
	}

	if !s.authenticated {
		return out, nil
	}
	var q rateLimitQuery
	if err := s.graphqlClient.Query(ctx, &q, nil); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for rate limit: %w", err)
	}
	out = append(out, RateLimit{
		Resource:  "graphql",
		Limit:     int(q.RateLimit.Limit),
		Remaining: int(q.RateLimit.Remaining),
		ResetAt:   q.RateLimit.ResetAt.Time,
	})
	return out, nil
}

func fromRate(resource string, r *github.Rate) RateLimit {
	return RateLimit{
		Resource:  resource,
		Limit:     r.Limit,
		Remaining: r.Remaining,
		ResetAt:   r.Reset.Time,
	}
}
