package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
)

// PageSize is the number of items requested per page. A page holding fewer
// items is the last one.
const PageSize = 100

// PageError reports a page that could not be fetched or decoded.
type PageError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("could not fetch %s: %v", e.URL, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err was caused by an exhausted GitHub rate limit.
func IsRateLimited(err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	return errors.As(err, &rateErr) || errors.As(err, &abuseErr)
}

// FetchAll retrieves every page of a collection endpoint and returns the
// items in server order. It stops at the first page with fewer than
// PageSize items, so a collection holding an exact multiple of PageSize
// costs one extra, empty request. Any failure aborts the whole fetch;
// partial results are never returned.
//
// Pages are not fetched from a snapshot: if the collection changes between
// requests, items may be skipped or repeated.
func FetchAll[T any](ctx context.Context, r Requester, url string) ([]T, error) {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}

	all := make([]T, 0)
	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s%spage=%d&per_page=%d", url, sep, page, PageSize)
		items, err := fetchPage[T](ctx, r, pageURL)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) != PageSize {
			return all, nil
		}
	}
}

func fetchPage[T any](ctx context.Context, r Requester, pageURL string) ([]T, error) {
	resp, err := r.Do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &PageError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// CheckResponse extracts GitHub's message and recognises rate limiting.
		err := github.CheckResponse(resp)
		if err == nil {
			err = fmt.Errorf("unexpected status %s", resp.Status)
		}
		return nil, &PageError{URL: pageURL, StatusCode: resp.StatusCode, Err: err}
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &PageError{URL: pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding page: %w", err)}
	}
	return items, nil
}
