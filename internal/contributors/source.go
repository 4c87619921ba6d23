// Package contributors loads the list of tracked contributor logins.
package contributors

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrEmptySource is returned when a contributor list holds no logins.
var ErrEmptySource = errors.New("contributor list is empty")

// Source locates a newline-separated contributor list. URL takes precedence over Path.
type Source struct {
	URL  string
	Path string
}

func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

// Load reads the contributor list from src. httpClient is used for URL
// sources and may be nil.
func Load(ctx context.Context, src Source, httpClient *http.Client) ([]string, error) {
	switch {
	case src.URL != "":
		return fetch(ctx, src.URL, httpClient)
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open contributor list: %w", err)
		}
		defer f.Close()
		return Parse(f)
	default:
		return nil, errors.New("no contributor list configured")
	}
}

func fetch(ctx context.Context, url string, httpClient *http.Client) ([]string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for contributor list: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download contributor list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download contributor list from %s: %s", url, resp.Status)
	}
	return Parse(resp.Body)
}

// Parse reads one login per line. Surrounding whitespace is trimmed, blank
// lines are skipped and repeated logins keep their first position.
func Parse(r io.Reader) ([]string, error) {
	var logins []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		login := strings.TrimSpace(scanner.Text())
		if login == "" {
			continue
		}
		if _, ok := seen[login]; ok {
			continue
		}
		seen[login] = struct{}{}
		logins = append(logins, login)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributor list: %w", err)
	}
	if len(logins) == 0 {
		return nil, ErrEmptySource
	}
	return logins, nil
}
