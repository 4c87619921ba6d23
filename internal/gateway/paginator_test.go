package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numbered struct {
	N int `json:"n"`
}

// pagedServer serves pages[page-1] for every request and counts the requests.
func pagedServer(t *testing.T, pages [][]numbered) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)

		body := []numbered{}
		if page >= 1 && page <= len(pages) {
			body = pages[page-1]
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func makePage(start, size int) []numbered {
	page := make([]numbered, size)
	for i := range page {
		page[i] = numbered{N: start + i}
	}
	return page
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient("", WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestFetchAll_Pagination(t *testing.T) {
	testCases := []struct {
		name             string
		pages            [][]numbered
		expectedRequests int32
		expectedItems    int
	}{
		{name: "empty collection", pages: nil, expectedRequests: 1, expectedItems: 0},
		{name: "single partial page", pages: [][]numbered{makePage(0, 42)}, expectedRequests: 1, expectedItems: 42},
		{name: "one page short of full", pages: [][]numbered{makePage(0, 99)}, expectedRequests: 1, expectedItems: 99},
		{name: "full page then partial", pages: [][]numbered{makePage(0, 100), makePage(100, 50)}, expectedRequests: 2, expectedItems: 150},
		{name: "exact multiple of page size costs an extra request", pages: [][]numbered{makePage(0, 100), makePage(100, 100)}, expectedRequests: 3, expectedItems: 200},
		{name: "single full page", pages: [][]numbered{makePage(0, 100)}, expectedRequests: 2, expectedItems: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, requests := pagedServer(t, tc.pages)

			items, err := FetchAll[numbered](context.Background(), newTestClient(t, server), server.URL+"/items")
			require.NoError(t, err)

			assert.Equal(t, tc.expectedRequests, atomic.LoadInt32(requests))
			require.Len(t, items, tc.expectedItems)
			assert.NotNil(t, items)
			// Server order is preserved across pages.
			for i, item := range items {
				assert.Equal(t, i, item.N)
			}
		})
	}
}

func TestFetchAll_QuerySeparator(t *testing.T) {
	var rawQueries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQueries = append(rawQueries, r.URL.RawQuery)
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()
	client := newTestClient(t, server)

	_, err := FetchAll[numbered](context.Background(), client, server.URL+"/items")
	require.NoError(t, err)
	_, err = FetchAll[numbered](context.Background(), client, server.URL+"/items?state=all")
	require.NoError(t, err)

	assert.Equal(t, []string{"page=1&per_page=100", "state=all&page=1&per_page=100"}, rawQueries)
}

func TestFetchAll_FailsOnNonSuccessPage(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "Server Error"}`)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(makePage(0, 100)))
	}))
	defer server.Close()

	items, err := FetchAll[numbered](context.Background(), newTestClient(t, server), server.URL+"/items")
	require.Error(t, err)
	assert.Nil(t, items)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	var pageErr *PageError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, http.StatusInternalServerError, pageErr.StatusCode)
	assert.Contains(t, pageErr.URL, "page=2")
	assert.Contains(t, err.Error(), "Server Error")

	var ghErr *github.ErrorResponse
	assert.True(t, errors.As(err, &ghErr))
	assert.False(t, IsRateLimited(err))
}

func TestFetchAll_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))
	defer server.Close()

	_, err := FetchAll[numbered](context.Background(), newTestClient(t, server), server.URL+"/items")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "API rate limit exceeded")
}

func TestFetchAll_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "an array"}`)
	}))
	defer server.Close()

	_, err := FetchAll[numbered](context.Background(), newTestClient(t, server), server.URL+"/items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding page")
}

func TestFetchAll_NonOKSuccessStatusIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	_, err := FetchAll[numbered](context.Background(), newTestClient(t, server), server.URL+"/items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
