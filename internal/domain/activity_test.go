package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		item     ActivityItem
		expected Counts
	}{
		{
			name:     "issue",
			item:     ActivityItem{User: &Account{Login: "alice"}},
			expected: Counts{IssuesOpened: 1},
		},
		{
			name:     "open pull request",
			item:     ActivityItem{User: &Account{Login: "alice"}, PullRequest: &PullRequestLinks{}},
			expected: Counts{PRsOpened: 1},
		},
		{
			name:     "merged pull request",
			item:     ActivityItem{User: &Account{Login: "alice"}, PullRequest: &PullRequestLinks{MergedAt: strPtr("2023-10-01T10:00:00Z")}},
			expected: Counts{PRsOpened: 1, PRsMerged: 1},
		},
		{
			name:     "empty merge timestamp counts as unmerged",
			item:     ActivityItem{PullRequest: &PullRequestLinks{MergedAt: strPtr("")}},
			expected: Counts{PRsOpened: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.item)
			assert.Equal(t, tc.expected, got)
			// Exactly one of the opened buckets is incremented.
			assert.Equal(t, 1, got.PRsOpened+got.IssuesOpened)
			assert.LessOrEqual(t, got.PRsMerged, got.PRsOpened)
		})
	}
}

func TestActivityItem_DecodesGitHubPayload(t *testing.T) {
	payload := `[
		{"number": 1, "user": {"login": "alice", "id": 7}, "labels": []},
		{"number": 2, "user": {"login": "bob"}, "pull_request": {"url": "x", "merged_at": null}},
		{"number": 3, "user": {"login": "carol"}, "pull_request": {"merged_at": "2023-10-01T10:00:00Z"}},
		{"number": 4, "user": null}
	]`

	var items []ActivityItem
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 4)

	assert.Equal(t, "alice", items[0].Author())
	assert.False(t, items[0].IsPullRequest())
	assert.True(t, items[1].IsPullRequest())
	assert.False(t, items[1].IsMerged())
	assert.True(t, items[2].IsMerged())
	assert.Equal(t, "", items[3].Author())
}

func TestCountActivity(t *testing.T) {
	items := []ActivityItem{
		{User: &Account{Login: "alice"}, PullRequest: &PullRequestLinks{MergedAt: strPtr("2023-10-01T10:00:00Z")}},
		{User: &Account{Login: "alice"}, PullRequest: &PullRequestLinks{}},
		{User: &Account{Login: "bob"}},
		{User: &Account{Login: "mallory"}, PullRequest: &PullRequestLinks{MergedAt: strPtr("2023-10-02T10:00:00Z")}},
		{User: &Account{Login: "mallory"}},
		{},
	}

	t.Run("counts only tracked contributors", func(t *testing.T) {
		got := CountActivity(items, NewContributorSet([]string{"alice", "bob"}))
		assert.Equal(t, Counts{PRsOpened: 2, PRsMerged: 1, IssuesOpened: 1}, got)
	})

	t.Run("untracked author contributes nothing", func(t *testing.T) {
		got := CountActivity(items[3:5], NewContributorSet([]string{"alice"}))
		assert.Equal(t, Counts{}, got)
	})

	t.Run("empty contributor set", func(t *testing.T) {
		assert.Equal(t, Counts{}, CountActivity(items, NewContributorSet(nil)))
	})
}

func TestNewContributorSet(t *testing.T) {
	s := NewContributorSet([]string{"bob", "alice", "", "bob", "carol", "alice"})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"bob", "alice", "carol"}, s.Logins())
	assert.True(t, s.Contains("carol"))
	assert.False(t, s.Contains(""))
	assert.False(t, s.Contains("dave"))

	// Logins returns a copy.
	logins := s.Logins()
	logins[0] = "changed"
	assert.Equal(t, "bob", s.Logins()[0])

	var zero ContributorSet
	assert.False(t, zero.Contains("bob"))
	assert.Equal(t, 0, zero.Len())
}
