package domain

// Repository is the subset of the GitHub repository payload this tool reads.
type Repository struct {
	FullName string `json:"full_name"`
}

// ActivityItem is one entry of the issues endpoint. GitHub returns pull
// requests through the same endpoint with a non-null pull_request object.
type ActivityItem struct {
	User        *Account          `json:"user"`
	PullRequest *PullRequestLinks `json:"pull_request"`
}

// Account identifies the author of an item.
type Account struct {
	Login string `json:"login"`
}

// PullRequestLinks carries the pull request data attached to an issue.
type PullRequestLinks struct {
	MergedAt *string `json:"merged_at"`
}

// Author returns the login of the item's author, or "" when absent.
func (i ActivityItem) Author() string {
	if i.User == nil {
		return ""
	}
	return i.User.Login
}

// IsPullRequest reports whether the item is a pull request.
func (i ActivityItem) IsPullRequest() bool {
	return i.PullRequest != nil
}

// IsMerged reports whether the item is a merged pull request.
func (i ActivityItem) IsMerged() bool {
	return i.PullRequest != nil && i.PullRequest.MergedAt != nil && *i.PullRequest.MergedAt != ""
}

// Classify returns the counts contributed by a single item. Exactly one of
// PRsOpened and IssuesOpened is set; PRsMerged is only set alongside PRsOpened.
func Classify(item ActivityItem) Counts {
	if !item.IsPullRequest() {
		return Counts{IssuesOpened: 1}
	}
	c := Counts{PRsOpened: 1}
	if item.IsMerged() {
		c.PRsMerged = 1
	}
	return c
}

// CountActivity classifies the items authored by a member of contributors.
func CountActivity(items []ActivityItem, contributors ContributorSet) Counts {
	var total Counts
	for _, item := range items {
		if !contributors.Contains(item.Author()) {
			continue
		}
		total = total.Add(Classify(item))
	}
	return total
}

// ContributorSet is the allow-list of accounts whose activity is counted.
// It is read-only after construction and safe for concurrent use.
type ContributorSet struct {
	members map[string]struct{}
	ordered []string
}

// NewContributorSet builds a set from logins, dropping empty entries and
// duplicates while keeping first-seen order.
func NewContributorSet(logins []string) ContributorSet {
	s := ContributorSet{members: make(map[string]struct{}, len(logins))}
	for _, login := range logins {
		if login == "" {
			continue
		}
		if _, ok := s.members[login]; ok {
			continue
		}
		s.members[login] = struct{}{}
		s.ordered = append(s.ordered, login)
	}
	return s
}

// Contains reports whether login is a member of the set.
func (s ContributorSet) Contains(login string) bool {
	_, ok := s.members[login]
	return ok
}

// Len returns the number of distinct contributors.
func (s ContributorSet) Len() int {
	return len(s.ordered)
}

// Logins returns the members in first-seen order.
func (s ContributorSet) Logins() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}
