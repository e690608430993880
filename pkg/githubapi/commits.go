package githubapi

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// CommitFilter narrows a commit fetch.
type CommitFilter struct {
	// Since keeps only commits authored at or after this time.
	Since time.Time
}

// GetCommits fetches the repository's commit log, newest first.
func (c *Client) GetCommits(ctx context.Context, filter CommitFilter) []*Commit {
	params := url.Values{}
	if !filter.Since.IsZero() {
		params.Set("since", filter.Since.UTC().Format(time.RFC3339))
	}

	raws := c.collectPages(ctx, c.repoURL("/commits"), params, defaultPageSize, nil)

	commits := make([]*Commit, 0, len(raws))
	for _, raw := range raws {
		var commit Commit
		if err := json.Unmarshal(raw, &commit); err != nil {
			logrus.Warnf("dropping unparseable commit record: %v", err)
			continue
		}
		commits = append(commits, &commit)
	}

	logrus.Infof("fetched %d commits from %s", len(commits), c.id)
	return commits
}
