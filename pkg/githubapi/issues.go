package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// IssueFilter narrows an issue fetch.
type IssueFilter struct {
	// State is "open", "closed", or "all" (the default).
	State string

	// Since keeps only issues updated at or after this time.
	Since time.Time

	// Labels keeps only issues carrying all of these labels.
	Labels []string

	// WithComments hydrates each issue's comment list.
	WithComments bool
}

// GetIssues fetches every issue matching filter, in the API's native
// (reverse-chronological) order. Pull requests disguised as issues are
// filtered out per page. Pages that cannot be fetched end the collection;
// whatever accumulated is returned.
func (c *Client) GetIssues(ctx context.Context, filter IssueFilter) []*Issue {
	params := url.Values{}
	state := filter.State
	if state == "" {
		state = "all"
	}
	params.Set("state", state)
	if !filter.Since.IsZero() {
		params.Set("since", filter.Since.UTC().Format(time.RFC3339))
	}
	if len(filter.Labels) > 0 {
		params.Set("labels", strings.Join(filter.Labels, ","))
	}

	notPullRequest := func(raw json.RawMessage) bool {
		var probe struct {
			PullRequest *PullRequestLink `json:"pull_request"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return false
		}
		return probe.PullRequest == nil
	}

	raws := c.collectPages(ctx, c.repoURL("/issues"), params, defaultPageSize, notPullRequest)

	issues := make([]*Issue, 0, len(raws))
	for _, raw := range raws {
		issue, err := parseIssue(raw)
		if err != nil {
			logrus.Warnf("dropping unparseable issue record: %v", err)
			continue
		}
		issues = append(issues, issue)
	}

	if filter.WithComments {
		for _, issue := range issues {
			if issue.CommentCount == 0 {
				continue
			}
			issue.Comments = c.getIssueComments(ctx, issue.Number)
		}
	}

	logrus.Infof("fetched %d issues from %s", len(issues), c.id)
	return issues
}

// getIssueComments fetches the full comment list for one issue.
func (c *Client) getIssueComments(ctx context.Context, number int) []*Comment {
	raws := c.collectPages(ctx, c.repoURL(fmt.Sprintf("/issues/%d/comments", number)), nil, defaultPageSize, nil)

	comments := make([]*Comment, 0, len(raws))
	for _, raw := range raws {
		var comment Comment
		if err := json.Unmarshal(raw, &comment); err != nil {
			logrus.Warnf("dropping unparseable comment on issue #%d: %v", number, err)
			continue
		}
		comments = append(comments, &comment)
	}
	return comments
}
