package githubapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
)

// PullFilter narrows a pull request fetch.
type PullFilter struct {
	// State is "open", "closed", or "all" (the default).
	State string
}

// GetPullRequests fetches every pull request matching filter, preserving
// the API's return order.
func (c *Client) GetPullRequests(ctx context.Context, filter PullFilter) []*PullRequest {
	params := url.Values{}
	state := filter.State
	if state == "" {
		state = "all"
	}
	params.Set("state", state)

	raws := c.collectPages(ctx, c.repoURL("/pulls"), params, defaultPageSize, nil)

	pulls := make([]*PullRequest, 0, len(raws))
	for _, raw := range raws {
		var pr PullRequest
		if err := json.Unmarshal(raw, &pr); err != nil {
			logrus.Warnf("dropping unparseable pull request record: %v", err)
			continue
		}
		pulls = append(pulls, &pr)
	}

	logrus.Infof("fetched %d pull requests from %s", len(pulls), c.id)
	return pulls
}
