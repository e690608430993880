package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetRepository fetches the repository's metadata. Unlike the list
// operations this returns an error: a missing or unauthorized repository
// means every other fetch would fail too, and callers should know before
// starting one.
func (c *Client) GetRepository(ctx context.Context) (*Repository, error) {
	payload, err := c.execute(ctx, http.MethodGet, c.repoURL(""), nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("error fetching repository %s: %w", c.id, err)
	}
	var repo Repository
	if err := json.Unmarshal(payload, &repo); err != nil {
		return nil, fmt.Errorf("error decoding repository %s: %v", c.id, err)
	}
	return &repo, nil
}
