package githubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// defaultPageSize is the largest page the API serves.
const defaultPageSize = 100

// recordFilter decides whether a raw record is kept. Filtering never
// affects the end-of-pagination decision, which looks at the raw page size.
type recordFilter func(json.RawMessage) bool

// collectPages walks a paginated list endpoint with an incrementing page
// parameter until a short page, an empty page, or a failed page ends the
// collection. A failed page is logged and counted, not raised: everything
// accumulated so far is still useful. Records come back in the API's
// native order.
func (c *Client) collectPages(ctx context.Context, rawurl string, base url.Values, pageSize int, keep recordFilter) []json.RawMessage {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var records []json.RawMessage
	for page := 1; ; page++ {
		params := url.Values{}
		for k, vs := range base {
			params[k] = vs
		}
		params.Set("per_page", strconv.Itoa(pageSize))
		params.Set("page", strconv.Itoa(page))

		payload, err := c.execute(ctx, http.MethodGet, rawurl, params, nil, true)
		if err != nil {
			c.stats.pagesAbandoned.Add(1)
			logrus.Warnf("abandoning pagination of %s at page %d: %v", rawurl, page, err)
			break
		}

		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			c.stats.pagesAbandoned.Add(1)
			logrus.Warnf("abandoning pagination of %s at page %d: unexpected payload: %v", rawurl, page, err)
			break
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if keep == nil || keep(item) {
				records = append(records, item)
			}
		}

		if len(items) < pageSize {
			break
		}
		c.sleep(c.pageDelay)
	}
	return records
}
