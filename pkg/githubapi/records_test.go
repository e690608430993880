package githubapi

import (
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/reporag/reporag/pkg/testutil"
)

func TestParseIssueFixture(t *testing.T) {
	raw, err := testutil.LoadBytes("test_data", "issue.json")
	assert.NilError(t, err)

	issue, err := parseIssue(raw)
	assert.NilError(t, err)

	assert.Equal(t, issue.Number, 1347)
	assert.Equal(t, issue.Title, "Found a bug")
	assert.Equal(t, issue.State, "open")
	assert.Equal(t, issue.CommentCount, 3)
	assert.Equal(t, issue.User.Login, "octocat")
	assert.Equal(t, len(issue.Labels), 1)
	assert.Equal(t, issue.Labels[0].Name, "bug")
	assert.Equal(t, issue.CreatedAt, time.Date(2011, 4, 22, 13, 33, 48, 0, time.UTC))
	assert.Assert(t, issue.ClosedAt == nil)
	assert.Assert(t, !issue.IsPullRequest())
}

func TestParseIssueRecognizesPullRequests(t *testing.T) {
	raw, err := testutil.LoadBytes("test_data", "issue_pull.json")
	assert.NilError(t, err)

	issue, err := parseIssue(raw)
	assert.NilError(t, err)

	assert.Assert(t, issue.IsPullRequest())
	assert.Equal(t, issue.Number, 1348)
}

func TestParseIssueRejectsMalformedPayload(t *testing.T) {
	if _, err := parseIssue([]byte(`{"number": "not a number"}`)); err == nil {
		t.Error("parseIssue accepted a malformed record")
	}
}
