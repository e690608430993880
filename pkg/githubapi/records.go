package githubapi

import (
	"encoding/json"
	"time"
)

type (
	// Repository stores general repository data.
	Repository struct {
		Name          string `json:"name"`
		FullName      string `json:"full_name"`
		Description   string `json:"description"`
		DefaultBranch string `json:"default_branch"`
		HTMLURL       string `json:"html_url"`
		Fork          bool   `json:"fork"`
		Stars         int    `json:"stargazers_count"`
		OpenIssues    int    `json:"open_issues_count"`
	}

	// User stores the subset of account data the assistant surfaces.
	User struct {
		Login   string `json:"login"`
		HTMLURL string `json:"html_url"`
	}

	// Label stores an issue label.
	Label struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}

	// Issue stores issue data returned by the issues endpoint. The endpoint
	// also returns pull requests; those carry a non-nil PullRequestLink.
	Issue struct {
		Number          int              `json:"number"`
		Title           string           `json:"title"`
		Body            string           `json:"body"`
		State           string           `json:"state"`
		HTMLURL         string           `json:"html_url"`
		CreatedAt       time.Time        `json:"created_at"`
		UpdatedAt       time.Time        `json:"updated_at"`
		ClosedAt        *time.Time       `json:"closed_at"`
		User            *User            `json:"user"`
		Labels          []Label          `json:"labels"`
		CommentCount    int              `json:"comments"`
		PullRequestLink *PullRequestLink `json:"pull_request,omitempty"`

		// Comments is filled in by the façade when comment hydration is
		// requested; it is not part of the issue payload itself.
		Comments []*Comment `json:"-"`
	}

	// PullRequestLink marks an issue record as a pull request in disguise.
	PullRequestLink struct {
		URL string `json:"url"`
	}

	// Comment stores an issue or pull request comment.
	Comment struct {
		User      *User     `json:"user"`
		Body      string    `json:"body"`
		CreatedAt time.Time `json:"created_at"`
	}

	// PullRequest stores pull request data from the pulls endpoint.
	PullRequest struct {
		Number    int        `json:"number"`
		Title     string     `json:"title"`
		Body      string     `json:"body"`
		State     string     `json:"state"`
		HTMLURL   string     `json:"html_url"`
		CreatedAt time.Time  `json:"created_at"`
		MergedAt  *time.Time `json:"merged_at"`
		User      *User      `json:"user"`
	}

	// Commit stores commit data from the commits endpoint.
	Commit struct {
		SHA     string       `json:"sha"`
		HTMLURL string       `json:"html_url"`
		Detail  CommitDetail `json:"commit"`
	}

	// CommitDetail is the nested git commit object.
	CommitDetail struct {
		Message string       `json:"message"`
		Author  CommitAuthor `json:"author"`
	}

	// CommitAuthor identifies who authored a commit and when.
	CommitAuthor struct {
		Name  string    `json:"name"`
		Email string    `json:"email"`
		Date  time.Time `json:"date"`
	}

	// TreeEntry is one entry of a directory listing from the contents
	// endpoint.
	TreeEntry struct {
		Name        string `json:"name"`
		Path        string `json:"path"`
		Type        string `json:"type"`
		Size        int64  `json:"size"`
		SHA         string `json:"sha"`
		HTMLURL     string `json:"html_url"`
		DownloadURL string `json:"download_url"`
	}

	// CodeFile is a downloaded source file: path, decoded text content,
	// the browsable URL, and the blob SHA as content hash.
	CodeFile struct {
		Name    string
		Path    string
		Content string
		HTMLURL string
		SHA     string
	}
)

// IsPullRequest reports whether this record from the issues endpoint is
// actually a pull request.
func (i *Issue) IsPullRequest() bool {
	return i.PullRequestLink != nil
}

// parseIssue decodes a raw issues-endpoint record.
func parseIssue(raw json.RawMessage) (*Issue, error) {
	var issue Issue
	if err := json.Unmarshal(raw, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}
