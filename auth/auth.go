package auth

import (
	"fmt"
	"strings"
)

// ID holds the identity of the repository a client operates on along with
// the API token used to authenticate requests.
type ID struct {
	Owner string
	Repo  string
	Token string
}

// NewID parses a repository URL and returns an ID carrying the token.
// The token may be empty for unauthenticated (low-quota) access.
func NewID(repoURL, token string) (*ID, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	return &ID{
		Owner: owner,
		Repo:  repo,
		Token: token,
	}, nil
}

// ParseRepoURL extracts the owner and repository name from a GitHub URL.
// Both https ("https://github.com/owner/repo[.git]") and ssh
// ("git@github.com:owner/repo.git") forms are accepted.
func ParseRepoURL(raw string) (string, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", fmt.Errorf("empty repository URL")
	}

	var path string
	switch {
	case strings.HasPrefix(s, "git@github.com:"):
		path = strings.TrimPrefix(s, "git@github.com:")
	case strings.Contains(s, "github.com/"):
		path = s[strings.Index(s, "github.com/")+len("github.com/"):]
	default:
		return "", "", fmt.Errorf("invalid repository URL: %s", raw)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository URL: %s", raw)
	}
	return parts[0], parts[1], nil
}

// String returns the owner/repo slug.
func (id *ID) String() string {
	return id.Owner + "/" + id.Repo
}
