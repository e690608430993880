package auth

import "testing"

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "https",
			url:       "https://github.com/golang/go",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			name:      "https with .git suffix",
			url:       "https://github.com/golang/go.git",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			name:      "https with trailing slash",
			url:       "https://github.com/golang/go/",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			name:      "ssh",
			url:       "git@github.com:golang/go.git",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			name:      "bare slug after host",
			url:       "github.com/golang/go",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			name:    "missing repo",
			url:     "https://github.com/golang",
			wantErr: true,
		},
		{
			name:    "not github",
			url:     "https://gitlab.com/golang/go",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRepoURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
				return
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoURL(%q) = (%q, %q), want (%q, %q)", tt.url, owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	id, err := NewID("https://github.com/golang/go", "tok")
	if err != nil {
		t.Fatalf("NewID returned error: %v", err)
	}
	if id.Owner != "golang" || id.Repo != "go" || id.Token != "tok" {
		t.Errorf("NewID = %+v", id)
	}
	if got := id.String(); got != "golang/go" {
		t.Errorf("ID.String() = %q, want %q", got, "golang/go")
	}

	if _, err := NewID("not-a-url", ""); err == nil {
		t.Error("NewID with invalid URL expected error, got nil")
	}
}
