package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/reporag/reporag/pkg/testutil"
)

func entryJSON(serverURL, name, path, typ string, size int64) string {
	if typ != "file" {
		return fmt.Sprintf(`{"name": %q, "path": %q, "type": %q}`, name, path, typ)
	}
	return fmt.Sprintf(`{"name": %q, "path": %q, "type": "file", "size": %d, "sha": "sha-%s", "html_url": "%s/blob/%s", "download_url": "%s/raw/%s"}`,
		name, path, size, name, serverURL, path, serverURL, path)
}

// treeServer serves a small repository tree:
//
//	/            a.go  b.png  big.go  README.md  src/  node_modules/
//	/src         c.go  d.go  deep/
//	/src/deep    e.go  f.go
func treeServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var downloads atomic.Int64
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	listings := map[string][]string{
		"/repos/o/r/contents/": {
			entryJSON(server.URL, "a.go", "a.go", "file", 10),
			entryJSON(server.URL, "b.png", "b.png", "file", 10),
			entryJSON(server.URL, "big.go", "big.go", "file", 2<<20),
			entryJSON(server.URL, "README.md", "README.md", "file", 64),
			entryJSON(server.URL, "src", "src", "dir", 0),
			entryJSON(server.URL, "node_modules", "node_modules", "dir", 0),
		},
		"/repos/o/r/contents/src": {
			entryJSON(server.URL, "c.go", "src/c.go", "file", 10),
			entryJSON(server.URL, "d.go", "src/d.go", "file", 10),
			entryJSON(server.URL, "deep", "src/deep", "dir", 0),
		},
		"/repos/o/r/contents/src/deep": {
			entryJSON(server.URL, "e.go", "src/deep/e.go", "file", 10),
			entryJSON(server.URL, "f.go", "src/deep/f.go", "file", 10),
		},
	}

	mux.HandleFunc("/repos/o/r/contents/", func(w http.ResponseWriter, r *http.Request) {
		entries, ok := listings[r.URL.Path]
		if !ok {
			testutil.WriteResponse(w, http.StatusNotFound, []byte(`{"message": "Not Found"}`), nil)
			return
		}
		testutil.WriteResponse(w, http.StatusOK, []byte("["+strings.Join(entries, ",")+"]"), nil)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		testutil.WriteResponse(w, http.StatusOK, []byte("content of "+strings.TrimPrefix(r.URL.Path, "/raw/")), nil)
	})

	return server, &downloads
}

func filePaths(files []*CodeFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestFetchTreeUnbounded(t *testing.T) {
	server, _ := treeServer(t)
	c, _ := newTestClient(t, server.URL, "")

	files, err := c.GetCodeFiles(context.Background(), TreeOptions{}, Unbounded())
	if err != nil {
		t.Fatalf("GetCodeFiles returned error: %v", err)
	}

	want := []string{"a.go", "README.md", "src/c.go", "src/d.go", "src/deep/e.go", "src/deep/f.go"}
	got := filePaths(files)
	if len(got) != len(want) {
		t.Fatalf("fetched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q (listing order must be preserved)", i, got[i], want[i])
		}
	}

	// b.png (excluded extension) and big.go (oversized) are skipped;
	// node_modules must never even be listed.
	if got := c.Stats().SubtreesSkipped; got != 0 {
		t.Errorf("Stats().SubtreesSkipped = %d, want 0", got)
	}

	for _, f := range files {
		if f.Content == "" || f.SHA == "" || f.HTMLURL == "" {
			t.Errorf("file %q missing content, hash, or URL: %+v", f.Path, f)
		}
	}
}

func TestFetchTreeBudgetInvariant(t *testing.T) {
	for _, budget := range []int{0, 1, 2, 3, 4, 10} {
		budget := budget
		t.Run(fmt.Sprintf("budget_%d", budget), func(t *testing.T) {
			server, downloads := treeServer(t)
			c, _ := newTestClient(t, server.URL, "")

			files, err := c.GetCodeFiles(context.Background(), TreeOptions{}, NewFileBudget(budget))
			if err != nil {
				t.Fatalf("GetCodeFiles returned error: %v", err)
			}
			if len(files) > budget {
				t.Errorf("fetched %d files with budget %d", len(files), budget)
			}
			if downloads.Load() > int64(budget) {
				t.Errorf("issued %d downloads with budget %d", downloads.Load(), budget)
			}
		})
	}
}

func TestFetchTreeBudgetShortCircuitsSiblings(t *testing.T) {
	server, downloads := treeServer(t)
	c, _ := newTestClient(t, server.URL, "")

	files, err := c.GetCodeFiles(context.Background(), TreeOptions{}, NewFileBudget(3))
	if err != nil {
		t.Fatalf("GetCodeFiles returned error: %v", err)
	}

	want := []string{"a.go", "README.md", "src/c.go"}
	got := filePaths(files)
	if len(got) != 3 {
		t.Fatalf("fetched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}
	if downloads.Load() != 3 {
		t.Errorf("issued %d downloads, want exactly 3 (hard cutoff)", downloads.Load())
	}
}

func TestFetchTreeExtensionAllowList(t *testing.T) {
	server, _ := treeServer(t)
	c, _ := newTestClient(t, server.URL, "")

	files, err := c.GetCodeFiles(context.Background(), TreeOptions{Extensions: []string{".md"}}, Unbounded())
	if err != nil {
		t.Fatalf("GetCodeFiles returned error: %v", err)
	}
	if len(files) != 1 || files[0].Path != "README.md" {
		t.Errorf("fetched %v, want just README.md", filePaths(files))
	}
}

func TestFetchTreeSubtreeFailureDoesNotAbortWalk(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/repos/o/r/contents/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/r/contents/":
			body := "[" + entryJSON(server.URL, "broken", "broken", "dir", 0) + "," +
				entryJSON(server.URL, "ok", "ok", "dir", 0) + "]"
			testutil.WriteResponse(w, http.StatusOK, []byte(body), nil)
		case "/repos/o/r/contents/ok":
			body := "[" + entryJSON(server.URL, "g.go", "ok/g.go", "file", 10) + "]"
			testutil.WriteResponse(w, http.StatusOK, []byte(body), nil)
		default:
			testutil.WriteResponse(w, http.StatusInternalServerError, []byte(`{"message": "boom"}`), nil)
		}
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteResponse(w, http.StatusOK, []byte("g"), nil)
	})

	c, _ := newTestClient(t, server.URL, "")

	files, err := c.GetCodeFiles(context.Background(), TreeOptions{}, Unbounded())
	if err != nil {
		t.Fatalf("GetCodeFiles returned error: %v", err)
	}
	if got := filePaths(files); len(got) != 1 || got[0] != "ok/g.go" {
		t.Errorf("fetched %v, want just ok/g.go", got)
	}
	if got := c.Stats().SubtreesSkipped; got != 1 {
		t.Errorf("Stats().SubtreesSkipped = %d, want 1", got)
	}
}

func TestGetCodeFilesRequiresBudget(t *testing.T) {
	server, _ := treeServer(t)
	c, _ := newTestClient(t, server.URL, "")

	if _, err := c.GetCodeFiles(context.Background(), TreeOptions{}, nil); err == nil {
		t.Error("GetCodeFiles with nil budget expected error, got nil")
	}
}
