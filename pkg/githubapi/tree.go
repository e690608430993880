package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// FileBudget caps how many files a recursive tree walk may return. The
// unbounded variant is an explicit constructor, never an accidental
// override of a caller-supplied limit. The counter is atomic so the cap
// holds even when siblings are walked concurrently.
type FileBudget struct {
	unbounded bool
	n         atomic.Int64
}

// NewFileBudget returns a budget allowing at most n files.
func NewFileBudget(n int) *FileBudget {
	b := &FileBudget{}
	b.n.Store(int64(n))
	return b
}

// Unbounded returns a budget that never cuts the walk off.
func Unbounded() *FileBudget {
	return &FileBudget{unbounded: true}
}

// tryAcquire claims one file slot. Once it returns false no further file
// downloads are issued.
func (b *FileBudget) tryAcquire() bool {
	if b.unbounded {
		return true
	}
	for {
		cur := b.n.Load()
		if cur <= 0 {
			return false
		}
		if b.n.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// release returns a slot claimed by tryAcquire whose download did not
// yield a file.
func (b *FileBudget) release() {
	if !b.unbounded {
		b.n.Add(1)
	}
}

// exhausted reports whether the budget has run out.
func (b *FileBudget) exhausted() bool {
	return !b.unbounded && b.n.Load() <= 0
}

// excludedExtensions are binary, media, lock, and log suffixes that are
// never worth embedding.
var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".bmp": true, ".webp": true, ".pdf": true, ".zip": true, ".tar": true,
	".gz": true, ".tgz": true, ".exe": true, ".bin": true, ".so": true,
	".dll": true, ".dylib": true, ".class": true, ".jar": true, ".pyc": true,
	".wasm": true, ".mp3": true, ".mp4": true, ".mov": true, ".avi": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".log": true, ".lock": true,
}

// defaultExcludedDirs are directory names skipped during the walk.
var defaultExcludedDirs = []string{
	".git", ".github", ".idea", ".vscode", "node_modules", "vendor",
	"dist", "build", "target", "__pycache__",
}

// defaultMaxFileSize skips files unlikely to be hand-written source.
const defaultMaxFileSize = 1 << 20

// TreeOptions filters which files a tree walk downloads.
type TreeOptions struct {
	// Root is the path inside the repository to start from ("" = root).
	Root string

	// Extensions is an allow-list (".go", ".md", ...). Empty means every
	// extension not on the exclusion set.
	Extensions []string

	// ExcludedDirs replaces the default directory exclusion list when
	// non-empty.
	ExcludedDirs []string

	// MaxFileSize skips larger files; zero means the 1MB default.
	MaxFileSize int64
}

func (o *TreeOptions) excludedDirSet() map[string]bool {
	dirs := o.ExcludedDirs
	if len(dirs) == 0 {
		dirs = defaultExcludedDirs
	}
	set := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		set[d] = true
	}
	return set
}

func (o *TreeOptions) maxSize() int64 {
	if o.MaxFileSize > 0 {
		return o.MaxFileSize
	}
	return defaultMaxFileSize
}

// admissible reports whether a directory entry is a file worth fetching.
func (o *TreeOptions) admissible(entry *TreeEntry) bool {
	if entry.Type != "file" {
		return false
	}
	if entry.Size > o.maxSize() {
		return false
	}
	ext := strings.ToLower(path.Ext(entry.Name))
	if excludedExtensions[ext] {
		return false
	}
	if len(o.Extensions) == 0 {
		return true
	}
	for _, want := range o.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// GetCodeFiles walks the repository tree from opts.Root downward and
// returns every admissible file it could download within budget. Listing
// or download failures cost the affected subtree or file only; the walk
// itself never fails. The budget must be supplied explicitly; use
// Unbounded() to fetch everything.
func (c *Client) GetCodeFiles(ctx context.Context, opts TreeOptions, budget *FileBudget) ([]*CodeFile, error) {
	if budget == nil {
		return nil, fmt.Errorf("file budget is required; use Unbounded() to fetch everything")
	}
	excluded := opts.excludedDirSet()
	files := c.fetchTree(ctx, opts.Root, &opts, excluded, budget)
	logrus.Infof("fetched %d code files from %s", len(files), c.id)
	return files, nil
}

// fetchTree lists one directory, downloads its admissible files, then
// recurses into subdirectories in listing order while the budget lasts.
func (c *Client) fetchTree(ctx context.Context, dir string, opts *TreeOptions, excluded map[string]bool, budget *FileBudget) []*CodeFile {
	listURL := c.repoURL("/contents/" + strings.TrimPrefix(dir, "/"))
	payload, err := c.execute(ctx, http.MethodGet, listURL, nil, nil, true)
	if err != nil {
		c.stats.subtreesSkipped.Add(1)
		logrus.Warnf("skipping subtree %q: %v", dir, err)
		return nil
	}

	var entries []TreeEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		c.stats.subtreesSkipped.Add(1)
		logrus.Warnf("skipping subtree %q: unexpected listing payload: %v", dir, err)
		return nil
	}

	var files []*CodeFile
	var dirs []string
	for i := range entries {
		entry := &entries[i]
		switch entry.Type {
		case "dir":
			if !excluded[entry.Name] {
				dirs = append(dirs, entry.Path)
			}
		case "file":
			if !opts.admissible(entry) {
				continue
			}
			if !budget.tryAcquire() {
				return files
			}
			file := c.fetchFile(ctx, entry)
			if file == nil {
				budget.release()
				continue
			}
			files = append(files, file)
		}
	}

	for _, sub := range dirs {
		if budget.exhausted() {
			break
		}
		files = append(files, c.fetchTree(ctx, sub, opts, excluded, budget)...)
	}
	return files
}

// fetchFile downloads one file's raw content. Binary-looking or
// undownloadable files yield nil.
func (c *Client) fetchFile(ctx context.Context, entry *TreeEntry) *CodeFile {
	if entry.DownloadURL == "" {
		return nil
	}
	payload, err := c.execute(ctx, http.MethodGet, entry.DownloadURL, nil, nil, true)
	if err != nil {
		logrus.Warnf("skipping file %q: %v", entry.Path, err)
		return nil
	}
	if !utf8.Valid(payload) {
		logrus.Debugf("skipping file %q: content is not valid UTF-8", entry.Path)
		return nil
	}
	return &CodeFile{
		Name:    entry.Name,
		Path:    entry.Path,
		Content: string(payload),
		HTMLURL: entry.HTMLURL,
		SHA:     entry.SHA,
	}
}
