// Package rag turns fetched repository content into an embedded,
// retrievable knowledge base and answers questions over it.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/reporag/reporag/pkg/githubapi"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// LoadOptions selects which repository content becomes documents and how
// it is chunked.
type LoadOptions struct {
	Issues       bool
	PullRequests bool
	Code         bool

	IssueFilter githubapi.IssueFilter
	PullFilter  githubapi.PullFilter
	Tree        githubapi.TreeOptions

	// MaxFiles caps how many code files are downloaded; zero means all.
	MaxFiles int

	ChunkSize    int
	ChunkOverlap int
}

// Loader builds embeddable documents from a repository.
type Loader struct {
	client *githubapi.Client
}

// NewLoader returns a loader reading through client.
func NewLoader(client *githubapi.Client) *Loader {
	return &Loader{client: client}
}

// Load fetches the selected content kinds and returns them chunked into
// documents, each chunk carrying metadata pointing back at its origin.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) ([]schema.Document, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	chunkOverlap := opts.ChunkOverlap
	if chunkOverlap <= 0 {
		chunkOverlap = defaultChunkOverlap
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var docs []schema.Document

	if opts.Issues {
		filter := opts.IssueFilter
		filter.WithComments = true
		for _, issue := range l.client.GetIssues(ctx, filter) {
			chunks, err := split(splitter, issueText(issue), map[string]any{
				"source": "issue",
				"number": issue.Number,
				"url":    issue.HTMLURL,
				"title":  issue.Title,
			})
			if err != nil {
				return nil, fmt.Errorf("error chunking issue #%d: %v", issue.Number, err)
			}
			docs = append(docs, chunks...)
		}
	}

	if opts.PullRequests {
		for _, pull := range l.client.GetPullRequests(ctx, opts.PullFilter) {
			chunks, err := split(splitter, pullText(pull), map[string]any{
				"source": "pull_request",
				"number": pull.Number,
				"url":    pull.HTMLURL,
				"title":  pull.Title,
			})
			if err != nil {
				return nil, fmt.Errorf("error chunking pull request #%d: %v", pull.Number, err)
			}
			docs = append(docs, chunks...)
		}
	}

	if opts.Code {
		budget := githubapi.Unbounded()
		if opts.MaxFiles > 0 {
			budget = githubapi.NewFileBudget(opts.MaxFiles)
		}
		files, err := l.client.GetCodeFiles(ctx, opts.Tree, budget)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			chunks, err := split(splitter, file.Content, map[string]any{
				"source": "code",
				"path":   file.Path,
				"url":    file.HTMLURL,
			})
			if err != nil {
				return nil, fmt.Errorf("error chunking file %q: %v", file.Path, err)
			}
			docs = append(docs, chunks...)
		}
	}

	logrus.Infof("loaded %d document chunks from %s", len(docs), l.client.ID())
	return docs, nil
}

// split chunks one text, attaching metadata to every chunk.
func split(splitter textsplitter.TextSplitter, text string, metadata map[string]any) ([]schema.Document, error) {
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	docs := make([]schema.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, schema.Document{PageContent: chunk, Metadata: metadata})
	}
	return docs, nil
}

// issueText renders an issue, with its comment thread, as one document.
func issueText(issue *githubapi.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ISSUE #%d: %s\n\n%s", issue.Number, issue.Title, issue.Body)
	writeComments(&b, issue.Comments)
	return b.String()
}

// pullText renders a pull request as one document.
func pullText(pull *githubapi.PullRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PULL REQUEST #%d: %s\n\n%s", pull.Number, pull.Title, pull.Body)
	if pull.MergedAt != nil {
		fmt.Fprintf(&b, "\nMerged: %s", pull.MergedAt.Format(time.RFC3339))
	}
	return b.String()
}

func writeComments(b *strings.Builder, comments []*githubapi.Comment) {
	if len(comments) == 0 {
		return
	}
	b.WriteString("\n\n--- COMMENTS ---\n")
	for i, comment := range comments {
		user := "unknown"
		if comment.User != nil {
			user = comment.User.Login
		}
		fmt.Fprintf(b, "\nCOMMENT #%d by %s on %s:\n%s\n",
			i+1, user, comment.CreatedAt.Format(time.RFC3339), comment.Body)
	}
}
