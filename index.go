package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/reporag/reporag/pkg/githubapi"
	"github.com/reporag/reporag/pkg/rag"
)

const indexHelp = `Fetch a repository's issues, pull requests, and code and embed them into the vector store.`

func (cmd *indexCommand) Name() string      { return "index" }
func (cmd *indexCommand) Args() string      { return "[OPTIONS] REPO_URL" }
func (cmd *indexCommand) ShortHelp() string { return indexHelp }
func (cmd *indexCommand) LongHelp() string  { return indexHelp }
func (cmd *indexCommand) Hidden() bool      { return false }

type indexCommand struct {
	issues bool
	pulls  bool
	code   bool

	state          string
	maxFiles       int
	chunkSize      int
	chunkOverlap   int
	embeddingModel string
}

func (cmd *indexCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.issues, "issues", true, "index issues and their comments")
	fs.BoolVar(&cmd.pulls, "pulls", false, "index pull requests")
	fs.BoolVar(&cmd.code, "code", true, "index source files")

	fs.StringVar(&cmd.state, "state", "all", "issue state to index (open, closed, all)")
	fs.IntVar(&cmd.maxFiles, "max-files", 0, "maximum number of source files to download (0 = no limit)")
	fs.IntVar(&cmd.chunkSize, "chunk-size", 0, "chunk size in characters")
	fs.IntVar(&cmd.chunkOverlap, "chunk-overlap", 0, "overlap between adjacent chunks")
	fs.StringVar(&cmd.embeddingModel, "embedding-model", "", "OpenAI embedding model")
}

func (cmd *indexCommand) Run(ctx context.Context, args []string) error {
	client, err := newClient(ctx, args)
	if err != nil {
		return err
	}

	// Fail before any fetching when the repository is missing or the
	// token cannot see it.
	repo, err := client.GetRepository(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("indexing %s (%s)", repo.FullName, repo.HTMLURL)

	docs, err := rag.NewLoader(client).Load(ctx, rag.LoadOptions{
		Issues:       cmd.issues,
		PullRequests: cmd.pulls,
		Code:         cmd.code,
		IssueFilter:  githubapi.IssueFilter{State: cmd.state},
		MaxFiles:     cmd.maxFiles,
		ChunkSize:    cmd.chunkSize,
		ChunkOverlap: cmd.chunkOverlap,
	})
	if err != nil {
		return err
	}

	store, err := rag.NewStore(rag.StoreConfig{
		ChromaURL:      chromaURL,
		Namespace:      namespaceFor(client.ID()),
		EmbeddingModel: cmd.embeddingModel,
	})
	if err != nil {
		return err
	}

	added, err := store.AddDocuments(ctx, docs)
	if err != nil {
		return err
	}

	stats := client.Stats()
	fmt.Printf("Indexed %d chunks from %s\n", added, client.ID())
	fmt.Printf("API requests: %d (%d served from cache)\n", stats.RequestsMade, stats.CacheHits)
	if stats.PagesAbandoned > 0 || stats.SubtreesSkipped > 0 {
		fmt.Printf("Partial results: %d pages abandoned, %d subtrees skipped\n",
			stats.PagesAbandoned, stats.SubtreesSkipped)
	}
	return nil
}
