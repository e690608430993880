package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/genuinetools/pkg/cli"
	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"

	"github.com/reporag/reporag/auth"
	"github.com/reporag/reporag/pkg/githubapi"
	"github.com/reporag/reporag/pkg/rag"
	"github.com/reporag/reporag/version"
)

const defaultCacheDir = ".reporag/cache"

var (
	githubToken string
	chromaURL   string
	cacheDir    string
	noCache     bool
	debug       bool
)

func main() {
	p := cli.NewProgram()
	p.Name = "reporag"
	p.Description = "A command line tool to index a GitHub repository and chat with it"

	p.GitCommit = version.GITCOMMIT
	p.Version = version.VERSION

	p.FlagSet = flag.NewFlagSet("global", flag.ExitOnError)
	p.FlagSet.StringVar(&githubToken, "github-token", os.Getenv("GITHUB_TOKEN"), "GitHub API token (or env var GITHUB_TOKEN)")
	p.FlagSet.StringVar(&chromaURL, "chroma-url", envOr("CHROMA_URL", rag.DefaultChromaURL), "Chroma server URL (or env var CHROMA_URL)")

	p.FlagSet.StringVar(&cacheDir, "cache-dir", defaultCacheDir, "directory for cached API responses")
	p.FlagSet.BoolVar(&noCache, "no-cache", false, "disable the API response cache")

	p.FlagSet.BoolVar(&debug, "debug", false, "enable debug logging")
	p.FlagSet.BoolVar(&debug, "d", false, "enable debug logging")

	p.Before = func(ctx context.Context) error {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)

			if err := agent.Listen(agent.Options{}); err != nil {
				logrus.Warnf("gops agent failed to start: %v", err)
			}
		}
		return nil
	}

	p.Commands = []cli.Command{
		&indexCommand{},
		&chatCommand{},
		&clearCacheCommand{},
	}

	p.Run()
}

// newClient builds the API client for the repository named by the
// command's positional argument.
func newClient(ctx context.Context, args []string) (*githubapi.Client, error) {
	if len(args) < 1 {
		return nil, errors.New("repository URL is required")
	}
	id, err := auth.NewID(args[0], githubToken)
	if err != nil {
		return nil, err
	}
	return githubapi.NewClient(ctx, id, githubapi.Options{
		DisableCache: noCache,
		CacheDir:     cacheDir,
	})
}

// namespaceFor keeps one repository's vectors apart from another's.
func namespaceFor(id *auth.ID) string {
	return fmt.Sprintf("%s-%s", id.Owner, id.Repo)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
