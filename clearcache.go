package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/reporag/reporag/pkg/gitcache"
)

const clearCacheHelp = `Remove every cached API response.`

func (cmd *clearCacheCommand) Name() string      { return "clear-cache" }
func (cmd *clearCacheCommand) Args() string      { return "" }
func (cmd *clearCacheCommand) ShortHelp() string { return clearCacheHelp }
func (cmd *clearCacheCommand) LongHelp() string  { return clearCacheHelp }
func (cmd *clearCacheCommand) Hidden() bool      { return false }

func (cmd *clearCacheCommand) Register(fs *flag.FlagSet) {}

type clearCacheCommand struct{}

func (cmd *clearCacheCommand) Run(ctx context.Context, args []string) error {
	store, err := gitcache.New(cacheDir, 0)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared cache in %s\n", cacheDir)
	return nil
}
