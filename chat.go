package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/reporag/reporag/auth"
	"github.com/reporag/reporag/pkg/rag"
)

const chatHelp = `Ask questions about an indexed repository in an interactive session.`

func (cmd *chatCommand) Name() string      { return "chat" }
func (cmd *chatCommand) Args() string      { return "[OPTIONS] REPO_URL" }
func (cmd *chatCommand) ShortHelp() string { return chatHelp }
func (cmd *chatCommand) LongHelp() string  { return chatHelp }
func (cmd *chatCommand) Hidden() bool      { return false }

type chatCommand struct {
	model       string
	temperature float64
	chunks      int
}

func (cmd *chatCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.model, "model", "", "OpenAI chat model")
	fs.Float64Var(&cmd.temperature, "temperature", 0, "sampling temperature")
	fs.IntVar(&cmd.chunks, "k", rag.DefaultRetrievedChunks, "number of chunks retrieved per question")
}

func (cmd *chatCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("repository URL is required")
	}
	id, err := auth.NewID(args[0], githubToken)
	if err != nil {
		return err
	}

	store, err := rag.NewStore(rag.StoreConfig{
		ChromaURL: chromaURL,
		Namespace: namespaceFor(id),
	})
	if err != nil {
		return err
	}

	conversation, err := rag.NewConversation(cmd.model, cmd.temperature, store.Retriever(cmd.chunks))
	if err != nil {
		return err
	}

	fmt.Printf("Chatting with %s. Type \"exit\" to quit.\n", id)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := conversation.Query(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", answer)
	}
	return scanner.Err()
}
