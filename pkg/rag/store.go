package rag

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/chroma"
)

const (
	// DefaultChromaURL is where a locally run Chroma server listens.
	DefaultChromaURL = "http://localhost:8000"

	defaultEmbeddingModel = "text-embedding-3-small"
	defaultNamespace      = "reporag"
)

// StoreConfig configures the vector store connection. The OpenAI API key
// comes from the OPENAI_API_KEY environment variable.
type StoreConfig struct {
	// ChromaURL is the Chroma server address.
	ChromaURL string

	// Namespace keeps one repository's vectors apart from another's.
	Namespace string

	// EmbeddingModel names the OpenAI embedding model.
	EmbeddingModel string
}

// Store wraps the Chroma vector store with an OpenAI embedder attached.
type Store struct {
	vs chroma.Store
}

// NewStore connects to Chroma and wires up the embedder.
func NewStore(cfg StoreConfig) (*Store, error) {
	url := cfg.ChromaURL
	if url == "" {
		url = DefaultChromaURL
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = defaultEmbeddingModel
	}

	llm, err := openai.New(openai.WithEmbeddingModel(model))
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}

	vs, err := chroma.New(
		chroma.WithChromaURL(url),
		chroma.WithEmbedder(embedder),
		chroma.WithNameSpace(namespace),
	)
	if err != nil {
		return nil, err
	}
	return &Store{vs: vs}, nil
}

// AddDocuments embeds and stores docs, returning how many were added.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document) (int, error) {
	if len(docs) == 0 {
		logrus.Warn("no documents to add to the vector store")
		return 0, nil
	}
	ids, err := s.vs.AddDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	logrus.Infof("added %d document chunks to the vector store", len(ids))
	return len(ids), nil
}

// Retriever returns a retriever yielding the k most similar chunks.
func (s *Store) Retriever(k int) vectorstores.Retriever {
	return vectorstores.ToRetriever(s.vs, k)
}
