// Package knowledge implements tag-matching retrieval over a static,
// versioned corpus of sports-science snippets.
//
// Retrieval is deliberately simple and explainable: lowercase the query,
// return every chunk whose tags substring-match it, quoted and attributed to
// its source. No ranking, no vector search.
package knowledge

import (
	"fmt"
	"strings"
)

// FallbackPrinciple is returned when no chunk matches a query.
const FallbackPrinciple = `[SOURCE: General Principles]
"Primum non nocere: when evidence is inconclusive, prefer the conservative option and do no harm to the athlete."`

// Chunk is one attributed snippet of domain knowledge.
type Chunk struct {
	Source   string
	Category string
	Tags     []string
	Content  string
}

// Corpus is a static set of chunks with a version stamp.
type Corpus struct {
	version string
	chunks  []Chunk
}

// Option applies a configuration option to the Corpus.
type Option func(*Corpus)

// WithVersion overrides the corpus version stamp.
func WithVersion(v string) Option {
	return func(c *Corpus) {
		if v != "" {
			c.version = v
		}
	}
}

// WithChunks replaces the built-in corpus, mainly for tests.
func WithChunks(chunks []Chunk) Option {
	return func(c *Corpus) {
		c.chunks = chunks
	}
}

// NewCorpus builds the corpus with the built-in chunks unless overridden.
func NewCorpus(opts ...Option) *Corpus {
	c := &Corpus{
		version: builtinVersion,
		chunks:  builtinChunks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the corpus version stamp.
func (c *Corpus) Version() string { return c.version }

// Retrieve returns every chunk with at least one tag that is a substring of
// the lowercased query, formatted as [SOURCE: x] blocks separated by blank
// lines. Zero matches yield the fixed fallback principle.
func (c *Corpus) Retrieve(query string) string {
	q := strings.ToLower(query)

	var blocks []string
	for _, chunk := range c.chunks {
		if chunk.matches(q) {
			blocks = append(blocks, fmt.Sprintf("[SOURCE: %s]\n%q", chunk.Source, chunk.Content))
		}
	}
	if len(blocks) == 0 {
		return FallbackPrinciple
	}
	return strings.Join(blocks, "\n\n")
}

func (ch Chunk) matches(loweredQuery string) bool {
	for _, tag := range ch.Tags {
		if strings.Contains(loweredQuery, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
