// Package matcher decides whether a free-text query is close enough to one of the
// canonical corpus questions to answer it with the pre-authored answer.
//
// Questions and queries are tokenized the same way and scored with Okapi BM25.
// The matcher is immutable after New and safe for concurrent use.
package matcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/futig/faq-assistant/internal/entity"
)

type Matcher struct {
	corpus   entity.Corpus
	index    *bm25Index
	tokenize Tokenizer
}

// New tokenizes every corpus question and builds the scoring index
func New(corpus entity.Corpus, opts ...Option) (*Matcher, error) {
	if len(corpus) == 0 {
		return nil, entity.ErrEmptyCorpus
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.k1 < 0 || cfg.b < 0 || cfg.b > 1 {
		return nil, fmt.Errorf("%w: k1=%v b=%v", entity.ErrInvalidParameter, cfg.k1, cfg.b)
	}

	entries := make(entity.Corpus, len(corpus))
	docs := make([][]string, len(corpus))
	for i, entry := range corpus {
		if strings.TrimSpace(entry.Question) == "" || entry.Answer == "" {
			return nil, fmt.Errorf("%w: entry %d", entity.ErrInvalidCorpus, i)
		}
		entries[i] = entry
		docs[i] = cfg.tokenizer(entry.Question)
	}

	return &Matcher{
		corpus:   entries,
		index:    newBM25Index(docs, cfg.k1, cfg.b, cfg.epsilon),
		tokenize: cfg.tokenizer,
	}, nil
}

// Len returns the number of corpus entries
func (m *Matcher) Len() int {
	return len(m.corpus)
}

// Scores returns the BM25 score of the query against every corpus entry, in corpus order
func (m *Matcher) Scores(query string) []float64 {
	return m.index.scores(m.tokenize(query))
}

// Match scores the query and selects the first entry holding the maximum score.
// The second return value is false when the query has no tokens or the maximum
// is below threshold; the result still carries the scores and the best index.
func (m *Matcher) Match(query string, threshold float64) (entity.MatchResult, bool) {
	tokens := m.tokenize(query)
	if len(tokens) == 0 {
		return entity.MatchResult{Index: -1, Scores: make([]float64, len(m.corpus))}, false
	}

	scores := m.index.scores(tokens)

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	result := entity.MatchResult{
		Index:  best,
		Score:  scores[best],
		Scores: scores,
	}

	if math.IsNaN(threshold) || scores[best] < threshold {
		return result, false
	}

	result.Entry = m.corpus[best]
	return result, true
}
