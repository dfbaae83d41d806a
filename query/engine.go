package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/pagerank"
	"github.com/kasozi/searchengine/textproc"
)

const (
	defaultPostingLimit     = 1000
	defaultMaxResults       = 1000
	defaultMaxPhraseMatches = 30
	defaultFetchTimeout     = 30 * time.Second
	defaultCacheTTL         = 30 * time.Minute
	defaultCacheMaxEntries  = 500
	defaultSweepInterval    = 5 * time.Minute
	defaultPageSize         = 10
	maxPageSize             = 100

	// Phrases longer than this many words in documents longer than
	// longDocumentWordCount are verified against stored token positions
	// instead of a substring scan.
	positionalVerifyWords  = 3
	longDocumentWordCount  = 1000
	defaultDetailWorkers   = 4
	maxDetailWorkers       = 16
)

// Config encapsulates the settings for creating a query Engine.
type Config struct {
	// IndexStore is the index the engine searches against.
	IndexStore index.Store

	// Clock drives cache expiry. Defaults to the wall clock.
	Clock clock.Clock

	// Workers sets the size of the result detail worker pool.
	Workers int

	// PostingLimit caps the postings examined per query term.
	PostingLimit int

	// MaxResults caps the length of a ranked result list.
	MaxResults int

	// MaxPhraseMatches caps the documents verified for a phrase.
	MaxPhraseMatches int

	// FetchTimeout bounds the result detail stage. On expiry the
	// engine returns the details assembled so far.
	FetchTimeout time.Duration

	// CacheTTL and CacheMaxEntries control the result cache.
	CacheTTL        time.Duration
	CacheMaxEntries int

	// SweepInterval is the period between expired entry sweeps.
	SweepInterval time.Duration

	// Logger for emitting engine messages.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.IndexStore == nil {
		err = multierror.Append(err, fmt.Errorf("index store not provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDetailWorkers
	}
	if cfg.Workers > maxDetailWorkers {
		cfg.Workers = maxDetailWorkers
	}
	if cfg.PostingLimit <= 0 {
		cfg.PostingLimit = defaultPostingLimit
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.MaxPhraseMatches <= 0 {
		cfg.MaxPhraseMatches = defaultMaxPhraseMatches
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = defaultCacheMaxEntries
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	return err
}

// Result is a single ranked search hit.
type Result struct {
	DocID   int64   `json:"docId"`
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Results is one page of ranked hits together with pagination totals.
// Message is non-empty when the list is degraded, for example when the
// detail stage timed out before every hit was hydrated.
type Results struct {
	Results      []Result `json:"results"`
	Page         int      `json:"page"`
	PageSize     int      `json:"pageSize"`
	TotalResults int      `json:"totalResults"`
	TotalPages   int      `json:"totalPages"`
	Message      string   `json:"message,omitempty"`
}

// Engine evaluates search expressions against an index store and ranks
// the matching documents.
type Engine struct {
	store  index.Store
	clk    clock.Clock
	logger *logrus.Entry
	cache  *resultCache
	cfg    Config
}

// NewEngine creates a query engine with the supplied config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("query engine config: %w", err)
	}
	return &Engine{
		store:  cfg.IndexStore,
		clk:    cfg.Clock,
		logger: cfg.Logger,
		cache:  newResultCache(cfg.Clock, cfg.CacheTTL, cfg.CacheMaxEntries),
		cfg:    cfg,
	}, nil
}

// Purge drops all cached result lists. The indexer calls this after a
// rebuild so stale rankings are never served.
func (e *Engine) Purge() { e.cache.Purge() }

// Name implements service.Service.
func (e *Engine) Name() string { return "query-cache-gc" }

// Run sweeps expired cache entries until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.clk.After(e.cfg.SweepInterval):
			e.cache.evictExpired()
		}
	}
}

// Search evaluates a raw expression and returns the requested page of
// ranked results. Identical expressions within the cache TTL are served
// from the cache; concurrent searches for the same expression evaluate
// the pipeline once.
func (e *Engine) Search(ctx context.Context, expression string, page, pageSize int) (*Results, error) {
	key := normalizeExpression(expression)
	if key == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrBadQuery)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	for {
		if cached, hit := e.cache.get(key); hit {
			return paginate(cached, page, pageSize, ""), nil
		}
		leader, done := e.cache.acquire(key)
		if leader {
			break
		}
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer e.cache.release(key)

	parsed, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	started := e.clk.Now()
	ranked, message, err := e.evaluate(ctx, parsed, key)
	if err != nil {
		return nil, err
	}
	e.logger.WithFields(logrus.Fields{
		"expression": key,
		"results":    len(ranked),
		"elapsed":    e.clk.Now().Sub(started).String(),
	}).Info("search completed")

	if message == "" {
		e.cache.put(key, ranked)
	}
	return paginate(ranked, page, pageSize, message), nil
}

type candidate struct {
	doc *index.Document

	// score is the per-query heuristic relevance and the primary
	// ranking key.
	score float64

	// relevance is the plain sum of stored TF-IDF values for the query
	// terms, blended with the document's PageRank into the authority
	// rank that orders documents with equal heuristic scores.
	relevance float64
	rank      float64
}

// evaluate runs the full pipeline for a parsed query: candidate
// resolution, scoring, ranking and detail assembly.
func (e *Engine) evaluate(ctx context.Context, parsed *Query, normalizedQuery string) ([]Result, string, error) {
	var (
		candidates map[int64]*candidate
		err        error
	)
	switch parsed.Type {
	case Phrase:
		candidates, err = e.evaluatePhrase(ctx, parsed.Phrases[0], normalizedQuery)
	case Boolean:
		candidates, err = e.evaluateBoolean(ctx, parsed)
	default:
		candidates, err = e.evaluateFreeText(ctx, parsed.Terms, normalizedQuery)
	}
	if err != nil {
		return nil, "", err
	}

	ranked := rankCandidates(candidates, e.cfg.MaxResults)
	stems := queryStems(parsed)
	literal := ""
	if parsed.Type == Phrase {
		literal = normalizePhrase(parsed.Phrases[0])
	}
	results, message := e.assembleDetails(ctx, ranked, stems, literal)
	return results, message, nil
}

func (e *Engine) evaluatePhrase(ctx context.Context, phrase, normalizedQuery string) (map[int64]*candidate, error) {
	docs, matches, literal, err := e.resolvePhrase(ctx, phrase)
	if err != nil {
		return nil, err
	}
	candidates := make(map[int64]*candidate, len(docs))
	for id, doc := range docs {
		candidates[id] = &candidate{
			doc:       doc,
			score:     e.scoreDocument(doc, matches, literal, normalizedQuery),
			relevance: e.storedRelevance(id, matches),
		}
	}
	return candidates, nil
}

func (e *Engine) evaluateBoolean(ctx context.Context, parsed *Query) (map[int64]*candidate, error) {
	left, err := e.evaluatePhrase(ctx, parsed.Phrases[0], "")
	if err != nil {
		return nil, err
	}
	right, err := e.evaluatePhrase(ctx, parsed.Phrases[1], "")
	if err != nil {
		return nil, err
	}

	combined := make(map[int64]*candidate)
	switch parsed.Operator {
	case OpAnd:
		for id, l := range left {
			if r, ok := right[id]; ok {
				combined[id] = &candidate{
					doc:       l.doc,
					score:     l.score + r.score,
					relevance: l.relevance + r.relevance,
				}
			}
		}
	case OpOr:
		for id, l := range left {
			combined[id] = &candidate{doc: l.doc, score: l.score, relevance: l.relevance}
		}
		for id, r := range right {
			if existing, ok := combined[id]; ok {
				existing.score += r.score
				existing.relevance += r.relevance
			} else {
				combined[id] = &candidate{doc: r.doc, score: r.score, relevance: r.relevance}
			}
		}
	case OpNot:
		for id, l := range left {
			if _, excluded := right[id]; !excluded {
				combined[id] = &candidate{doc: l.doc, score: l.score, relevance: l.relevance}
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrBadQuery, parsed.Operator)
	}
	return combined, nil
}

func (e *Engine) evaluateFreeText(ctx context.Context, terms []string, normalizedQuery string) (map[int64]*candidate, error) {
	stems := textproc.NormalizeText(strings.Join(terms, " "))
	if len(stems) == 0 {
		return map[int64]*candidate{}, nil
	}

	matches, err := e.lookupTerms(ctx, stems)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return map[int64]*candidate{}, nil
	}

	matchCounts := make(map[int64]int)
	for _, m := range matches {
		for docID := range m.postings {
			matchCounts[docID]++
		}
	}

	docIDs := selectCandidates(matchCounts, len(matches))
	candidates := make(map[int64]*candidate, len(docIDs))
	for _, docID := range docIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := e.store.FindDocument(docID)
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				continue
			}
			return nil, err
		}
		candidates[docID] = &candidate{
			doc:       doc,
			score:     e.scoreDocument(doc, matches, "", normalizedQuery),
			relevance: e.storedRelevance(docID, matches),
		}
	}
	return candidates, nil
}

// selectCandidates picks the free-text candidate set: documents that
// contain every term, falling back to documents containing at least
// half the terms, falling back to the documents with the largest
// overlap seen.
func selectCandidates(matchCounts map[int64]int, termCount int) []int64 {
	var all, half, best []int64
	maxCount := 0
	for _, count := range matchCounts {
		if count > maxCount {
			maxCount = count
		}
	}
	halfThreshold := (termCount + 1) / 2
	for docID, count := range matchCounts {
		if count == termCount {
			all = append(all, docID)
		}
		if count >= halfThreshold {
			half = append(half, docID)
		}
		if count == maxCount {
			best = append(best, docID)
		}
	}
	switch {
	case len(all) > 0:
		return all
	case len(half) > 0:
		return half
	default:
		return best
	}
}

// resolvePhrase finds the documents containing the phrase verbatim. The
// postings of the first stemmed word seed the candidate set; each
// candidate is then verified against the stored document text, or
// against stored token positions for long phrases in long documents.
func (e *Engine) resolvePhrase(ctx context.Context, phrase string) (map[int64]*index.Document, []*termMatch, string, error) {
	literal := normalizePhrase(phrase)
	stems := textproc.NormalizeText(phrase)
	if len(stems) == 0 {
		return map[int64]*index.Document{}, nil, literal, nil
	}

	matches, err := e.lookupTerms(ctx, stems)
	if err != nil {
		return nil, nil, "", err
	}
	if len(matches) < len(stems) {
		// A stemmed word of the phrase is absent from the corpus, so no
		// document can contain the phrase.
		return map[int64]*index.Document{}, matches, literal, nil
	}

	seed, err := e.store.PostingsForTerm(matches[0].term.ID, e.cfg.PostingLimit)
	if err != nil {
		return nil, nil, "", err
	}

	docs := make(map[int64]*index.Document)
	for _, posting := range seed {
		if err := ctx.Err(); err != nil {
			return nil, nil, "", err
		}
		if len(docs) >= e.cfg.MaxPhraseMatches {
			break
		}
		doc, err := e.store.FindDocument(posting.DocID)
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				continue
			}
			return nil, nil, "", err
		}
		verified := false
		if len(stems) > positionalVerifyWords && doc.WordCount > longDocumentWordCount {
			verified = e.verifyByPositions(matches, doc.ID)
		} else {
			verified = containsLiteral(doc, literal)
		}
		if verified {
			docs[doc.ID] = doc
		}
	}
	return docs, matches, literal, nil
}

func containsLiteral(doc *index.Document, literal string) bool {
	if literal == "" {
		return false
	}
	return strings.Contains(strings.ToLower(doc.Content), literal) ||
		strings.Contains(strings.ToLower(doc.Title), literal)
}

// verifyByPositions checks whether the stemmed phrase words occur at
// consecutive token offsets in the document.
func (e *Engine) verifyByPositions(matches []*termMatch, docID int64) bool {
	positionSets := make([]map[int64]struct{}, len(matches))
	for i, m := range matches {
		offsets, err := e.store.Positions(m.term.ID, docID)
		if err != nil || len(offsets) == 0 {
			return false
		}
		set := make(map[int64]struct{}, len(offsets))
		for _, off := range offsets {
			set[off] = struct{}{}
		}
		positionSets[i] = set
	}
	for start := range positionSets[0] {
		run := true
		for i := 1; i < len(positionSets); i++ {
			if _, ok := positionSets[i][start+int64(i)]; !ok {
				run = false
				break
			}
		}
		if run {
			return true
		}
	}
	return false
}

// lookupTerms resolves stemmed query words to stored terms with their
// statistics and capped posting sets. Words absent from the corpus are
// skipped.
func (e *Engine) lookupTerms(ctx context.Context, stems []string) ([]*termMatch, error) {
	matches := make([]*termMatch, 0, len(stems))
	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		term, err := e.store.FindTerm(stem)
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				continue
			}
			return nil, err
		}
		stats, err := e.store.TermStatsFor(term.ID)
		if err != nil && !errors.Is(err, index.ErrNotFound) {
			return nil, err
		}
		postings, err := e.store.PostingsForTerm(term.ID, e.cfg.PostingLimit)
		if err != nil {
			return nil, err
		}
		postingMap := make(map[int64]*index.Posting, len(postings))
		for i := range postings {
			postingMap[postings[i].DocID] = &postings[i]
		}
		matches = append(matches, &termMatch{term: term, stats: stats, postings: postingMap})
	}
	return matches, nil
}

// rankCandidates orders candidates by heuristic score, then by the
// blended relevance and PageRank authority rank, then by document ID
// for deterministic output, and caps the list at max.
func rankCandidates(candidates map[int64]*candidate, max int) []*candidate {
	ranked := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.score > 0 {
			c.rank = pagerank.Blend(c.relevance, c.doc.PageRank)
			ranked = append(ranked, c)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].rank != ranked[j].rank {
			return ranked[i].rank > ranked[j].rank
		}
		return ranked[i].doc.ID < ranked[j].doc.ID
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// assembleDetails hydrates the ranked candidates into results using a
// bounded worker pool. If the fetch timeout expires first, the partial
// list assembled so far is returned with a message.
func (e *Engine) assembleDetails(ctx context.Context, ranked []*candidate, stems []string, literal string) ([]Result, string) {
	if len(ranked) == 0 {
		return []Result{}, ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	pool, err := ants.NewPool(e.cfg.Workers)
	if err != nil {
		e.logger.WithField("error", err).Warn("detail worker pool unavailable; assembling serially")
		return e.assembleSerially(fetchCtx, ranked, stems, literal)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		filled  = make([]*Result, len(ranked))
		allDone = make(chan struct{})
	)
	for i, c := range ranked {
		i, c := i, c
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if fetchCtx.Err() != nil {
				return
			}
			res := e.buildResult(c, stems, literal)
			mu.Lock()
			filled[i] = &res
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	go func() {
		wg.Wait()
		close(allDone)
	}()

	message := ""
	select {
	case <-allDone:
	case <-fetchCtx.Done():
		message = "partial results: detail assembly timed out"
	}

	mu.Lock()
	defer mu.Unlock()
	results := make([]Result, 0, len(ranked))
	for _, r := range filled {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, message
}

func (e *Engine) assembleSerially(ctx context.Context, ranked []*candidate, stems []string, literal string) ([]Result, string) {
	results := make([]Result, 0, len(ranked))
	for _, c := range ranked {
		if ctx.Err() != nil {
			return results, "partial results: detail assembly timed out"
		}
		results = append(results, e.buildResult(c, stems, literal))
	}
	return results, ""
}

// buildResult hydrates one ranked candidate. The document row is fetched
// again so the snippet reflects the stored content at assembly time; on
// a fetch failure the row seen during scoring is used instead.
func (e *Engine) buildResult(c *candidate, stems []string, literal string) Result {
	doc := c.doc
	if fresh, err := e.store.FindDocument(c.doc.ID); err == nil {
		doc = fresh
	}
	return Result{
		DocID:   doc.ID,
		URL:     doc.URL,
		Title:   doc.Title,
		Snippet: makeSnippet(doc.Content, stems, literal),
		Score:   c.score,
	}
}

func queryStems(parsed *Query) []string {
	switch parsed.Type {
	case FreeText:
		return textproc.NormalizeText(strings.Join(parsed.Terms, " "))
	default:
		return textproc.NormalizeText(strings.Join(parsed.Phrases, " "))
	}
}

func paginate(all []Result, page, pageSize int, message string) *Results {
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageSlice := make([]Result, end-start)
	copy(pageSlice, all[start:end])
	return &Results{
		Results:      pageSlice,
		Page:         page,
		PageSize:     pageSize,
		TotalResults: total,
		TotalPages:   totalPages,
		Message:      message,
	}
}

func normalizeExpression(expression string) string {
	return strings.ToLower(strings.Join(strings.Fields(expression), " "))
}

func normalizePhrase(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}
