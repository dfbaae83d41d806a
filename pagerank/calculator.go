// Package pagerank executes the iterative version of the PageRank
// algorithm over the document link graph and blends the resulting scores
// with query relevance into a final rank.
package pagerank

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Blend weights for combining query relevance with the link-structure
// score.
const (
	relevanceWeight = 0.7
	pageRankWeight  = 0.3
)

// Config encapsulates the configuration options for the PageRank
// calculator.
type Config struct {
	// Number of power iterations to execute. If not specified, a default
	// value of 100 will be used instead.
	Iterations int

	// Probability that a random surfer follows an outgoing edge rather
	// than jumping to a random node. If not specified, a default value
	// of 0.85 will be used instead.
	DampingFactor float64
}

func (config *Config) validate() error {
	var err error

	if config.Iterations == 0 {
		config.Iterations = 100
	}
	if config.Iterations < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for iterations, must be > 0"))
	}

	if config.DampingFactor == 0 {
		config.DampingFactor = 0.85
	}
	if config.DampingFactor < 0 || config.DampingFactor > 1 {
		err = multierror.Append(err, fmt.Errorf("invalid value for damping factor, must be in the (0, 1] range"))
	}

	return err
}

// Calculator executes the iterative version of the PageRank algorithm on
// a sparse adjacency-list representation of the document graph. Each
// iteration costs O(E) work. The iteration count is fixed up front rather
// than derived from a convergence test so that ranking runs have a
// predictable cost.
type Calculator struct {
	config Config

	ids     []int64
	indexes map[int64]int

	// Incoming adjacency per node and out-degrees, built incrementally
	// by AddEdge.
	incoming  [][]int
	outDegree []int
	edgeSeen  map[[2]int64]struct{}

	scores []float64
	ran    bool
}

// NewCalculator returns a new Calculator instance using the provided
// config options.
func NewCalculator(config Config) (*Calculator, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf(
			"PageRank calculator config validation failed: %w", err,
		)
	}

	return &Calculator{
		config:   config,
		indexes:  make(map[int64]int),
		edgeSeen: make(map[[2]int64]struct{}),
	}, nil
}

// AddNode registers a document with the graph. Repeated additions of the
// same id are no-ops.
func (c *Calculator) AddNode(id int64) {
	if _, exists := c.indexes[id]; exists {
		return
	}

	c.indexes[id] = len(c.ids)
	c.ids = append(c.ids, id)
	c.incoming = append(c.incoming, nil)
	c.outDegree = append(c.outDegree, 0)
}

// AddEdge registers a directed edge between two documents. Unknown
// endpoints are registered implicitly. Duplicate edges and self
// references are ignored: a page linking to itself or linking to the
// same target twice lends no extra authority.
func (c *Calculator) AddEdge(src, dst int64) {
	if src == dst {
		return
	}

	if _, seen := c.edgeSeen[[2]int64{src, dst}]; seen {
		return
	}
	c.edgeSeen[[2]int64{src, dst}] = struct{}{}

	c.AddNode(src)
	c.AddNode(dst)

	srcIdx := c.indexes[src]
	dstIdx := c.indexes[dst]

	c.incoming[dstIdx] = append(c.incoming[dstIdx], srcIdx)
	c.outDegree[srcIdx]++
}

// NodeCount returns the number of registered documents.
func (c *Calculator) NodeCount() int {
	return len(c.ids)
}

// Run executes the configured number of power iterations over the graph.
// Iterations are strictly sequential: each one consumes the complete
// score vector of the previous. Out-degrees are floored at one so that
// sink pages do not produce a division by zero.
func (c *Calculator) Run(ctx context.Context) error {
	n := len(c.ids)
	if n == 0 {
		c.ran = true

		return nil
	}

	scores := make([]float64, n)
	next := make([]float64, n)

	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}

	damping := c.config.DampingFactor
	base := (1.0 - damping) / float64(n)

	for iteration := 0; iteration < c.config.Iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pagerank run: %w", err)
		}

		for i := 0; i < n; i++ {
			var incomingSum float64

			for _, j := range c.incoming[i] {
				out := c.outDegree[j]
				if out < 1 {
					out = 1
				}

				incomingSum += scores[j] / float64(out)
			}

			next[i] = base + damping*incomingSum
		}

		scores, next = next, scores
	}

	c.scores = scores
	c.ran = true

	return nil
}

// Score returns the computed PageRank score for a document, or zero when
// the document is unknown or Run has not yet been invoked.
func (c *Calculator) Score(id int64) float64 {
	idx, exists := c.indexes[id]
	if !exists || !c.ran || len(c.scores) == 0 {
		return 0
	}

	return c.scores[idx]
}

// Scores invokes visit for every registered document with its computed
// score. Run must have completed for the scores to be meaningful.
func (c *Calculator) Scores(visit func(id int64, score float64) error) error {
	for i, id := range c.ids {
		var score float64
		if c.ran && len(c.scores) == len(c.ids) {
			score = c.scores[i]
		}

		if err := visit(id, score); err != nil {
			return err
		}
	}

	return nil
}

// Blend combines a document's query relevance with its PageRank score
// into the final ranking value.
func Blend(relevance, pageRank float64) float64 {
	return relevanceWeight*relevance + pageRankWeight*pageRank
}
