package graphtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/linkgraph/graph"
)

// TestEdgeUpsert verifies the edge upsert logic.
func (s *BaseSuite) TestEdgeUpsert(c *check.C) {
	linkIDs := make([]uuid.UUID, 3)
	for i := 0; i < len(linkIDs); i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		c.Assert(s.g.UpsertLink(l), check.IsNil)

		linkIDs[i] = l.ID
	}

	e := &graph.Edge{
		Src:  linkIDs[0],
		Dest: linkIDs[1],
	}

	err := s.g.UpsertEdge(e)
	c.Assert(err, check.IsNil)
	c.Assert(e.ID, check.Not(check.Equals), uuid.Nil, check.Commentf(
		"expected an ID to be assigned to the new edge",
	))
	c.Assert(e.UpdatedAt.IsZero(), check.Equals, false, check.Commentf(
		"UpdatedAt field not set",
	))

	// Update existing edge
	forUpdate := &graph.Edge{
		ID:   e.ID,
		Src:  linkIDs[0],
		Dest: linkIDs[1],
	}
	err = s.g.UpsertEdge(forUpdate)
	c.Assert(err, check.IsNil)
	c.Assert(forUpdate.ID, check.Equals, e.ID, check.Commentf("edge ID changed while upserting"))
	c.Assert(forUpdate.UpdatedAt, check.Not(check.Equals), e.UpdatedAt, check.Commentf("UpdatedAt field not modified"))

	// Create edge with unknown link IDs
	invalid := &graph.Edge{
		Src:  linkIDs[0],
		Dest: uuid.New(),
	}
	err = s.g.UpsertEdge(invalid)
	c.Assert(errors.Is(err, graph.ErrUnknownEdgeLinks), check.Equals, true)
}

// TestEdgeIteration verifies that the edge iterator covers every edge
// exactly once.
func (s *BaseSuite) TestEdgeIteration(c *check.C) {
	numEdges := 100
	linkIDs := make([]uuid.UUID, numEdges*2)

	for i := 0; i < numEdges*2; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		c.Assert(s.g.UpsertLink(l), check.IsNil)

		linkIDs[i] = l.ID
	}

	for i := 0; i < numEdges; i++ {
		e := &graph.Edge{
			Src:  linkIDs[0],
			Dest: linkIDs[i],
		}

		c.Assert(s.g.UpsertEdge(e), check.IsNil)
	}

	it, err := s.g.Edges()
	c.Assert(err, check.IsNil)

	seen := make(map[string]bool)
	for it.Next() {
		e := it.Edge()
		id := e.ID.String()
		c.Assert(seen[id], check.Equals, false, check.Commentf(
			"Iterator returned the same edge twice",
		))
		seen[id] = true
	}

	c.Assert(seen, check.HasLen, numEdges)
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
}

// TestRemoveStaleEdges verifies that the edge deletion logic works as expected.
func (s *BaseSuite) TestRemoveStaleEdges(c *check.C) {
	numEdges := 100
	linkIDs := make([]uuid.UUID, numEdges*4)
	goneIDs := make(map[uuid.UUID]struct{})

	for i := 0; i < numEdges*4; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		c.Assert(s.g.UpsertLink(l), check.IsNil)

		linkIDs[i] = l.ID
	}

	var lastTimeStamp time.Time

	for i := 0; i < numEdges; i++ {
		e1 := &graph.Edge{
			Src:  linkIDs[0],
			Dest: linkIDs[i],
		}
		c.Assert(s.g.UpsertEdge(e1), check.IsNil)

		goneIDs[e1.ID] = struct{}{}
		lastTimeStamp = e1.UpdatedAt
	}

	deleteBefore := lastTimeStamp.Add(time.Millisecond)
	time.Sleep(250 * time.Millisecond)

	// The following edges will have an updatedAt value greater than lastTimeStamp
	for i := 0; i < numEdges; i++ {
		e2 := &graph.Edge{
			Src:  linkIDs[0],
			Dest: linkIDs[numEdges+i+1],
		}
		c.Assert(s.g.UpsertEdge(e2), check.IsNil)
	}

	c.Assert(s.g.RemoveStaleEdges(linkIDs[0], deleteBefore), check.IsNil)

	it, err := s.g.Edges()
	c.Assert(err, check.IsNil)

	defer func() {
		c.Assert(it.Close(), check.IsNil)
	}()

	var seen int
	for it.Next() {
		id := it.Edge().ID
		_, found := goneIDs[id]
		c.Assert(found, check.Equals, false, check.Commentf("expected edge %s to be removed from the edge list", id.String()))
		seen++
	}

	c.Assert(seen, check.Equals, numEdges)
}
