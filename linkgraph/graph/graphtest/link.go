package graphtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/linkgraph/graph"
)

// TestLinkUpsert verifies the link upsert logic.
func (s *BaseSuite) TestLinkUpsert(c *check.C) {
	// Create a new link
	initial := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Add(-10 * time.Hour),
	}

	err := s.g.UpsertLink(initial)

	c.Assert(err, check.IsNil)
	// Expect a new ID to be assigned to the new Link.
	c.Assert(initial.ID, check.Not(check.Equals), uuid.Nil,
		check.Commentf("Expected an ID to be assigned to the new link."),
	)

	l, err := s.g.FindLink(initial.ID)

	c.Assert(err, check.IsNil)
	// Assert that the link was successfully created and stored.
	c.Assert(
		l.ID, check.Equals, initial.ID,
		check.Commentf("New link was never created and stored"),
	)

	// Attempt to upsert a link with same ID and URL as an existing link but
	// with a new RetrievedAt timestamp. This should update the existing link
	// with a new RetrievedAt timestamp.
	accessedAt := time.Now().Truncate(time.Second).UTC()
	updated := &graph.Link{
		ID:          initial.ID,
		URL:         initial.URL,
		RetrievedAt: accessedAt,
	}

	err = s.g.UpsertLink(updated)

	c.Assert(err, check.IsNil)
	// Assert that the updated link has not been added as a new link, but
	// instead updated. [ID still points to the same link].
	c.Assert(
		updated.ID, check.Equals, initial.ID,
		check.Commentf("ID changed during upsert"),
	)

	l, err = s.g.FindLink(updated.ID)

	c.Assert(err, check.IsNil)
	// Assert that the link's RetrievedAt field was updated.
	c.Assert(
		l.RetrievedAt, check.Equals, accessedAt,
		check.Commentf("RetrievedAt timestamp was never updated during upsert"),
	)

	// Attempt to insert a link whose URL matches an existing Link,
	// but with an older RetrievedAt value. The update to the RetrievedAt
	// field should not happen.
	oldRetrievedAt := time.Now().Add(-10 * time.Hour).UTC()
	sameURL := &graph.Link{
		URL:         updated.URL,
		RetrievedAt: oldRetrievedAt,
	}

	err = s.g.UpsertLink(sameURL)
	c.Assert(err, check.IsNil)
	c.Assert(sameURL.ID, check.Equals, updated.ID)

	l, err = s.g.FindLink(updated.ID)
	c.Assert(err, check.IsNil)
	// Assert that the RetrievedAt field was not updated during the upsert.
	c.Assert(l.RetrievedAt, check.Equals, accessedAt)
	c.Assert(l.RetrievedAt, check.Not(check.Equals), oldRetrievedAt)
}

// TestFindLink verifies the link lookup logic.
func (s *BaseSuite) TestFindLink(c *check.C) {
	// Create a new link
	newLink := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Truncate(time.Second),
	}

	err := s.g.UpsertLink(newLink)
	c.Assert(err, check.IsNil)
	// Expect a new ID to be assigned to the new Link.
	c.Assert(newLink.ID, check.Not(check.Equals), uuid.Nil,
		check.Commentf("Expected an ID to be assigned to the new link."),
	)

	// Lookup link by ID.
	l, err := s.g.FindLink(newLink.ID)
	c.Assert(err, check.IsNil)
	c.Assert(
		l, check.DeepEquals, newLink,
		check.Commentf("Lookup by ID returned wrong link"),
	)

	// Lookup link by unknown ID.
	_, err = s.g.FindLink(uuid.Nil)
	c.Assert(errors.Is(err, graph.ErrNotFound), check.Equals, true)
}

// TestLinkIteration verifies that the link iterator covers every link
// exactly once.
func (s *BaseSuite) TestLinkIteration(c *check.C) {
	numOfLinks := 100

	for i := 0; i < numOfLinks; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		c.Assert(s.g.UpsertLink(l), check.IsNil)
	}

	it, err := s.g.Links()
	c.Assert(err, check.IsNil)

	seen := make(map[string]bool)
	for it.Next() {
		linkID := it.Link().ID.String()
		c.Assert(seen[linkID], check.Equals, false, check.Commentf(
			"Iterator returned the same link twice",
		))
		seen[linkID] = true
	}

	c.Assert(seen, check.HasLen, numOfLinks)
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
}

// TestConcurrentLinkIterators ensures that multiple clients can concurrently
// access the store without causing data races.
func (s *BaseSuite) TestConcurrentLinkIterators(c *check.C) {
	var (
		wg             sync.WaitGroup
		numOfIterators = 10
		numOfLinks     = 100
	)

	// Upsert 100 links into the graph store.
	for i := 0; i < numOfLinks; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		err := s.g.UpsertLink(l)
		c.Assert(err, check.IsNil)
	}

	wg.Add(numOfIterators)

	for i := 0; i < numOfIterators; i++ {
		go func(id int) {
			defer wg.Done()

			errComment := check.Commentf("Iterator %d", id)

			iterated := make(map[string]bool)

			it, err := s.g.Links()
			c.Assert(err, check.IsNil)

			defer func() {
				c.Assert(it.Close(), check.IsNil, errComment)
			}()

			for it.Next() {
				link := it.Link()
				linkID := link.ID.String()

				c.Assert(
					iterated[linkID], check.Equals, false,
					check.Commentf("Iterator %d iterated the same link twice", id),
				)

				iterated[linkID] = true
			}

			c.Assert(iterated, check.HasLen, numOfLinks, errComment)
			c.Assert(it.Error(), check.IsNil, errComment)
		}(i)
	}

	doneCh := make(chan struct{})

	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh: // Test completed successfully.
	case <-time.After(10 * time.Second):
		c.Fatal("Exceeded set test execution time: timed out!")
	}
}
