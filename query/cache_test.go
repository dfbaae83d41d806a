package query

import (
	"time"

	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"
)

type CacheTestSuite struct{}

var _ = check.Suite(new(CacheTestSuite))

func (s *CacheTestSuite) TestEntriesExpireAfterTTL(c *check.C) {
	clk := testclock.NewClock(time.Now())
	cache := newResultCache(clk, 30*time.Minute, 500)

	cache.put("search engine", []Result{{DocID: 1}})
	_, hit := cache.get("search engine")
	c.Assert(hit, check.Equals, true)

	clk.Advance(31 * time.Minute)
	_, hit = cache.get("search engine")
	c.Assert(hit, check.Equals, false)
}

func (s *CacheTestSuite) TestOverflowEvictsOldestEntry(c *check.C) {
	clk := testclock.NewClock(time.Now())
	cache := newResultCache(clk, 30*time.Minute, 2)

	cache.put("first", []Result{{DocID: 1}})
	clk.Advance(time.Minute)
	cache.put("second", []Result{{DocID: 2}})
	clk.Advance(time.Minute)
	cache.put("third", []Result{{DocID: 3}})

	c.Assert(cache.len(), check.Equals, 2)
	_, hit := cache.get("first")
	c.Assert(hit, check.Equals, false)
	_, hit = cache.get("third")
	c.Assert(hit, check.Equals, true)
}

func (s *CacheTestSuite) TestEvictExpiredOnlyDropsStaleEntries(c *check.C) {
	clk := testclock.NewClock(time.Now())
	cache := newResultCache(clk, 30*time.Minute, 500)

	cache.put("stale", []Result{{DocID: 1}})
	clk.Advance(31 * time.Minute)
	cache.put("fresh", []Result{{DocID: 2}})

	cache.evictExpired()

	c.Assert(cache.len(), check.Equals, 1)
	_, hit := cache.get("fresh")
	c.Assert(hit, check.Equals, true)
}

func (s *CacheTestSuite) TestPurgeDropsEverything(c *check.C) {
	clk := testclock.NewClock(time.Now())
	cache := newResultCache(clk, 30*time.Minute, 500)

	cache.put("a", []Result{{DocID: 1}})
	cache.put("b", []Result{{DocID: 2}})
	cache.Purge()

	c.Assert(cache.len(), check.Equals, 0)
}

func (s *CacheTestSuite) TestInflightGateAdmitsSingleLeader(c *check.C) {
	clk := testclock.NewClock(time.Now())
	cache := newResultCache(clk, 30*time.Minute, 500)

	leader, _ := cache.acquire("key")
	c.Assert(leader, check.Equals, true)

	follower, done := cache.acquire("key")
	c.Assert(follower, check.Equals, false)

	cache.release("key")
	select {
	case <-done:
	default:
		c.Fatal("follower was not released")
	}
}
