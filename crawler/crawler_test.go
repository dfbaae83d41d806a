package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/index"
	memindex "github.com/kasozi/searchengine/index/store/memory"
	"github.com/kasozi/searchengine/linkgraph/graph"
	memgraph "github.com/kasozi/searchengine/linkgraph/store/memory"
)

var _ = check.Suite(new(ExtractLinksTestSuite))
var _ = check.Suite(new(CrawlerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type ExtractLinksTestSuite struct{}

func (s *ExtractLinksTestSuite) TestRelativeLinkResolution(c *check.C) {
	content := `<a href="/about">About</a> <a href="contact.html">Contact</a>`
	links, noFollow := extractLinks("https://example.com/team/", content)

	c.Assert(links, check.DeepEquals, []string{
		"https://example.com/about",
		"https://example.com/team/contact.html",
	})
	c.Assert(noFollow, check.HasLen, 0)
}

func (s *ExtractLinksTestSuite) TestBaseHrefOverridesResolution(c *check.C) {
	content := `<base href="https://example.com/docs"><a href="intro.html">Intro</a>`
	links, _ := extractLinks("https://example.com/team/", content)

	c.Assert(links, check.DeepEquals, []string{"https://example.com/docs/intro.html"})
}

func (s *ExtractLinksTestSuite) TestNoFollowLinksAreSeparated(c *check.C) {
	content := `<a href="https://a.test/">A</a> <a href="https://b.test/" rel="nofollow">B</a>`
	links, noFollow := extractLinks("https://example.com/", content)

	c.Assert(links, check.DeepEquals, []string{"https://a.test/"})
	c.Assert(noFollow, check.DeepEquals, []string{"https://b.test/"})
}

func (s *ExtractLinksTestSuite) TestFragmentsAndDuplicatesAreDropped(c *check.C) {
	content := `<a href="https://a.test/page#intro">1</a> <a href="https://a.test/page">2</a>`
	links, _ := extractLinks("https://example.com/", content)

	c.Assert(links, check.DeepEquals, []string{"https://a.test/page"})
}

func (s *ExtractLinksTestSuite) TestNonContentTargetsAreDropped(c *check.C) {
	content := `<a href="logo.png">logo</a> <a href="mailto:x@y.test">mail</a> <a href="#top">top</a>`
	links, noFollow := extractLinks("https://example.com/", content)

	c.Assert(links, check.HasLen, 0)
	c.Assert(noFollow, check.HasLen, 0)
}

type indexRecorder struct {
	pages map[string]string
}

func (r *indexRecorder) BuildIndex(ctx context.Context, pages map[string]string) error {
	r.pages = pages
	return nil
}

type CrawlerTestSuite struct {
	graph    *memgraph.InMemoryGraph
	docs     *memindex.InMemoryStore
	recorder *indexRecorder
	server   *httptest.Server
}

func (s *CrawlerTestSuite) SetUpTest(c *check.C) {
	s.graph = memgraph.NewInMemoryGraph()
	s.docs = memindex.NewInMemoryStore()
	s.recorder = &indexRecorder{}

	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>A</title></head><body>
<p>Page A links onward.</p>
<a href="/b">B</a> <a href="/logo.png">logo</a>
</body></html>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>B</title></head><body><p>Page B.</p></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	s.server = httptest.NewServer(mux)
}

func (s *CrawlerTestSuite) TearDownTest(c *check.C) {
	s.server.Close()
}

func (s *CrawlerTestSuite) newCrawler(c *check.C) *Crawler {
	crawler, err := New(Config{
		GraphAPI:       s.graph,
		IndexAPI:       s.recorder,
		DocumentSource: s.docs,
		FetchWorkers:   2,
	})
	c.Assert(err, check.IsNil)
	return crawler
}

func (s *CrawlerTestSuite) TestConfigValidation(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?ms).*graph API not provided.*")
	c.Assert(err, check.ErrorMatches, "(?ms).*index API not provided.*")
	c.Assert(err, check.ErrorMatches, "(?ms).*document source not provided.*")
}

func (s *CrawlerTestSuite) TestReindexFetchesAndIndexesPages(c *check.C) {
	crawler := s.newCrawler(c)
	urlA, urlB := s.server.URL+"/a", s.server.URL+"/b"

	err := crawler.Reindex(context.Background(), []string{urlA, urlB, s.server.URL + "/missing"})
	c.Assert(err, check.IsNil)

	c.Assert(s.recorder.pages, check.HasLen, 2)
	c.Assert(s.recorder.pages[urlA], check.Not(check.Equals), "")
	c.Assert(s.recorder.pages[urlB], check.Not(check.Equals), "")
}

func (s *CrawlerTestSuite) TestReindexUpdatesLinkGraph(c *check.C) {
	crawler := s.newCrawler(c)
	urlA, urlB := s.server.URL+"/a", s.server.URL+"/b"

	c.Assert(crawler.Reindex(context.Background(), []string{urlA}), check.IsNil)

	links := s.allLinkURLs(c)
	c.Assert(links, check.DeepEquals, sortedStrings(urlA, urlB))

	edges := s.allEdges(c)
	c.Assert(edges, check.HasLen, 1)

	srcLink := s.findLinkByURL(c, urlA)
	dstLink := s.findLinkByURL(c, urlB)
	c.Assert(edges[0].Src, check.Equals, srcLink.ID)
	c.Assert(edges[0].Dest, check.Equals, dstLink.ID)
}

func (s *CrawlerTestSuite) TestReindexDropsStaleEdges(c *check.C) {
	crawler := s.newCrawler(c)
	urlA := s.server.URL + "/a"

	// Seed the graph with an edge from page A to a target the page no
	// longer references.
	srcLink := &graph.Link{URL: urlA, RetrievedAt: time.Now()}
	c.Assert(s.graph.UpsertLink(srcLink), check.IsNil)
	staleLink := &graph.Link{URL: "https://gone.test/"}
	c.Assert(s.graph.UpsertLink(staleLink), check.IsNil)
	c.Assert(s.graph.UpsertEdge(&graph.Edge{Src: srcLink.ID, Dest: staleLink.ID}), check.IsNil)

	c.Assert(crawler.Reindex(context.Background(), []string{urlA}), check.IsNil)

	for _, edge := range s.allEdges(c) {
		c.Assert(edge.Dest, check.Not(check.Equals), staleLink.ID,
			check.Commentf("stale edge was not removed"))
	}
}

func (s *CrawlerTestSuite) TestFullPassUsesRegisteredDocuments(c *check.C) {
	urlB := s.server.URL + "/b"
	c.Assert(s.docs.UpsertDocument(&index.Document{URL: urlB}), check.IsNil)

	crawler := s.newCrawler(c)
	c.Assert(crawler.Reindex(context.Background(), nil), check.IsNil)

	c.Assert(s.recorder.pages, check.HasLen, 1)
	c.Assert(s.recorder.pages[urlB], check.Not(check.Equals), "")
}

func (s *CrawlerTestSuite) allLinkURLs(c *check.C) []string {
	it, err := s.graph.Links()
	c.Assert(err, check.IsNil)
	var urls []string
	for it.Next() {
		urls = append(urls, it.Link().URL)
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
	sort.Strings(urls)
	return urls
}

func (s *CrawlerTestSuite) allEdges(c *check.C) []*graph.Edge {
	it, err := s.graph.Edges()
	c.Assert(err, check.IsNil)
	var edges []*graph.Edge
	for it.Next() {
		edges = append(edges, it.Edge())
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
	return edges
}

func (s *CrawlerTestSuite) findLinkByURL(c *check.C, url string) *graph.Link {
	it, err := s.graph.Links()
	c.Assert(err, check.IsNil)
	defer func() { c.Assert(it.Close(), check.IsNil) }()
	for it.Next() {
		if link := it.Link(); link.URL == url {
			return link
		}
	}
	c.Fatalf("link %q not found in graph", url)
	return nil
}

func sortedStrings(values ...string) []string {
	sort.Strings(values)
	return values
}
