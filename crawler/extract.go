package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Locate the <base href="xxx"> tag and return the value of the href
	// attribute.
	baseHrefRegex = regexp.MustCompile(`(?i)<base.*?href\s*?=\s*?"(.*?)\s*?"`)
	// Locate <a href="xxx"> tags and return the value of the href attribute.
	findLinkRegex = regexp.MustCompile(`(?i)<a.*?href\s*?=\s*?"\s*?(.*?)\s*?".*?>`)
	// Locate a rel="nofollow" attribute on an anchor tag. Such links are
	// kept out of the edge set so they never contribute to page rank.
	noFollowRegex = regexp.MustCompile(`(?i)rel\s*?=\s*?"?nofollow"?`)
	// Locate links that point to resources that don't serve html content.
	exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js)$`)
)

// extractLinks scans raw HTML for anchor targets, resolves them against
// the page URL and returns the deduplicated follow and no-follow link
// sets. Fragments are stripped and only http(s) targets are retained.
func extractLinks(pageURL, content string) (links, noFollow []string) {
	relativeTo, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil
	}

	// A <base href="xxx"> tag overrides the resolution base for every
	// relative url on the page.
	if baseMatches := baseHrefRegex.FindStringSubmatch(content); len(baseMatches) == 2 {
		if baseURL := resolveToAbsoluteURL(relativeTo, ensureTrailingSlash(baseMatches[1])); baseURL != nil {
			relativeTo = baseURL
		}
	}

	seen := map[string]struct{}{}
	for _, match := range findLinkRegex.FindAllStringSubmatch(content, -1) {
		resolved := resolveToAbsoluteURL(relativeTo, match[1])
		if resolved == nil || exclusionRegex.MatchString(resolved.Path) {
			continue
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}

		resolved.Fragment = ""
		target := resolved.String()
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}

		if noFollowRegex.MatchString(match[0]) {
			noFollow = append(noFollow, target)
		} else {
			links = append(links, target)
		}
	}

	return links, noFollow
}

func resolveToAbsoluteURL(relativeTo *url.URL, target string) *url.URL {
	target = strings.TrimSpace(target)
	if target == "" || strings.HasPrefix(target, "#") {
		return nil
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil
	}

	return relativeTo.ResolveReference(parsed)
}

func ensureTrailingSlash(s string) string {
	if !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}
