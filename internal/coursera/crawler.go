package coursera

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/config"
	"skill-map/internal/domain"
	"skill-map/internal/httpx"
)

const courseLinkSelector = "a[href^='/learn/']"

// Crawler finds Coursera courses for a skill by scraping the public search page.
type Crawler struct {
	BaseURL    string
	HTTP       *http.Client
	UserAgent  string
	MaxCourses int
	Delay      time.Duration
	Extractor  SkillExtractor
	Log        log.FieldLogger
}

func New(cfg config.Config) *Crawler {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Crawler{
		BaseURL:    strings.TrimRight(cfg.CourseraBaseURL, "/"),
		HTTP:       &http.Client{Timeout: timeout},
		UserAgent:  cfg.CourseraUserAgent,
		MaxCourses: cfg.CourseraMaxCourses,
		Delay:      cfg.CourseraDelay,
		Extractor:  HeadingListExtractor{},
		Log:        log.StandardLogger(),
	}
}

// SearchURL is the best-match search page for skill.
func (c *Crawler) SearchURL(skill string) string {
	return c.BaseURL + "/search?query=" + url.QueryEscape(skill) + "&sortBy=BEST_MATCH"
}

// FindCourses returns up to MaxCourses courses for skill, each with its
// taught skills. A failing search page is an error; a failing detail page only
// leaves that course's skills empty.
func (c *Crawler) FindCourses(ctx context.Context, skill string) ([]domain.Course, error) {
	doc, err := c.fetch(ctx, c.SearchURL(skill))
	if err != nil {
		return nil, fmt.Errorf("coursera: search %q: %w", skill, err)
	}

	courses := c.parseResults(doc)
	for i := range courses {
		if i > 0 {
			if err := httpx.Sleep(ctx, c.Delay); err != nil {
				return nil, err
			}
		}
		courses[i].Skills = c.CourseSkills(ctx, courses[i].Link)
	}

	c.Log.WithFields(log.Fields{"skill": skill, "courses": len(courses)}).Debug("coursera search done")
	return courses, nil
}

// parseResults collects distinct course links in page order, up to MaxCourses.
func (c *Crawler) parseResults(doc *goquery.Document) []domain.Course {
	limit := c.MaxCourses
	if limit <= 0 {
		limit = 1
	}
	base, _ := url.Parse(c.BaseURL)

	var out []domain.Course
	seen := map[string]bool{}
	doc.Find(courseLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.SplitN(href, "?", 2)[0]
		slug := strings.TrimSpace(strings.ReplaceAll(href, "/learn/", ""))
		if slug == "" || seen[slug] {
			return true
		}
		seen[slug] = true

		out = append(out, domain.Course{
			Name: strings.TrimSpace(a.Text()),
			Slug: slug,
			Link: absolutize(base, href),
		})
		return len(out) < limit
	})
	return out
}

// CourseSkills fetches a detail page and returns its joined skill list, or ""
// when the page cannot be fetched or parsed.
func (c *Crawler) CourseSkills(ctx context.Context, link string) string {
	doc, err := c.fetch(ctx, link)
	if err != nil {
		c.Log.WithFields(log.Fields{"url": link, "error": err}).Warn("coursera: course page skipped")
		return ""
	}
	extractor := c.Extractor
	if extractor == nil {
		extractor = HeadingListExtractor{}
	}
	return JoinSkills(extractor.ExtractSkills(doc))
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	header := http.Header{}
	header.Set("User-Agent", c.UserAgent)
	header.Set("Accept", "text/html,application/xhtml+xml")
	header.Set("Accept-Encoding", httpx.AcceptEncoding)

	body, err := httpx.GetBody(ctx, c.HTTP, pageURL, header)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("coursera: parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
