// Package extractor turns raw listing and detail HTML into Job records.
// All markup-dependent queries live here so a site layout change touches
// one module, not its callers.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
	"github.com/job-finders/app/internal/metrics"
)

// Selectors for the crawl target's markup.
const (
	listingBlockSel    = "div.job-result"
	detailLinkSel      = "a.show-more"
	detailContainerSel = "div.job-description"
	descContainerSel   = "div.job-desc-on-expired"
	descriptionSel     = "div.job-details"
)

// Extractor parses pages fetched from one crawl target.
type Extractor struct {
	base   *url.URL
	ids    jobs.IDGenerator
	logger *zap.Logger
}

// New creates an Extractor that resolves relative detail links against
// baseURL.
func New(baseURL string, ids jobs.IDGenerator, logger *zap.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{base: base, ids: ids, logger: logger}, nil
}

// ListingLinks returns the detail-page URL of every listing block on a
// listing page. A block without the link is skipped, not fatal to the page.
func (e *Extractor) ListingLinks(page []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		e.logger.Debug("listing page unparseable", zap.Error(err))
		return nil
	}

	var links []string
	doc.Find(listingBlockSel).Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find(detailLinkSel).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, e.base.ResolveReference(ref).String())
	})
	return links
}

// Detail extracts one Job from a detail page. Missing required structure
// or an invalid date yields a Skip for that single record; a site markup
// change degrades yield, not correctness.
func (e *Extractor) Detail(page []byte, term, link string) jobs.DetailResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return e.skip(link, "detail page unparseable")
	}

	container := doc.Find(detailContainerSel).First()
	if container.Length() == 0 {
		return e.skip(link, "missing job description container")
	}

	fields := map[string]string{}
	for name, sel := range map[string]string{
		"title":        "h1",
		"company":      "h2",
		"salary":       "li.salary",
		"position":     "li.position",
		"location":     "li.location",
		"updated_time": "li.updated-time",
		"expires":      "li.expires",
		"job_ref":      "li.cjun-job-ref",
	} {
		value := strings.TrimSpace(container.Find(sel).First().Text())
		if value == "" {
			return e.skip(link, "missing "+name)
		}
		fields[name] = value
	}
	logo, _ := container.Find("img").First().Attr("src")

	description, skills := e.descriptionBlock(doc)

	ref := jobs.NormalizeRef(jobs.TruncateRef(fields["job_ref"]))
	if ref == "" {
		return e.skip(link, "empty ref after normalization")
	}

	posted, err := jobs.ParsePostedDate(fields["updated_time"])
	if err != nil {
		return e.skip(link, err.Error())
	}
	expiration, err := jobs.ParseExpiration(posted, fields["expires"])
	if err != nil {
		return e.skip(link, err.Error())
	}

	id, err := e.ids.NewID()
	if err != nil {
		return e.skip(link, "id generation: "+err.Error())
	}

	job := jobs.Job{
		ID:             id,
		SearchTerm:     term,
		Title:          fields["title"],
		CompanyName:    fields["company"],
		Salary:         fields["salary"],
		Position:       fields["position"],
		Location:       fields["location"],
		Description:    description,
		Skills:         skills,
		LogoLink:       logo,
		JobLink:        link,
		Ref:            ref,
		Slug:           jobs.Slugify(fields["title"], ref),
		UpdatedTime:    fields["updated_time"],
		Expires:        fields["expires"],
		PostedDate:     posted,
		ExpirationDate: expiration,
	}
	if err := job.Validate(); err != nil {
		return e.skip(link, err.Error())
	}

	metrics.ObserveExtraction("found")
	return jobs.Found(job)
}

// descriptionBlock reads the optional free-text description and skills
// list. A page with zero skill sub-lists yields an empty list, not an error.
func (e *Extractor) descriptionBlock(doc *goquery.Document) (string, []string) {
	container := doc.Find(descContainerSel).First()
	if container.Length() == 0 {
		return "", nil
	}
	description := strings.TrimSpace(container.Find(descriptionSel).First().Text())

	var skills []string
	container.Find("ul").First().Find("li").Each(func(_ int, item *goquery.Selection) {
		if skill := strings.TrimSpace(item.Text()); skill != "" {
			skills = append(skills, skill)
		}
	})
	return description, skills
}

func (e *Extractor) skip(link, reason string) jobs.DetailResult {
	e.logger.Debug("detail extraction skipped",
		zap.String("link", link),
		zap.String("reason", reason),
	)
	metrics.ObserveExtraction("skipped")
	return jobs.Skip(reason)
}
