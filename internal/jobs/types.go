// Package jobs defines core types shared across subsystems.
package jobs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Job represents one listing scraped from the crawl target. It is
// immutable after construction: every field is set by the extractor
// before the record enters the store.
type Job struct {
	ID          string   `json:"id"`
	SearchTerm  string   `json:"search_term"`
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Salary      string   `json:"salary"`
	Position    string   `json:"position"`
	Location    string   `json:"location"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"desired_skills,omitempty"`
	LogoLink    string   `json:"logo_link,omitempty"`
	JobLink     string   `json:"job_link"`

	// Ref is the site-provided listing identifier after normalization;
	// it is the store key.
	Ref string `json:"job_ref"`
	// Slug is a URL-safe secondary key derived from Title and Ref.
	Slug string `json:"slug"`

	// UpdatedTime and Expires keep the raw source strings; the derived
	// dates are what validation operates on.
	UpdatedTime    string    `json:"updated_time"`
	Expires        string    `json:"expires"`
	PostedDate     time.Time `json:"posted_date"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// Validate enforces the field-format rules a record must satisfy before
// it may enter the store.
func (j Job) Validate() error {
	if j.Ref == "" {
		return fmt.Errorf("job ref is required")
	}
	if j.Ref != NormalizeRef(j.Ref) {
		return fmt.Errorf("job ref %q is not normalized", j.Ref)
	}
	if j.SearchTerm == "" {
		return fmt.Errorf("search term is required")
	}
	if j.Title == "" {
		return fmt.Errorf("title is required")
	}
	if j.CompanyName == "" {
		return fmt.Errorf("company name is required")
	}
	if j.JobLink == "" {
		return fmt.Errorf("job link is required")
	}
	if j.PostedDate.IsZero() {
		return fmt.Errorf("posted date is required")
	}
	if j.ExpirationDate.IsZero() {
		return fmt.Errorf("expiration date is required")
	}
	return nil
}

// refSeparators are characters after which a raw reference string is
// garbage (tracking suffixes and the like); the ref is cut at the first one.
const refSeparators = "|/,"

// TruncateRef cuts a raw reference string at the first separator character.
func TruncateRef(ref string) string {
	if i := strings.IndexAny(ref, refSeparators); i >= 0 {
		ref = ref[:i]
	}
	return strings.TrimSpace(ref)
}

// NormalizeRef lowers the reference and strips whitespace and punctuation
// so logically identical references collapse to one store key. Applying it
// to an already normalized ref is a no-op.
func NormalizeRef(ref string) string {
	var b strings.Builder
	b.Grow(len(ref))
	for _, r := range strings.ToLower(ref) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slugify builds the human-readable secondary key from a title and a
// normalized reference. Deterministic for a given (title, ref) pair.
func Slugify(title, ref string) string {
	var b strings.Builder
	b.Grow(len(title) + len(ref) + 1)
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return ref
	}
	return slug + "-" + ref
}

const postedDateLayout = "2 Jan 2006"

// ParsePostedDate parses the source "Posted 02 Jan 2006 by Author" string
// into the posting date.
func ParsePostedDate(updated string) (time.Time, error) {
	s := strings.TrimSpace(updated)
	if !strings.HasPrefix(s, "Posted ") {
		return time.Time{}, fmt.Errorf("updated time %q: missing Posted prefix", updated)
	}
	s = strings.TrimPrefix(s, "Posted ")
	if i := strings.Index(s, " by "); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(postedDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("updated time %q: %w", updated, err)
	}
	return t, nil
}

// ParseExpiration turns an "N Days left" expiry string into a concrete
// date relative to the posting date.
func ParseExpiration(posted time.Time, expires string) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(expires)))
	if len(fields) != 3 || (fields[1] != "days" && fields[1] != "day") || fields[2] != "left" {
		return time.Time{}, fmt.Errorf("expires %q: expected %q form", expires, "N Days left")
	}
	days, err := strconv.Atoi(fields[0])
	if err != nil || days < 0 {
		return time.Time{}, fmt.Errorf("expires %q: bad day count", expires)
	}
	return posted.AddDate(0, 0, days), nil
}
