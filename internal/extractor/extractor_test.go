package extractor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
)

type fakeIDs struct {
	next int
}

func (f *fakeIDs) NewID() (string, error) {
	f.next++
	return fmt.Sprintf("id-%d", f.next), nil
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New("https://www.careerjunction.co.za", &fakeIDs{}, zap.NewNop())
	require.NoError(t, err)
	return e
}

func listingPage(links ...string) []byte {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, link := range links {
		b.WriteString(`<div class="job-result">`)
		if link != "" {
			fmt.Fprintf(&b, `<a class="show-more" href="%s">Show more</a>`, link)
		}
		b.WriteString("</div>")
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

type detailOpts struct {
	omit   string
	ref    string
	title  string
	posted string
	skills []string
}

func detailPage(opts detailOpts) []byte {
	if opts.ref == "" {
		opts.ref = "CJ-4451"
	}
	if opts.title == "" {
		opts.title = "Senior Python Developer"
	}
	if opts.posted == "" {
		opts.posted = "Posted 02 Oct 2023 by Acme Recruiting"
	}

	field := func(name, markup string) string {
		if opts.omit == name {
			return ""
		}
		return markup
	}

	var skills strings.Builder
	for _, s := range opts.skills {
		fmt.Fprintf(&skills, "<li>%s</li>", s)
	}

	page := fmt.Sprintf(`<html><body>
<div class="job-description">
  <img src="/logos/acme.png"/>
  %s
  %s
  <ul>
    %s
    %s
    %s
    %s
    %s
    %s
  </ul>
</div>
<div class="job-desc-on-expired">
  <div class="job-details">Build and run backend services.</div>
  <ul>%s</ul>
</div>
</body></html>`,
		field("title", "<h1>"+opts.title+"</h1>"),
		field("company", "<h2>Acme Corp</h2>"),
		field("salary", `<li class="salary">R50000 per month</li>`),
		field("position", `<li class="position">Permanent</li>`),
		field("location", `<li class="location">Cape Town</li>`),
		field("updated_time", `<li class="updated-time">`+opts.posted+`</li>`),
		field("expires", `<li class="expires">61 Days left</li>`),
		field("job_ref", `<li class="cjun-job-ref">`+opts.ref+`</li>`),
		skills.String(),
	)
	return []byte(page)
}

func TestListingLinksResolvesAndSkips(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	page := listingPage("/jobs/detail/1234", "", "https://other.example.com/jobs/5678")

	links := e.ListingLinks(page)
	require.Equal(t, []string{
		"https://www.careerjunction.co.za/jobs/detail/1234",
		"https://other.example.com/jobs/5678",
	}, links)
}

func TestListingLinksEmptyPage(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	require.Empty(t, e.ListingLinks([]byte("<html><body>nothing here</body></html>")))
}

func TestDetailBuildsValidatedJob(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	page := detailPage(detailOpts{ref: "CJ 4451", skills: []string{"Python", "Postgres"}})

	res := e.Detail(page, "information-technology", "https://www.careerjunction.co.za/jobs/detail/4451")
	require.False(t, res.Skipped, res.Reason)

	job := res.Job
	require.Equal(t, "cj4451", job.Ref)
	require.Equal(t, jobs.NormalizeRef(job.Ref), job.Ref)
	require.Equal(t, "information-technology", job.SearchTerm)
	require.Equal(t, "Senior Python Developer", job.Title)
	require.Equal(t, "Acme Corp", job.CompanyName)
	require.Equal(t, "R50000 per month", job.Salary)
	require.Equal(t, "Cape Town", job.Location)
	require.Equal(t, "/logos/acme.png", job.LogoLink)
	require.Equal(t, "Build and run backend services.", job.Description)
	require.Equal(t, []string{"Python", "Postgres"}, job.Skills)
	require.Equal(t, "senior-python-developer-cj4451", job.Slug)
	require.Equal(t, time.Date(2023, time.October, 2, 0, 0, 0, 0, time.UTC), job.PostedDate)
	require.Equal(t, time.Date(2023, time.December, 2, 0, 0, 0, 0, time.UTC), job.ExpirationDate)
	require.NotEmpty(t, job.ID)
	require.NoError(t, job.Validate())
}

func TestDetailMissingSalaryIsSkipped(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	res := e.Detail(detailPage(detailOpts{omit: "salary"}), "finance", "https://example.com/x")
	require.True(t, res.Skipped)
	require.Contains(t, res.Reason, "salary")
}

func TestDetailMissingContainerIsSkipped(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	res := e.Detail([]byte("<html><body><p>redesigned page</p></body></html>"), "finance", "https://example.com/x")
	require.True(t, res.Skipped)
}

func TestDetailUnparseableDateIsSkipped(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	res := e.Detail(detailPage(detailOpts{posted: "Updated recently"}), "finance", "https://example.com/x")
	require.True(t, res.Skipped)
}

func TestDetailNoSkillListsYieldsEmptySkills(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	res := e.Detail(detailPage(detailOpts{}), "finance", "https://example.com/x")
	require.False(t, res.Skipped, res.Reason)
	require.Empty(t, res.Job.Skills)
}

func TestDetailRefTruncatedAtSeparator(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	res := e.Detail(detailPage(detailOpts{ref: "CJ-4451 | South Africa"}), "finance", "https://example.com/x")
	require.False(t, res.Skipped, res.Reason)
	require.Equal(t, "cj4451", res.Job.Ref)
}
