package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/job-finders/app/internal/jobs"
)

func makeJob(term, title, rawRef string) jobs.Job {
	posted := time.Date(2023, time.October, 2, 0, 0, 0, 0, time.UTC)
	ref := jobs.NormalizeRef(rawRef)
	return jobs.Job{
		ID:             "id-" + ref,
		SearchTerm:     term,
		Title:          title,
		CompanyName:    "Acme Corp",
		Salary:         "Market related",
		Position:       "Permanent",
		Location:       "Cape Town",
		JobLink:        "https://example.com/jobs/" + ref,
		Ref:            ref,
		Slug:           jobs.Slugify(title, ref),
		UpdatedTime:    "Posted 02 Oct 2023 by Acme",
		Expires:        "30 Days left",
		PostedDate:     posted,
		ExpirationDate: posted.AddDate(0, 0, 30),
	}
}

func TestMergeRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	snap := NewSnapshot()
	job := makeJob("finance", "Accountant", "CJ 100")
	snap.Merge([]jobs.Job{job})
	s.Swap(snap)

	got, ok := s.ByRef(job.Ref)
	require.True(t, ok)
	require.Equal(t, job, got)

	// Lookup normalizes its argument, so the raw form resolves too.
	got, ok = s.ByRef("CJ 100")
	require.True(t, ok)
	require.Equal(t, job, got)
}

func TestMergeReplacesDuplicateRefs(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot()
	first := makeJob("information-technology", "Developer", "Job 123")
	second := makeJob("finance", "Analyst", "job-123")
	snap.Merge([]jobs.Job{first})
	snap.Merge([]jobs.Job{second})

	require.Equal(t, 1, snap.Len())

	s := New()
	s.Swap(snap)
	got, ok := s.ByRef("job123")
	require.True(t, ok)
	// Last writer wins, including the term association.
	require.Equal(t, "finance", got.SearchTerm)
	require.Equal(t, "Analyst", got.Title)
}

func TestBySlug(t *testing.T) {
	t.Parallel()

	s := New()
	snap := NewSnapshot()
	job := makeJob("education", "Math Teacher", "cj200")
	snap.Merge([]jobs.Job{job})
	s.Swap(snap)

	got, ok := s.BySlug("math-teacher-cj200")
	require.True(t, ok)
	require.Equal(t, job, got)

	_, ok = s.BySlug("missing-slug")
	require.False(t, ok)
}

func TestByTermInsertionOrder(t *testing.T) {
	t.Parallel()

	s := New()
	snap := NewSnapshot()
	a := makeJob("nursing", "Nurse A", "r1")
	b := makeJob("finance", "Analyst", "r2")
	c := makeJob("nursing", "Nurse C", "r3")
	snap.Merge([]jobs.Job{a, b, c})
	s.Swap(snap)

	got := s.ByTerm("nursing")
	require.Equal(t, []jobs.Job{a, c}, got)
	require.Empty(t, s.ByTerm("agriculture"))
}

func TestSimilarSharedTokenExcludingExact(t *testing.T) {
	t.Parallel()

	s := New()
	snap := NewSnapshot()
	snap.Merge([]jobs.Job{
		makeJob("information-technology", "Python Developer", "r1"),
		makeJob("information-technology", "Java Developer", "r2"),
		makeJob("information-technology", "Senior Python Developer", "r3"),
		makeJob("finance", "Python Developer", "r4"),
	})
	s.Swap(snap)

	got := s.Similar("information-technology", "Senior Python Developer", 0)
	titles := make([]string, 0, len(got))
	for _, j := range got {
		titles = append(titles, j.Title)
	}
	// Shares "Python"/"Developer"; the exact-title match and the other
	// term's job are excluded.
	require.Equal(t, []string{"Python Developer", "Java Developer"}, titles)
}

func TestSimilarCapsAtLimit(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot()
	for i := 0; i < 12; i++ {
		snap.Merge([]jobs.Job{makeJob("finance", fmt.Sprintf("Analyst %d", i), fmt.Sprintf("r%d", i))})
	}
	s := New()
	s.Swap(snap)

	require.Len(t, s.Similar("finance", "Senior Analyst", 0), DefaultSimilarLimit)
	require.Len(t, s.Similar("finance", "Senior Analyst", 3), 3)
}

func TestSwapReplacesWholeSnapshot(t *testing.T) {
	t.Parallel()

	s := New()
	first := NewSnapshot()
	first.Merge([]jobs.Job{makeJob("finance", "Analyst", "old1")})
	s.Swap(first)
	require.Equal(t, 1, s.Len())

	second := NewSnapshot()
	second.Merge([]jobs.Job{makeJob("finance", "Accountant", "new1")})
	s.Swap(second)

	require.Equal(t, 1, s.Len())
	_, ok := s.ByRef("old1")
	require.False(t, ok)
	_, ok = s.ByRef("new1")
	require.True(t, ok)
}
