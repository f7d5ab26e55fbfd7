package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
	"github.com/job-finders/app/internal/store"
)

var testTerms = []string{"information-technology", "finance", "nursing"}

func makeJob(term, title, ref string) jobs.Job {
	posted := time.Date(2023, time.October, 2, 0, 0, 0, 0, time.UTC)
	return jobs.Job{
		ID:             "id-" + ref,
		SearchTerm:     term,
		Title:          title,
		CompanyName:    "Acme Corp",
		JobLink:        "https://example.com/" + ref,
		Ref:            ref,
		Slug:           jobs.Slugify(title, ref),
		PostedDate:     posted,
		ExpirationDate: posted.AddDate(0, 0, 30),
	}
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New()
	snap := store.NewSnapshot()
	snap.Merge([]jobs.Job{
		makeJob("information-technology", "Python Developer", "r1"),
		makeJob("information-technology", "Java Developer", "r2"),
		makeJob("information-technology", "Senior Python Developer", "r3"),
		makeJob("finance", "Accountant", "r4"),
	})
	st.Swap(snap)
	return NewServer(st, testTerms, zap.NewNop()), st
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJobsForTerm(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/jobs/information-technology")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
}

func TestJobsForUnknownTermIsEmptyNotError(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/jobs/agriculture")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestJobByRef(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/job/ref/r4")
	require.Equal(t, http.StatusOK, rec.Code)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, "Accountant", job.Title)

	rec = doGet(t, s, "/v1/job/ref/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobBySlug(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/job/slug/accountant-r4")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(t, s, "/v1/job/slug/not-a-slug")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimilarJobs(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/jobs/information-technology/similar?title=Senior+Python+Developer")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	titles := make([]string, 0, len(list))
	for _, j := range list {
		titles = append(titles, j.Title)
	}
	require.Equal(t, []string{"Python Developer", "Java Developer"}, titles)

	rec = doGet(t, s, "/v1/jobs/information-technology/similar")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTermsWithNavigation(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s, "/v1/terms?current=information-technology")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp termsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, testTerms, resp.Terms)
	// First term wraps backwards to the last.
	require.Equal(t, "nursing", resp.Previous)
	require.Equal(t, "finance", resp.Next)

	rec = doGet(t, s, "/v1/terms?current=bogus")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
