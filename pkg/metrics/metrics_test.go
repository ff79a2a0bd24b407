package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	m := New()

	m.ObserveQuery("search", 10*time.Millisecond, 3, nil)
	m.ObserveQuery("search", time.Millisecond, 0, pkg.WrapErrorf(nil, pkg.ErrIndexAbsent, "no index"))
	m.ObserveQuery("correct", time.Millisecond, 1, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("search", "absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("correct", "error")))
}

func TestObserveBuild(t *testing.T) {
	m := New()

	m.ObservePhase("download", time.Second)
	m.ObserveDocuments(5, 2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("indexed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BuildPhaseDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/search", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/search",status="2xx"} 1`)
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status))
	}
}
