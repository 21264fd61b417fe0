package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAdView(t *testing.T) {
	before := testutil.ToFloat64(adEarnings.WithLabelValues("premium"))
	RecordAdView("premium", 20)
	assert.Equal(t, before+20, testutil.ToFloat64(adEarnings.WithLabelValues("premium")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHTTPRequest("GET", "/api/health", "200", 10*time.Millisecond)
	RecordWithdrawal("requested", 5000)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "adpay_http_requests_total"))
	assert.True(t, strings.Contains(body, `adpay_withdrawals_events_total{event="requested"}`))
}
