package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountsByLabel(t *testing.T) {
	c := New()

	c.RuleEvaluated(loanappl.PhaseChange, "calculate_loan_amount")
	c.RuleEvaluated(loanappl.PhaseChange, "calculate_loan_amount")
	c.RuleEvaluated(loanappl.PhaseLoad, "set_default_status")
	c.FailureRaised(loanappl.Failure{Field: loanappl.FieldRepaymentPeriods, Kind: loanappl.FailureInvalid})
	c.LookupFailed(loanappl.EffectFetchParty)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ruleEvaluations.WithLabelValues("change", "calculate_loan_amount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ruleEvaluations.WithLabelValues("load", "set_default_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.validationFailures.WithLabelValues(loanappl.FieldRepaymentPeriods, "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lookupFailures.WithLabelValues("fetch_party")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.LookupFailed(loanappl.EffectFetchLoanType)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `loanappl_lookup_failures_total{kind="fetch_loan_type"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollector_SatisfiesObservers(t *testing.T) {
	var _ loanappl.Observer = New()
	var _ interface{ LookupFailed(loanappl.EffectKind) } = New()
}
