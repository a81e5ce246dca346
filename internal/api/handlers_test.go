package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"property-backoffice/internal/billing"
	"property-backoffice/internal/database"
	"property-backoffice/internal/leases"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("/api/leases") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("/api/leases") {
		t.Error("request over the limit should be denied")
	}

	// A different endpoint has its own bucket
	if !limiter.Allow("/api/tenants") {
		t.Error("other endpoint should not share the limit")
	}
}

func TestLeaseErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Server{}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("lease lookup: %w", database.ErrNotFound), http.StatusNotFound},
		{"invalid terms", billing.TermsError{Field: "rent_amount", Reason: "must be positive"}, http.StatusBadRequest},
		{"missing anchor", billing.ErrMissingAnchorDate, http.StatusBadRequest},
		{"invalid period", fmt.Errorf("period check: %w", leases.ErrInvalidPeriod), http.StatusBadRequest},
		{"billing locked", billing.ErrBillingLocked, http.StatusConflict},
		{"duplicate payment", billing.ErrDuplicatePeriodPayment, http.StatusConflict},
		{"occupied unit", fmt.Errorf("unit u1: %w", leases.ErrUnitOccupied), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			s.leaseError(c, tc.err)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
