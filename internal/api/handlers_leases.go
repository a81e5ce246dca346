package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"property-backoffice/internal/billing"
	"property-backoffice/internal/database"
	"property-backoffice/internal/leases"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// createLeaseRequest is the payload for creating a lease agreement
type createLeaseRequest struct {
	TenantID         string  `json:"tenant_id" binding:"required"`
	UnitID           string  `json:"unit_id" binding:"required"`
	StartDate        string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate          string  `json:"end_date"`                      // Required for fixed leases
	RentAmount       float64 `json:"rent_amount" binding:"required"`
	DepositAmount    float64 `json:"deposit_amount"`
	PaymentFrequency string  `json:"payment_frequency" binding:"required"`
	DurationType     string  `json:"duration_type" binding:"required"`
	PaymentType      string  `json:"payment_type" binding:"required"`
}

// handleListLeases returns leases filtered by status and tenant
func (s *Server) handleListLeases(c *gin.Context) {
	status := c.Query("status")
	tenantID := c.Query("tenant_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := s.repo.ListLeases(c.Request.Context(), status, tenantID, limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list leases")
		return
	}
	successResponse(c, rows)
}

// handleCreateLease creates a pending lease and reserves its unit
func (s *Server) handleCreateLease(c *gin.Context) {
	var req createLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	lease := &database.Lease{
		TenantID:         req.TenantID,
		UnitID:           req.UnitID,
		StartDate:        startDate,
		RentAmount:       req.RentAmount,
		DepositAmount:    req.DepositAmount,
		PaymentFrequency: req.PaymentFrequency,
		DurationType:     req.DurationType,
		PaymentType:      req.PaymentType,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		lease.EndDate = &endDate
	}

	if err := s.leaseService.CreateLease(c.Request.Context(), lease); err != nil {
		s.leaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    lease,
	})
}

// handleGetLease returns a single lease by ID
func (s *Server) handleGetLease(c *gin.Context) {
	lease, err := s.repo.GetLease(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, lease)
}

// handleGetInitialObligations previews the move-in amounts due for a lease
func (s *Server) handleGetInitialObligations(c *gin.Context) {
	obligations, err := s.leaseService.InitialObligations(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, obligations)
}

// activateLeaseRequest is the payload for recording the initial payments
type activateLeaseRequest struct {
	FirstRentStart string `json:"first_rent_start" binding:"required"` // YYYY-MM-DD
	PaymentMethod  string `json:"payment_method"`
	PaidAt         string `json:"paid_at"` // YYYY-MM-DD, defaults to today
}

// handleActivateLease records the deposit, agency fees and (for upfront
// leases) the first rent, then flips the lease to active
func (s *Server) handleActivateLease(c *gin.Context) {
	var req activateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	firstRentStart, err := time.Parse(dateLayout, req.FirstRentStart)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "first_rent_start must be YYYY-MM-DD")
		return
	}

	input := leases.ActivateInput{
		FirstRentStart: firstRentStart,
		PaymentMethod:  req.PaymentMethod,
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse(dateLayout, req.PaidAt)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "paid_at must be YYYY-MM-DD")
			return
		}
		input.PaidAt = paidAt
	}

	obligations, err := s.leaseService.Activate(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, obligations)
}

// handleGetLeaseSchedule returns the classified billing periods for a lease
func (s *Server) handleGetLeaseSchedule(c *gin.Context) {
	schedule, err := s.leaseService.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, schedule)
}

// handleGetLeaseSummary returns the aggregated payment totals for a lease
func (s *Server) handleGetLeaseSummary(c *gin.Context) {
	summary, err := s.leaseService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, summary)
}

// recordPaymentRequest is the payload for settling a rent period
type recordPaymentRequest struct {
	PeriodStart   string  `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd     string  `json:"period_end" binding:"required"`   // YYYY-MM-DD
	Amount        float64 `json:"amount"`                          // Defaults to the lease rent
	PaymentMethod string  `json:"payment_method"`
	PaidAt        string  `json:"paid_at"` // YYYY-MM-DD, defaults to today
}

// handleRecordRentPayment records a paid rent entry for a billing period
func (s *Server) handleRecordRentPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "period_start must be YYYY-MM-DD")
		return
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "period_end must be YYYY-MM-DD")
		return
	}

	input := leases.RecordRentPaymentInput{
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse(dateLayout, req.PaidAt)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "paid_at must be YYYY-MM-DD")
			return
		}
		input.PaidAt = paidAt
	}

	payment, err := s.leaseService.RecordRentPayment(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		s.leaseError(c, err)
		return
	}

	resp := gin.H{
		"success": true,
		"data":    payment,
	}
	if s.summaryCache != nil {
		resp["receipt_reference"] = s.summaryCache.NextReceiptReference(c.Request.Context(), time.Now())
	}
	c.JSON(http.StatusCreated, resp)
}

// handleGetLeasePayments returns the payment ledger for a lease
func (s *Server) handleGetLeasePayments(c *gin.Context) {
	payments, err := s.leaseService.Payments(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, payments)
}

// handleGetLeasePenalties returns the late penalties recorded for a lease
func (s *Server) handleGetLeasePenalties(c *gin.Context) {
	penalties, err := s.leaseService.Penalties(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, penalties)
}

// handleTerminateLease terminates a lease early and frees its unit
func (s *Server) handleTerminateLease(c *gin.Context) {
	if err := s.leaseService.Terminate(c.Request.Context(), c.Param("id")); err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, gin.H{"message": "lease terminated"})
}

// handleGetPayment returns a single payment ledger entry by ID
func (s *Server) handleGetPayment(c *gin.Context) {
	payment, err := s.repo.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, payment)
}

// markPenaltyPaidRequest optionally links the settling payment
type markPenaltyPaidRequest struct {
	PaymentID string `json:"payment_id"`
}

// handleMarkPenaltyPaid settles a late penalty
func (s *Server) handleMarkPenaltyPaid(c *gin.Context) {
	var req markPenaltyPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	var paymentID *string
	if req.PaymentID != "" {
		paymentID = &req.PaymentID
	}

	if err := s.repo.MarkPenaltyPaid(c.Request.Context(), c.Param("id"), paymentID); err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, gin.H{"id": c.Param("id"), "status": "paid"})
}

// leaseError maps domain errors to HTTP status codes
func (s *Server) leaseError(c *gin.Context, err error) {
	var termsErr billing.TermsError
	switch {
	case leases.IsNotFound(err):
		errorResponse(c, http.StatusNotFound, "not found")
	case errors.As(err, &termsErr):
		errorResponse(c, http.StatusBadRequest, termsErr.Error())
	case errors.Is(err, billing.ErrMissingAnchorDate):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, leases.ErrInvalidPeriod):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, leases.ErrUnitOccupied):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, billing.ErrBillingLocked):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, billing.ErrDuplicatePeriodPayment):
		errorResponse(c, http.StatusConflict, err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
