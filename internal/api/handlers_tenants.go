package api

import (
	"net/http"
	"strconv"

	"property-backoffice/internal/database"

	"github.com/gin-gonic/gin"
)

// createTenantRequest is the payload for registering a tenant
type createTenantRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// handleListTenants returns tenants, newest first
func (s *Server) handleListTenants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tenants, err := s.repo.ListTenants(c.Request.Context(), limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	successResponse(c, tenants)
}

// handleCreateTenant registers a new tenant
func (s *Server) handleCreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tenant := &database.Tenant{FullName: req.FullName}
	if req.Email != "" {
		tenant.Email = &req.Email
	}
	if req.Phone != "" {
		tenant.Phone = &req.Phone
	}

	if err := s.repo.CreateTenant(c.Request.Context(), tenant); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to create tenant")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tenant,
	})
}

// handleGetTenant returns a single tenant by ID
func (s *Server) handleGetTenant(c *gin.Context) {
	tenant, err := s.repo.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, tenant)
}
