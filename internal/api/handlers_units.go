package api

import (
	"net/http"
	"strconv"

	"property-backoffice/internal/database"

	"github.com/gin-gonic/gin"
)

// createUnitRequest is the payload for registering an apartment unit
type createUnitRequest struct {
	Label    string `json:"label" binding:"required"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Bedrooms *int   `json:"bedrooms"`
}

// handleListUnits returns units, optionally filtered by status
func (s *Server) handleListUnits(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	units, err := s.repo.ListUnits(c.Request.Context(), status, limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list units")
		return
	}
	successResponse(c, units)
}

// handleCreateUnit registers a new unit, available by default
func (s *Server) handleCreateUnit(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	unit := &database.Unit{Label: req.Label, Bedrooms: req.Bedrooms}
	if req.Address != "" {
		unit.Address = &req.Address
	}
	if req.City != "" {
		unit.City = &req.City
	}

	if err := s.repo.CreateUnit(c.Request.Context(), unit); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to create unit")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    unit,
	})
}

// handleGetUnit returns a single unit by ID
func (s *Server) handleGetUnit(c *gin.Context) {
	unit, err := s.repo.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, unit)
}

// updateUnitStatusRequest is the payload for changing a unit's availability
type updateUnitStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// handleUpdateUnitStatus changes a unit's availability status
func (s *Server) handleUpdateUnitStatus(c *gin.Context) {
	var req updateUnitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Status {
	case database.UnitAvailable, database.UnitOccupied, database.UnitInactive:
	default:
		errorResponse(c, http.StatusBadRequest, "status must be available, occupied or inactive")
		return
	}

	if err := s.repo.UpdateUnitStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		s.leaseError(c, err)
		return
	}
	successResponse(c, gin.H{"id": c.Param("id"), "status": req.Status})
}
