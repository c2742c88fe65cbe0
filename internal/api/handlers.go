package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"secscan-go/internal/configuration"
	"secscan-go/internal/helper"
	"secscan-go/internal/incident"
	"secscan-go/internal/response"
	"secscan-go/internal/scanner"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ScanRequest struct {
	ProjectID    string               `json:"project_id"`
	ScanType     string               `json:"scan_type" binding:"required"`
	Dependencies []scanner.Dependency `json:"dependencies"`
}

type ListQueryParams struct {
	Limit int `form:"limit"`
}

// TriggerScanHandler starts a single scan in the background and answers
// immediately with its id. Completion is announced through the notification
// channel.
func (s *Server) TriggerScanHandler(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid scan request", "error": err.Error()})
		return
	}

	scanType, err := scanner.ParseScanType(req.ScanType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown scan type", "error": err.Error()})
		return
	}

	scanID := string(scanType) + "-" + helper.GenerateRandomID()
	target := scanner.Target{
		ScanID:       scanID,
		ProjectID:    req.ProjectID,
		Dependencies: req.Dependencies,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := s.service.ExecuteScan(ctx, scanType, target)
		if err != nil {
			log.Error().Str("scan_id", scanID).Err(err).Msg("on-demand scan failed")
			s.dispatcher.Enqueue("scanFailed", gin.H{"scan_id": scanID, "error": err.Error()})
			return
		}

		summary, err := s.service.Summarize(result)
		if err != nil {
			log.Error().Str("scan_id", scanID).Err(err).Msg("failed to summarize scan")
			return
		}
		s.dispatcher.Enqueue("scanCompleted", summary)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"scan_id":   scanID,
		"status":    "started",
		"timestamp": time.Now().UTC(),
	})
}

// TriggerAssessmentHandler starts a full assessment in the background.
func (s *Server) TriggerAssessmentHandler(c *gin.Context) {
	var target scanner.Target
	target.ProjectID = configuration.Config.Scan.ProjectID
	target.Dependencies = configuration.Config.Scan.Dependencies

	go func() {
		if _, err := s.orch.RunAssessment(context.Background(), target); err != nil {
			log.Error().Err(err).Msg("on-demand assessment failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "started",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) GetScanHandler(c *gin.Context) {
	result, err := s.service.GetScan(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve scan", "error": err.Error()})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) RecentScansHandler(c *gin.Context) {
	var queryParams ListQueryParams
	if err := c.ShouldBindQuery(&queryParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters", "error": err.Error()})
		return
	}

	scans, err := s.service.RecentScans(queryParams.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve scans", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scans)
}

func (s *Server) GetReportsHandler(c *gin.Context) {
	var queryParams ListQueryParams
	if err := c.ShouldBindQuery(&queryParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters", "error": err.Error()})
		return
	}

	reports, err := s.reports.Recent(queryParams.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve reports", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (s *Server) ActiveIncidentsHandler(c *gin.Context) {
	incidents, err := s.incidents.Active()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve incidents", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, incidents)
}

func (s *Server) GetIncidentHandler(c *gin.Context) {
	inc, err := s.incidents.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve incident", "error": err.Error()})
		return
	}

	if inc == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, inc)
}

func (s *Server) UpdateIncidentHandler(c *gin.Context) {
	var req response.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid update request", "error": err.Error()})
		return
	}

	inc, err := s.incidents.Update(c.Param("id"), req)
	if err != nil {
		if errors.Is(err, incident.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"message": "Invalid status transition", "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update incident", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inc)
}

func (s *Server) UpdateConfigHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read request body", "error": err.Error()})
		return
	}

	if err := configuration.UpdateConfig(s.configPath, body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update configuration", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated successfully. Please restart the application to apply changes."})
}

func (s *Server) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "secscan-go",
	})
}
