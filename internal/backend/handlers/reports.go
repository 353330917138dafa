package handlers

import (
	"SiteWatch/pkg/uuidutil"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetReport возвращает отчет о доступности сайта
func (h *Handlers) GetReport(c *gin.Context) {
	websiteID := c.Param("website_id")
	if !uuidutil.IsValid(websiteID) {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "Invalid website ID"))
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), websiteID)
	if err != nil {
		h.logger.Error("failed to get report", "error", err, "website_id", websiteID)
		c.JSON(http.StatusInternalServerError, ErrorResponse("get_failed", "Failed to get report"))
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse("not_found", "Report not found - website has not been checked yet"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("report_found", gin.H{
		"report": report,
	}))
}

// GetReportSummary возвращает сводку по журналу проверок сайта
func (h *Handlers) GetReportSummary(c *gin.Context) {
	websiteID := c.Param("website_id")
	if !uuidutil.IsValid(websiteID) {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "Invalid website ID"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	summary, err := h.reportService.GetSummary(c.Request.Context(), websiteID, limit)
	if err != nil {
		h.logger.Error("failed to get report summary", "error", err, "website_id", websiteID)
		c.JSON(http.StatusInternalServerError, ErrorResponse("summary_failed", "Failed to get report summary"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("report_summary", gin.H{
		"summary": summary,
	}))
}
