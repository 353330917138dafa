package handlers

import (
	"SiteWatch/pkg/uuidutil"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateWebsite регистрирует новый сайт для мониторинга
func (h *Handlers) CreateWebsite(c *gin.Context) {
	var req struct {
		UserID          string `json:"user_id" binding:"required"`
		OwnerEmail      string `json:"owner_email" binding:"required"`
		URL             string `json:"url" binding:"required"`
		IntervalMinutes int    `json:"interval_minutes" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "user_id, owner_email, url and interval_minutes are required"))
		return
	}

	website, err := h.websiteService.CreateWebsite(c.Request.Context(), req.UserID, req.OwnerEmail, req.URL, req.IntervalMinutes)
	if err != nil {
		h.logger.Error("failed to create website", "error", err, "url", req.URL)
		c.JSON(http.StatusBadRequest, ErrorResponse("create_failed", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse("website_created", gin.H{
		"website": website,
	}))
}

// GetWebsite возвращает сайт по ID
func (h *Handlers) GetWebsite(c *gin.Context) {
	websiteID := c.Param("id")
	if !uuidutil.IsValid(websiteID) {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "Invalid website ID"))
		return
	}

	website, err := h.websiteService.GetWebsite(c.Request.Context(), websiteID)
	if err != nil {
		h.logger.Error("failed to get website", "error", err, "website_id", websiteID)
		c.JSON(http.StatusInternalServerError, ErrorResponse("get_failed", "Failed to get website"))
		return
	}

	if website == nil {
		c.JSON(http.StatusNotFound, ErrorResponse("not_found", "Website not found"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("website_found", gin.H{
		"website": website,
	}))
}

// ListWebsites возвращает сайты пользователя
func (h *Handlers) ListWebsites(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "user_id query parameter is required"))
		return
	}

	websites, err := h.websiteService.ListWebsites(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list websites", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, ErrorResponse("list_failed", "Failed to list websites"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("websites_list", gin.H{
		"websites": websites,
		"count":    len(websites),
	}))
}

// UpdateWebsite меняет URL, email и интервал сайта; при изменении интервала
// перезапускает мониторинг пользователя, чтобы не остался старый таймер
func (h *Handlers) UpdateWebsite(c *gin.Context) {
	websiteID := c.Param("id")
	if !uuidutil.IsValid(websiteID) {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "Invalid website ID"))
		return
	}

	var req struct {
		OwnerEmail      string `json:"owner_email" binding:"required"`
		URL             string `json:"url" binding:"required"`
		IntervalMinutes int    `json:"interval_minutes" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "owner_email, url and interval_minutes are required"))
		return
	}

	website, intervalChanged, err := h.websiteService.UpdateWebsite(c.Request.Context(), websiteID, req.OwnerEmail, req.URL, req.IntervalMinutes)
	if err != nil {
		h.logger.Error("failed to update website", "error", err, "website_id", websiteID)
		c.JSON(http.StatusBadRequest, ErrorResponse("update_failed", err.Error()))
		return
	}

	if website == nil {
		c.JSON(http.StatusNotFound, ErrorResponse("not_found", "Website not found"))
		return
	}

	if intervalChanged && h.monitorService.IsMonitoring(website.UserID) {
		if err := h.monitorService.Restart(c.Request.Context(), website.UserID); err != nil {
			h.logger.Error("failed to restart monitoring after interval change",
				"error", err,
				"user_id", website.UserID,
				"website_id", websiteID,
			)
		}
	}

	c.JSON(http.StatusOK, SuccessResponse("website_updated", gin.H{
		"website":          website,
		"interval_changed": intervalChanged,
	}))
}

// DeleteWebsite удаляет сайт; его задача снимется при ближайшей сверке
func (h *Handlers) DeleteWebsite(c *gin.Context) {
	websiteID := c.Param("id")
	if !uuidutil.IsValid(websiteID) {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "Invalid website ID"))
		return
	}

	if err := h.websiteService.DeleteWebsite(c.Request.Context(), websiteID); err != nil {
		h.logger.Error("failed to delete website", "error", err, "website_id", websiteID)
		c.JSON(http.StatusNotFound, ErrorResponse("delete_failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("website_deleted", gin.H{
		"website_id": websiteID,
	}))
}
