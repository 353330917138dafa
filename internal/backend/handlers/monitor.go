package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartMonitoring запускает мониторинг всех сайтов пользователя;
// вызывается слоем аутентификации при логине
func (h *Handlers) StartMonitoring(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "user_id is required"))
		return
	}

	if err := h.monitorService.StartMonitoring(c.Request.Context(), req.UserID); err != nil {
		// Без сессии мониторинг не запустился вовсе (сайты не загрузились)
		if !h.monitorService.IsMonitoring(req.UserID) {
			h.logger.Error("failed to start monitoring", "error", err, "user_id", req.UserID)
			c.JSON(http.StatusInternalServerError, ErrorResponse("start_failed", "Failed to start monitoring"))
			return
		}

		// Сессия поднята, но часть сайтов не запланировалась
		h.logger.Warn("monitoring started with errors", "error", err, "user_id", req.UserID)
		c.JSON(http.StatusOK, SuccessResponse("monitoring_started_partially", gin.H{
			"user_id":     req.UserID,
			"active_jobs": h.monitorService.ActiveJobs(req.UserID),
			"warning":     err.Error(),
		}))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("monitoring_started", gin.H{
		"user_id":     req.UserID,
		"active_jobs": h.monitorService.ActiveJobs(req.UserID),
	}))
}

// StopMonitoring останавливает мониторинг пользователя;
// вызывается слоем аутентификации при логауте
func (h *Handlers) StopMonitoring(c *gin.Context) {
	userID := c.Param("user_id")

	h.monitorService.StopMonitoring(userID)

	c.JSON(http.StatusOK, SuccessResponse("monitoring_stopped", gin.H{
		"user_id": userID,
	}))
}

// RestartMonitoring пересоздает сессию пользователя
func (h *Handlers) RestartMonitoring(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.monitorService.Restart(c.Request.Context(), userID); err != nil {
		if !h.monitorService.IsMonitoring(userID) {
			h.logger.Error("failed to restart monitoring", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, ErrorResponse("restart_failed", "Failed to restart monitoring"))
			return
		}

		h.logger.Warn("monitoring restarted with errors", "error", err, "user_id", userID)
		c.JSON(http.StatusOK, SuccessResponse("monitoring_restarted_partially", gin.H{
			"user_id":     userID,
			"active_jobs": h.monitorService.ActiveJobs(userID),
			"warning":     err.Error(),
		}))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("monitoring_restarted", gin.H{
		"user_id":     userID,
		"active_jobs": h.monitorService.ActiveJobs(userID),
	}))
}

// ListSessions возвращает активные сессии мониторинга
func (h *Handlers) ListSessions(c *gin.Context) {
	users := h.monitorService.ActiveUsers()

	sessions := make([]gin.H, 0, len(users))
	for _, userID := range users {
		sessions = append(sessions, gin.H{
			"user_id":     userID,
			"active_jobs": h.monitorService.ActiveJobs(userID),
		})
	}

	c.JSON(http.StatusOK, SuccessResponse("sessions_list", gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	}))
}
