package handlers

import (
	"log/slog"

	"SiteWatch/internal/backend/dependencies"
	"SiteWatch/internal/backend/services"
)

type Handlers struct {
	websiteService *services.WebsiteService
	reportService  *services.ReportService
	monitorService *services.MonitorService
	logger         *slog.Logger
}

func NewHandlers(container *dependencies.Container) *Handlers {
	return &Handlers{
		websiteService: container.WebsiteService,
		reportService:  container.ReportService,
		monitorService: container.MonitorService,
		logger:         slog.Default(),
	}
}
