package services

import (
	"context"
	"time"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// HealthService answers liveness/readiness probes. Readiness depends on
// the survey dataset being loaded.
type HealthService struct {
	survey  *SurveyService
	started time.Time
}

// NewHealthService creates a health service tied to the survey service.
func NewHealthService(survey *SurveyService) *HealthService {
	return &HealthService{
		survey:  survey,
		started: time.Now(),
	}
}

// HealthCheck reports process liveness.
func (s *HealthService) HealthCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.started).String(),
	}
}

// ReadinessCheck reports whether the service can serve survey views.
func (s *HealthService) ReadinessCheck(ctx context.Context) map[string]interface{} {
	status := "ready"
	if _, err := s.survey.table(); err != nil {
		status = "not_ready"
	}
	return map[string]interface{}{
		"status": status,
	}
}

// Version reports the build version.
func (s *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version": Version,
	}
}
