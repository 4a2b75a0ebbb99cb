package http

import (
	"go.uber.org/zap"

	"quizbox-service/internal/app"
	"quizbox-service/internal/auth"
	"quizbox-service/internal/logging"
	"quizbox-service/internal/metrics"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

// API holds the REST handlers.
type API struct {
	play      *app.PlayService
	authoring *app.AuthoringService
	auth      *auth.Service
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewAPI(play *app.PlayService, authoring *app.AuthoringService, authSvc *auth.Service, m *metrics.Metrics, log *zap.Logger) *API {
	return &API{
		play:      play,
		authoring: authoring,
		auth:      authSvc,
		metrics:   m,
		log:       logging.OrNop(log),
	}
}
