package router

import (
	"github.com/roadwatch/warning-service/internal/application"
	"github.com/roadwatch/warning-service/internal/container"
	pginfra "github.com/roadwatch/warning-service/internal/infrastructure/postgres"
	handlers "github.com/roadwatch/warning-service/internal/interface/http"
	"github.com/roadwatch/warning-service/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it with the router registry. Called once during startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	logger := container.GetLogger()
	metrics := container.GetMetrics()

	userRepo := pginfra.NewUserRepository(pool)
	warningRepo := pginfra.NewWarningRepository(pool)

	// The publisher and weather client are optional; a nil concrete value
	// must not end up inside a non-nil interface.
	var emails application.EmailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		emails = pub
	}
	var weatherFetcher application.WeatherFetcher
	if w := container.GetWeather(); w != nil {
		weatherFetcher = w
	}

	userSvc := application.NewUserService(userRepo, emails, logger, metrics)
	warningSvc := application.NewWarningService(
		warningRepo,
		weatherFetcher,
		container.GetClock(),
		logger,
		metrics,
		container.GetES(),
		container.GetConfig().ESWarningsIndex,
	)

	r.Add(modules.NewRegistrationModule(handlers.NewRegistrationHandler(userSvc, logger)))
	r.Add(modules.NewWarningModule(handlers.NewWarningHandler(warningSvc, logger), userSvc, metrics))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
