package router

import (
	"github.com/inkwell-labs/inkwell/internal/application"
	"github.com/inkwell-labs/inkwell/internal/container"
	pginfra "github.com/inkwell-labs/inkwell/internal/infrastructure/postgres"
	handlers "github.com/inkwell-labs/inkwell/internal/interface/http"
	"github.com/inkwell-labs/inkwell/internal/router/modules"
)

func buildAuthModule() *modules.AuthModule {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	// The publisher may be nil when the broker is down at startup; the
	// service treats that as dispatch-disabled rather than fatal.
	var enqueue application.EmailEnqueuer
	if pub := container.GetRabbitPub(); pub != nil {
		enqueue = pub
	}

	svc := application.NewAuthService(
		repo,
		container.GetLinkCodec(),
		container.GetSessionCodec(),
		enqueue,
		container.GetLogger(),
		container.GetConfig(),
	)
	return modules.NewAuthModule(handlers.NewAuthHandler(svc, container.GetLogger()))
}

func buildContentModule() *modules.ContentModule {
	repo := pginfra.NewContentRepository(container.GetPGPool())
	svc := application.NewContentService(
		repo,
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESContentIndex,
	)
	return modules.NewContentModule(handlers.NewContentHandler(svc, container.GetLogger()), container.GetSessionCodec())
}

// InitModules initializes all application modules and registers them
// with the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(buildContentModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
