package rsvpservice

import (
	"log/slog"

	httpadapter "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/adapters/http"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/adapters/memory"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/commands"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/queries"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/workers"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.ScheduleConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Rsvps      ports.RsvpRepository
	Windows    ports.WindowRepository
	Subscriber ports.EventSubscriber
	Dedup      ports.EventDedupStore
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	respondUseCase := commands.RespondUseCase{
		Rsvps:   deps.Rsvps,
		Windows: deps.Windows,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	summaryUseCase := queries.SummaryUseCase{
		Rsvps: deps.Rsvps,
	}
	consumer := workers.ScheduleConsumer{
		Windows:    deps.Windows,
		Subscriber: deps.Subscriber,
		Dedup:      deps.Dedup,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Respond: respondUseCase,
			Summary: summaryUseCase,
			Logger:  deps.Logger,
		},
		Consumer: consumer,
	}
}

func NewInMemoryModule(subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Rsvps:      store,
		Windows:    store,
		Subscriber: subscriber,
		Dedup:      store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
