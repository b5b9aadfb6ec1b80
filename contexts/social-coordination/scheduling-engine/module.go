package schedulingengine

import (
	"log/slog"

	httpadapter "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/adapters/http"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/adapters/memory"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/commands"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/queries"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Events     ports.EventRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Members    ports.MembershipChecker
	Outbox     ports.OutboxWriter
	Tx         ports.TxRunner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Policy     entities.FinalizePolicy
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	candidateUseCase := commands.CandidateUseCase{
		Events:     deps.Events,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Members:    deps.Members,
		Tx:         deps.Tx,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Events:     deps.Events,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Members:    deps.Members,
		Tx:         deps.Tx,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	scheduleUseCase := commands.ScheduleUseCase{
		Events:     deps.Events,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Outbox:     deps.Outbox,
		Tx:         deps.Tx,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Policy:     deps.Policy,
		Logger:     deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Events:     deps.Events,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Candidates: candidateUseCase,
			Votes:      voteUseCase,
			Schedule:   scheduleUseCase,
			Tally:      tallyUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Event, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Events:     store,
		Candidates: store,
		Votes:      store,
		Members:    store,
		Outbox:     store,
		Tx:         store,
		Clock:      store,
		IDGen:      store,
		Policy:     entities.DefaultFinalizePolicy(),
		Logger:     logger,
	})
	module.Store = store
	return module
}
