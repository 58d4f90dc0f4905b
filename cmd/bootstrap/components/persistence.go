package components

import (
	"library-lending/internal/infra/db"
	"library-lending/internal/infra/readstore"
	"library-lending/internal/infra/uow"
	"library-lending/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// Write-side repositories are created lazily inside the unit of work, so only
// the unit of work and the read stores need container wiring.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		readstore.NewRentalReadStore,
		readstore.NewExtensionReadStore,
		readstore.NewUserReadStore,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
