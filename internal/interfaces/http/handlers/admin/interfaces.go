package admin

import (
	"context"

	"github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/application/webhook/dto"
	webhookUsecases "github.com/orris-inc/satsgate/internal/application/webhook/usecases"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
)

type keyManager interface {
	Register(ctx context.Context, cmd usecases.RegisterKeyCommand) (*usecases.KeyView, error)
	List(ctx context.Context) ([]*usecases.KeyView, error)
	Activate(ctx context.Context, sid string) (*usecases.KeyView, error)
	Deactivate(ctx context.Context, sid string) (*usecases.KeyView, error)
	Preview(ctx context.Context, sid string, from uint32, count int) ([]addresspool.DerivedAddress, error)
}

type poolSeeder interface {
	Execute(ctx context.Context, addresses []string) (*usecases.SeedResult, error)
}

type poolStatsReader interface {
	Execute(ctx context.Context) (*usecases.PoolStatsResult, error)
}

type subscriptionManager interface {
	Create(ctx context.Context, cmd webhookUsecases.CreateSubscriptionCommand) (*dto.SubscriptionDTO, error)
	List(ctx context.Context) ([]*dto.SubscriptionDTO, error)
	Deactivate(ctx context.Context, sid string) error
}

type escrowReleaser interface {
	Execute(ctx context.Context, escrowSID string) (*escrowUsecases.ReleaseResult, error)
}
