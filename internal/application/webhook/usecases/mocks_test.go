package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	appwebhook "github.com/orris-inc/satsgate/internal/application/webhook"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockSubRepo struct {
	mock.Mock
}

func (m *mockSubRepo) subOrErr(args mock.Arguments) (*webhook.Subscription, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Subscription), args.Error(1)
}

func (m *mockSubRepo) Create(ctx context.Context, s *webhook.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSubRepo) GetByID(ctx context.Context, id uint) (*webhook.Subscription, error) {
	return m.subOrErr(m.Called(ctx, id))
}

func (m *mockSubRepo) GetBySID(ctx context.Context, sid string) (*webhook.Subscription, error) {
	return m.subOrErr(m.Called(ctx, sid))
}

func (m *mockSubRepo) List(ctx context.Context) ([]*webhook.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*webhook.Subscription), args.Error(1)
}

func (m *mockSubRepo) ListActive(ctx context.Context) ([]*webhook.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*webhook.Subscription), args.Error(1)
}

func (m *mockSubRepo) Deactivate(ctx context.Context, id uint, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockSubRepo) RecordSuccess(ctx context.Context, id uint, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockSubRepo) RecordFailure(ctx context.Context, id uint, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

type mockDeliveryRepo struct {
	mock.Mock
}

func (m *mockDeliveryRepo) CreateBatch(ctx context.Context, deliveries []*webhook.Delivery) (int, error) {
	args := m.Called(ctx, deliveries)
	return args.Int(0), args.Error(1)
}

func (m *mockDeliveryRepo) GetByDeliveryID(ctx context.Context, deliveryID string) (*webhook.Delivery, error) {
	args := m.Called(ctx, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*webhook.Delivery, error) {
	args := m.Called(ctx, now, leaseUntil, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhook.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) SaveAttempt(ctx context.Context, d *webhook.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeliveryRepo) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDeliveryRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, req appwebhook.SendRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

type mockAttempter struct {
	mock.Mock
}

func (m *mockAttempter) Execute(ctx context.Context, d *webhook.Delivery) error {
	return m.Called(ctx, d).Error(0)
}
