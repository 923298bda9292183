package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/application/webhook/dto"
	webhookUsecases "github.com/orris-inc/satsgate/internal/application/webhook/usecases"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/satsgate/internal/shared/errors"
)

// =====================================================================
// Mocks
// =====================================================================

type mockKeyManager struct {
	view        *usecases.KeyView
	views       []*usecases.KeyView
	derived     []addresspool.DerivedAddress
	err         error
	registerCmd usecases.RegisterKeyCommand
	previewFrom uint32
	previewN    int
}

func (m *mockKeyManager) Register(ctx context.Context, cmd usecases.RegisterKeyCommand) (*usecases.KeyView, error) {
	m.registerCmd = cmd
	return m.view, m.err
}

func (m *mockKeyManager) List(ctx context.Context) ([]*usecases.KeyView, error) {
	return m.views, m.err
}

func (m *mockKeyManager) Activate(ctx context.Context, sid string) (*usecases.KeyView, error) {
	return m.view, m.err
}

func (m *mockKeyManager) Deactivate(ctx context.Context, sid string) (*usecases.KeyView, error) {
	return m.view, m.err
}

func (m *mockKeyManager) Preview(ctx context.Context, sid string, from uint32, count int) ([]addresspool.DerivedAddress, error) {
	m.previewFrom = from
	m.previewN = count
	return m.derived, m.err
}

type mockSeeder struct {
	result    *usecases.SeedResult
	err       error
	addresses []string
}

func (m *mockSeeder) Execute(ctx context.Context, addresses []string) (*usecases.SeedResult, error) {
	m.addresses = addresses
	return m.result, m.err
}

type mockStats struct {
	result *usecases.PoolStatsResult
	err    error
}

func (m *mockStats) Execute(ctx context.Context) (*usecases.PoolStatsResult, error) {
	return m.result, m.err
}

type mockSubscriptions struct {
	created     *dto.SubscriptionDTO
	err         error
	cmd         webhookUsecases.CreateSubscriptionCommand
	deactivated string
}

func (m *mockSubscriptions) Create(ctx context.Context, cmd webhookUsecases.CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	m.cmd = cmd
	return m.created, m.err
}

func (m *mockSubscriptions) List(ctx context.Context) ([]*dto.SubscriptionDTO, error) {
	return []*dto.SubscriptionDTO{m.created}, m.err
}

func (m *mockSubscriptions) Deactivate(ctx context.Context, sid string) error {
	m.deactivated = sid
	return m.err
}

type mockReleaser struct {
	result *escrowUsecases.ReleaseResult
	err    error
	sid    string
}

func (m *mockReleaser) Execute(ctx context.Context, escrowSID string) (*escrowUsecases.ReleaseResult, error) {
	m.sid = escrowSID
	return m.result, m.err
}

// =====================================================================
// KeyHandler
// =====================================================================

func TestKeyHandler_Register_DefaultsToMainnet(t *testing.T) {
	keys := &mockKeyManager{view: &usecases.KeyView{ID: "xk_1", Network: "mainnet", Active: true}}
	handler := NewKeyHandler(keys, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/extended-keys", RegisterKeyRequest{
		Key:      "zpub6r...",
		Activate: true,
	})
	handler.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, vo.NetworkMainnet, keys.registerCmd.Network)
	assert.True(t, keys.registerCmd.Activate)
}

func TestKeyHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing key", map[string]string{"network": "mainnet"}},
		{"unknown network", map[string]string{"key": "zpub", "network": "regtest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewKeyHandler(&mockKeyManager{}, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/admin/extended-keys", tt.body)
			handler.Register(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestKeyHandler_Register_InvalidKeyMaterial(t *testing.T) {
	keys := &mockKeyManager{err: errors.NewValidationError("invalid extended public key")}
	handler := NewKeyHandler(keys, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/extended-keys", RegisterKeyRequest{Key: "garbage"})
	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKeyHandler_Activate_NotFound(t *testing.T) {
	keys := &mockKeyManager{err: errors.NewNotFoundError("extended key not found")}
	handler := NewKeyHandler(keys, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/extended-keys/xk_missing/activate", nil)
	testutil.SetURLParam(c, "id", "xk_missing")
	handler.Activate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKeyHandler_Preview(t *testing.T) {
	keys := &mockKeyManager{derived: []addresspool.DerivedAddress{
		{Address: "bc1qa", Index: 3, Path: "m/84'/0'/0'/0/3"},
		{Address: "bc1qb", Index: 4, Path: "m/84'/0'/0'/0/4"},
	}}
	handler := NewKeyHandler(keys, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/extended-keys/xk_1/addresses", nil)
	testutil.SetURLParam(c, "id", "xk_1")
	testutil.SetQueryParams(c, map[string]string{"from": "3", "count": "2"})
	handler.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, keys.previewFrom)
	assert.Equal(t, 2, keys.previewN)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out []derivedAddressResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "m/84'/0'/0'/0/4", out[1].Path)
}

func TestKeyHandler_Preview_DefaultCount(t *testing.T) {
	keys := &mockKeyManager{}
	handler := NewKeyHandler(keys, testutil.NewMockLogger())

	c, _ := testutil.NewTestContext(http.MethodGet, "/admin/extended-keys/xk_1/addresses", nil)
	testutil.SetURLParam(c, "id", "xk_1")
	handler.Preview(c)

	assert.Equal(t, defaultPreviewCount, keys.previewN)
}

func TestKeyHandler_Preview_BadQuery(t *testing.T) {
	handler := NewKeyHandler(&mockKeyManager{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/extended-keys/xk_1/addresses", nil)
	testutil.SetQueryParams(c, map[string]string{"from": "-1"})
	handler.Preview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// PoolHandler
// =====================================================================

func TestPoolHandler_Seed(t *testing.T) {
	seeder := &mockSeeder{result: &usecases.SeedResult{Inserted: 2, Duplicate: 1}}
	handler := NewPoolHandler(seeder, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/address-pool/seed", SeedPoolRequest{
		Addresses: []string{"bc1qa", "bc1qb", "bc1qa"},
	})
	handler.Seed(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, seeder.addresses, 3)
}

func TestPoolHandler_Seed_Empty(t *testing.T) {
	seeder := &mockSeeder{}
	handler := NewPoolHandler(seeder, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/address-pool/seed", SeedPoolRequest{Addresses: []string{}})
	handler.Seed(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, seeder.addresses)
}

func TestPoolHandler_Stats(t *testing.T) {
	stats := &mockStats{result: &usecases.PoolStatsResult{
		ActiveKey: &usecases.KeyView{ID: "xk_1", Active: true},
	}}
	handler := NewPoolHandler(nil, stats, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/address-pool/stats", nil)
	handler.Stats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), `"activeKey"`)
}

// =====================================================================
// SubscriptionHandler
// =====================================================================

func TestSubscriptionHandler_Create(t *testing.T) {
	subs := &mockSubscriptions{created: &dto.SubscriptionDTO{ID: "whs_1", URL: "https://merchant.example/hook"}}
	handler := NewSubscriptionHandler(subs, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/webhook-subscriptions", CreateSubscriptionRequest{
		URL:        "https://merchant.example/hook",
		EventTypes: []string{"payment.confirmed"},
		MaxRetries: 5,
	})
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 5, subs.cmd.MaxRetries)
	assert.Equal(t, []string{"payment.confirmed"}, subs.cmd.EventTypes)
}

func TestSubscriptionHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body CreateSubscriptionRequest
	}{
		{"bad url", CreateSubscriptionRequest{URL: "not a url", EventTypes: []string{"payment.confirmed"}}},
		{"no events", CreateSubscriptionRequest{URL: "https://merchant.example/hook"}},
		{"short secret", CreateSubscriptionRequest{URL: "https://merchant.example/hook", EventTypes: []string{"x"}, Secret: "short"}},
		{"too many retries", CreateSubscriptionRequest{URL: "https://merchant.example/hook", EventTypes: []string{"x"}, MaxRetries: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSubscriptionHandler(&mockSubscriptions{}, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/admin/webhook-subscriptions", tt.body)
			handler.Create(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubscriptionHandler_Delete(t *testing.T) {
	subs := &mockSubscriptions{}
	handler := NewSubscriptionHandler(subs, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/admin/webhook-subscriptions/whs_1", nil)
	testutil.SetURLParam(c, "id", "whs_1")
	handler.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "whs_1", subs.deactivated)
}

// =====================================================================
// EscrowHandler
// =====================================================================

func TestEscrowHandler_Release(t *testing.T) {
	releaser := &mockReleaser{result: &escrowUsecases.ReleaseResult{EscrowID: "esc_1", Status: "released"}}
	handler := NewEscrowHandler(releaser, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/escrows/esc_1/release", nil)
	testutil.SetURLParam(c, "id", "esc_1")
	handler.Release(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "esc_1", releaser.sid)
}

func TestEscrowHandler_Release_NotHeld(t *testing.T) {
	releaser := &mockReleaser{err: errors.NewInvalidStateTransitionError("escrow can only be released while held")}
	handler := NewEscrowHandler(releaser, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/escrows/esc_1/release", nil)
	testutil.SetURLParam(c, "id", "esc_1")
	handler.Release(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
