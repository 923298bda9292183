package http

import (
	"context"
	"net/http"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/application/health"
	outboxHandlers "github.com/orris-inc/satsgate/internal/application/outbox/handlers"
	outboxUsecases "github.com/orris-inc/satsgate/internal/application/outbox/usecases"
	"github.com/orris-inc/satsgate/internal/application/payment/exchangerate"
	paymentUsecases "github.com/orris-inc/satsgate/internal/application/payment/usecases"
	webhookUsecases "github.com/orris-inc/satsgate/internal/application/webhook/usecases"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/infrastructure/bitcoin"
	"github.com/orris-inc/satsgate/internal/infrastructure/blockchain"
	"github.com/orris-inc/satsgate/internal/infrastructure/cache"
	"github.com/orris-inc/satsgate/internal/infrastructure/email"
	infraRate "github.com/orris-inc/satsgate/internal/infrastructure/exchangerate"
	infraWebhook "github.com/orris-inc/satsgate/internal/infrastructure/webhook"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Address pool
	assignAddressUC *poolUsecases.AssignAddressUseCase
	replenishUC     *poolUsecases.ReplenishPoolUseCase
	seedUC          *poolUsecases.SeedAddressesUseCase
	poolStatsUC     *poolUsecases.GetPoolStatsUseCase
	manageKeysUC    *poolUsecases.ManageKeysUseCase

	// Payments
	createPaymentUC *paymentUsecases.CreatePaymentUseCase
	processEventUC  *paymentUsecases.ProcessChainEventUseCase
	ingestUC        *paymentUsecases.IngestNotificationUseCase
	replayUC        *paymentUsecases.ReplayEventsUseCase
	expireUC        *paymentUsecases.ExpirePaymentsUseCase
	reconcileUC     *paymentUsecases.ReconcileConfirmedUseCase

	// Webhooks
	manageSubsUC *webhookUsecases.ManageSubscriptionsUseCase
	enqueueUC    *webhookUsecases.EnqueueEventUseCase
	deliverUC    *webhookUsecases.DeliverWebhookUseCase
	sweepUC      *webhookUsecases.RetrySweepUseCase

	// Escrow
	holdFundsUC *escrowUsecases.HoldFundsUseCase
	refundUC    *escrowUsecases.ProcessRefundUseCase
	releaseUC   *escrowUsecases.ReleaseEscrowUseCase

	// Outbox
	outboxUC *outboxUsecases.ProcessOutboxUseCase

	healthReporter *health.Reporter
}

func (c *Container) initUseCases() {
	cfg := c.cfg
	r := c.repos
	txMgr := db.NewTransactionManager(c.db)
	network := vo.Network(cfg.Bitcoin.Network)
	deriver := bitcoin.NewDeriver()
	ucs := &allUseCases{}

	// Address pool
	ucs.assignAddressUC = poolUsecases.NewAssignAddressUseCase(r.keyRepo, r.poolRepo, deriver, txMgr, c.clock,
		poolUsecases.AllocatorConfig{
			ReservationTTL: cfg.Pool.ReservationTTL,
			MaxRetries:     cfg.Pool.MaxAssignRetries,
			RetryBaseDelay: cfg.Pool.RetryBaseDelay,
			RetryJitter:    cfg.Pool.RetryJitter,
		}, c.log.Named("allocator"))
	ucs.assignAddressUC.SetMetrics(c.metrics)

	c.mailer = email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, c.log.Named("email"))

	alerter := email.NewPoolAlerter(c.mailer, cache.NewAlertDeduplicator(c.redis), cfg.Alerts.Email, cfg.Alerts.DedupWindow, c.log.Named("alerts"))

	ucs.replenishUC = poolUsecases.NewReplenishPoolUseCase(r.keyRepo, r.poolRepo, deriver, alerter, c.clock,
		poolUsecases.ReplenishConfig{
			TargetSize:        cfg.Pool.TargetSize,
			BatchSize:         cfg.Pool.BatchSize,
			CriticalThreshold: cfg.Pool.CriticalThreshold,
		}, c.log.Named("replenish"))
	ucs.replenishUC.SetObserver(c.metrics)
	replenishStatus := cache.NewReplenishStatusStore(c.redis)
	ucs.replenishUC.SetRecorder(replenishStatus)
	ucs.seedUC = poolUsecases.NewSeedAddressesUseCase(r.poolRepo, deriver, network, c.clock, c.log)
	ucs.poolStatsUC = poolUsecases.NewGetPoolStatsUseCase(r.keyRepo, r.poolRepo, c.clock)
	ucs.manageKeysUC = poolUsecases.NewManageKeysUseCase(r.keyRepo, deriver, c.clock, c.log)

	// Payments
	var prices exchangerate.PriceProvider
	if cfg.Pricing.CoinGeckoURL != "" || cfg.Pricing.CoinbaseURL != "" {
		httpClient := &http.Client{Timeout: cfg.Blockchain.APITimeout}
		var sources []infraRate.Source
		if cfg.Pricing.CoinGeckoURL != "" {
			sources = append(sources, infraRate.NewCoinGeckoSource(cfg.Pricing.CoinGeckoURL, httpClient))
		}
		if cfg.Pricing.CoinbaseURL != "" {
			sources = append(sources, infraRate.NewCoinbaseSource(cfg.Pricing.CoinbaseURL, httpClient))
		}
		prices = infraRate.NewPriceCache(sources, c.clock, cfg.Pricing.CacheTTL, cfg.Pricing.MaxStaleAge, c.log.Named("prices"))
	}
	ucs.createPaymentUC = paymentUsecases.NewCreatePaymentUseCase(r.paymentRepo, r.orderRepo, ucs.assignAddressUC,
		prices, txMgr, c.clock, paymentUsecases.CreatePaymentConfig{
			PaymentTTL:      cfg.Bitcoin.PaymentTTL,
			DefaultCurrency: cfg.Pricing.DefaultCurrency,
		}, c.log)

	ucs.processEventUC = paymentUsecases.NewProcessChainEventUseCase(r.paymentRepo, r.eventRepo, r.poolRepo,
		r.outboxRepo, txMgr, c.clock, paymentUsecases.ConfirmationConfig{
			Threshold:         cfg.Bitcoin.ConfirmationThreshold,
			OutboxMaxAttempts: cfg.Outbox.MaxAttempts,
		}, c.log.Named("confirmations"))
	ucs.processEventUC.SetMetrics(c.metrics)
	ucs.ingestUC = paymentUsecases.NewIngestNotificationUseCase(r.eventRepo, ucs.processEventUC,
		cfg.Blockchain.WebhookSecret, c.clock, c.log.Named("ingest"))
	ucs.ingestUC.SetMetrics(c.metrics)
	ucs.replayUC = paymentUsecases.NewReplayEventsUseCase(r.eventRepo, ucs.processEventUC, c.clock, c.log)
	ucs.expireUC = paymentUsecases.NewExpirePaymentsUseCase(r.paymentRepo, r.poolRepo, r.outboxRepo, txMgr,
		c.clock, cfg.Outbox.MaxAttempts, c.log.Named("expiry"))
	ucs.reconcileUC = paymentUsecases.NewReconcileConfirmedUseCase(r.paymentRepo, r.outboxRepo, c.clock,
		cfg.Outbox.MaxAttempts, c.log.Named("reconcile"))

	// Webhooks
	ucs.manageSubsUC = webhookUsecases.NewManageSubscriptionsUseCase(r.subRepo, cfg.Webhook.DefaultMaxRetries, c.clock, c.log)
	ucs.enqueueUC = webhookUsecases.NewEnqueueEventUseCase(r.subRepo, r.deliveryRepo, c.clock, c.log)
	sender := infraWebhook.NewHTTPSender(&http.Client{Timeout: cfg.Webhook.RequestTimeout})
	ucs.deliverUC = webhookUsecases.NewDeliverWebhookUseCase(r.subRepo, r.deliveryRepo, sender, c.clock,
		webhookUsecases.DeliverConfig{
			RetryBaseDelay: cfg.Webhook.RetryBaseDelay,
			RetryMaxDelay:  cfg.Webhook.RetryMaxDelay,
		}, c.log.Named("webhooks"))
	ucs.deliverUC.SetMetrics(c.metrics)
	ucs.sweepUC = webhookUsecases.NewRetrySweepUseCase(r.deliveryRepo, ucs.deliverUC, c.clock,
		webhookUsecases.SweepConfig{
			BatchSize:   cfg.Webhook.SweepBatchSize,
			Concurrency: cfg.Webhook.Concurrency,
			Lease:       2 * cfg.Webhook.RequestTimeout,
		}, c.log.Named("webhooks"))

	// Escrow
	ucs.holdFundsUC = escrowUsecases.NewHoldFundsUseCase(r.escrowRepo, r.orderRepo, r.ledgerRepo, txMgr, c.clock, c.log)
	ucs.refundUC = escrowUsecases.NewProcessRefundUseCase(r.escrowRepo, r.orderRepo, r.ledgerRepo, r.paymentRepo,
		r.outboxRepo, txMgr, c.clock, cfg.Outbox.MaxAttempts, c.log.Named("refunds"))
	ucs.releaseUC = escrowUsecases.NewReleaseEscrowUseCase(r.escrowRepo, r.orderRepo, r.ledgerRepo,
		r.outboxRepo, txMgr, c.clock, cfg.Outbox.MaxAttempts, c.log.Named("escrow"))

	// Outbox
	ucs.outboxUC = outboxUsecases.NewProcessOutboxUseCase(r.outboxRepo, c.clock,
		outboxUsecases.ProcessorConfig{BatchSize: cfg.Outbox.BatchSize}, c.log.Named("outbox"))
	ucs.outboxUC.Register(outbox.EffectWebhookFanout, outboxHandlers.NewWebhookFanout(ucs.enqueueUC))
	ucs.outboxUC.Register(outbox.EffectEmailNotify, outboxHandlers.NewEmailNotify(c.mailer, r.orderRepo, c.log))
	ucs.outboxUC.Register(outbox.EffectEscrowHold, outboxHandlers.NewEscrowHold(ucs.holdFundsUC))

	// Health
	deps := health.Dependencies{
		Database:     health.PingFunc(c.pingDatabase),
		Redis:        health.PingFunc(func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }),
		KeyRepo:      r.keyRepo,
		PoolRepo:     r.poolRepo,
		PaymentRepo:  r.paymentRepo,
		DeliveryRepo: r.deliveryRepo,

		Replenishment: replenishStatus,
	}
	if cfg.Blockchain.APIBaseURL != "" {
		deps.Chain = blockchain.NewEsploraClient(cfg.Blockchain.APIBaseURL,
			&http.Client{Timeout: cfg.Blockchain.APITimeout}, c.log.Named("indexer"))
	}
	ucs.healthReporter = health.NewReporter(deps, health.Config{
		SoftFloor:         cfg.Pool.SoftFloor,
		HardFloor:         cfg.Pool.HardFloor,
		StalePendingAfter: cfg.Health.StalePendingAfter,
		CheckTimeout:      cfg.Health.CheckTimeout,
	}, c.clock, c.log.Named("health"))

	c.ucs = ucs
}
