package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	// Outbound webhook headers
	HeaderWebhookSignature  = "X-Webhook-Signature"
	HeaderWebhookEvent      = "X-Webhook-Event"
	HeaderWebhookDeliveryID = "X-Webhook-Delivery-ID"

	// Inbound blockchain notification signature (hex HMAC-SHA256 of the body)
	HeaderChainSignature = "X-Signature"

	ContentTypeJSON = "application/json"

	ContextKeyRequestID = "request_id"

	// Database table names
	TableExtendedKeys       = "extended_keys"
	TableAddressPool        = "address_pool"
	TablePayments           = "payments"
	TableBlockchainEvents   = "blockchain_events"
	TableWebhookSubs        = "webhook_subscriptions"
	TableWebhookDeliveries  = "webhook_deliveries"
	TableOutboxMessages     = "outbox_messages"
	TableOrders             = "orders"
	TableEscrows            = "escrows"
	TableLedgerTransactions = "ledger_transactions"
)
