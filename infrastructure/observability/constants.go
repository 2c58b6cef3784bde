package observability

// Metric name prefixes
const (
	MetricPrefix = "mangaverse_settlement"
)

// Metric names
const (
	// Settlement metrics
	GamesCompletedTotal        = MetricPrefix + ".games.completed_total"
	RewardDistributionsTotal   = MetricPrefix + ".rewards.distributions_total"
	RewardRecipientsTotal      = MetricPrefix + ".rewards.recipients_total"
	ReferralGrantsTotal        = MetricPrefix + ".referrals.grants_total"
	AirdropClaimsTotal         = MetricPrefix + ".airdrops.claims_total"
	BalanceTransactionsTotal   = MetricPrefix + ".balance.transactions_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"

	// Database metrics
	DatabaseTransactionsTotal   = MetricPrefix + ".database.transactions_total"
	DatabaseTransactionDuration = MetricPrefix + ".database.transaction_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelStatus    = "status"
	LabelRoute     = "route"
	LabelMethod    = "method"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)
