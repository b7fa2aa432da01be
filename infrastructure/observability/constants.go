package observability

// Metric name prefixes
const (
	MetricPrefix = "predictor"
)

// Metric names
const (
	// Question metrics
	QuestionsCreatedTotal  = MetricPrefix + ".questions.created_total"
	QuestionsResolvedTotal = MetricPrefix + ".questions.resolved_total"
	VotesCastTotal         = MetricPrefix + ".votes.cast_total"

	// Scoring metrics
	PredictionsScoredTotal = MetricPrefix + ".predictions.scored_total"
	XPAwardedTotal         = MetricPrefix + ".xp.awarded_total"
	UsersCreatedTotal      = MetricPrefix + ".users.created_total"

	// Background work
	LeaderboardRefreshesTotal = MetricPrefix + ".leaderboard.refreshes_total"
	ExpirySweptTotal          = MetricPrefix + ".expiry.swept_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelChoice    = "choice"
	LabelOutcome   = "outcome"
	LabelCorrect   = "correct"
	LabelResult    = "result"
	LabelEventType = "event_type"
)

// Sweep results
const (
	SweepResultResolveControls = "resolve_controls"
	SweepResultVotingOnly      = "voting_only"
	SweepResultFailed          = "failed"
)
