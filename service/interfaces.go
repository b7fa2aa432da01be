package service

import (
	"context"
	"time"

	"predictor/events"
	"predictor/models"
)

// QuestionRepository defines the interface for question data access
type QuestionRepository interface {
	// Create inserts a new question with empty vote sets
	Create(ctx context.Context, question *models.Question) error

	// AttachMessageRef records where the announcement was posted
	AttachMessageRef(ctx context.Context, id, channelID, messageID string) error

	// DeleteUnannounced removes a question whose announcement was never posted
	DeleteUnannounced(ctx context.Context, id string) error

	// GetByID retrieves a question, returning ErrNotFound when missing
	GetByID(ctx context.Context, id string) (*models.Question, error)

	// CastVote moves userID into the chosen voter set in one conditional write.
	// Fails with ErrNotFound, ErrAlreadyResolved or ErrExpired without mutating.
	CastVote(ctx context.Context, id, userID string, choice models.VoteChoice) (*models.Question, error)

	// CommitResolution sets the outcome only while the question is unresolved.
	// Returns ErrAlreadyResolved if another resolution won.
	CommitResolution(ctx context.Context, id string, outcome bool, resolverID string, resolvedAt time.Time) (*models.Question, error)

	// ListActive returns unresolved questions whose deadline has not passed
	ListActive(ctx context.Context) ([]*models.Question, error)

	// ListExpiredUnresolved returns unresolved questions whose deadline has passed
	ListExpiredUnresolved(ctx context.Context) ([]*models.Question, error)
}

// UserRepository defines the interface for user data access.
// Implementations are scoped to one platform.
type UserRepository interface {
	// GetByExternalID returns nil, nil when no identity matches
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// Create registers a user and its identity. Returns nil, nil if the identity
	// was registered concurrently.
	Create(ctx context.Context, userID, externalID, displayName string) (*models.User, error)

	// UpdateDisplayName changes the stored display name of an identity
	UpdateDisplayName(ctx context.Context, externalID, displayName string) error

	// AwardCorrect adds xp and one correct prediction in a single increment
	AwardCorrect(ctx context.Context, externalID string, xp int64) (*models.User, error)

	// RecordIncorrect adds one prediction to the total in a single increment
	RecordIncorrect(ctx context.Context, externalID string) (*models.User, error)

	// TopByXP returns up to limit users ordered by xp, then registration time, then id
	TopByXP(ctx context.Context, limit int) ([]*models.User, error)
}

// QuestionService defines question lifecycle operations
type QuestionService interface {
	// Create validates the deadline window and stores a new question
	Create(ctx context.Context, text, creatorID string, endTime time.Time) (*models.Question, error)

	// AttachMessageRef records the announcement location once it has been posted
	AttachMessageRef(ctx context.Context, id, channelID, messageID string) error

	// Discard drops a question whose announcement could not be posted
	Discard(ctx context.Context, id string) error

	// Get retrieves a question by id
	Get(ctx context.Context, id string) (*models.Question, error)

	// CastVote records a toggle-exclusive vote
	CastVote(ctx context.Context, id, userID string, choice models.VoteChoice) (*models.Question, error)

	// ListActive returns questions still open for votes
	ListActive(ctx context.Context) ([]*models.Question, error)

	// ListExpiredUnresolved returns questions waiting for their creator
	ListExpiredUnresolved(ctx context.Context) ([]*models.Question, error)
}

// ResolutionService commits a creator's outcome on a question
type ResolutionService interface {
	// Resolve checks existence, authorship and resolution state in that order,
	// then commits the outcome with compare-and-set semantics
	Resolve(ctx context.Context, id, resolverID string, outcome bool) (*models.Question, error)
}

// UserService defines player registration and scoring operations
type UserService interface {
	// FindOrCreate registers a player on first sight and keeps the display name current
	FindOrCreate(ctx context.Context, externalID, displayName string) (*models.User, error)

	// AwardCorrect credits a correct prediction
	AwardCorrect(ctx context.Context, externalID string, xp int64) (*models.User, error)

	// RecordIncorrect counts an incorrect prediction
	RecordIncorrect(ctx context.Context, externalID string) (*models.User, error)

	// TopByXP returns the leaderboard ordering
	TopByXP(ctx context.Context, limit int) ([]*models.User, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events
	Rollback() error

	// Repository getters
	QuestionRepository() QuestionRepository
	UserRepository() UserRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork scoped to the default platform
	Create() UnitOfWork
}
