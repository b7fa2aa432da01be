package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"predictor/database"
	"predictor/models"
	"predictor/service"

	"github.com/jackc/pgx/v5"
)

const questionColumns = `
	id, text, created_by, platform, created_at, end_time,
	channel_id, message_id, yes_voters, no_voters,
	resolved, outcome, resolved_by, resolved_at`

// QuestionRepository implements the QuestionRepository interface
type QuestionRepository struct {
	q queryable
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{q: db.Pool}
}

// newQuestionRepositoryWithTx creates a new question repository with a transaction
func newQuestionRepositoryWithTx(tx queryable) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (id, text, created_by, platform, created_at, end_time, yes_voters, no_voters)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	yes, no := question.YesVoters, question.NoVoters
	if yes == nil {
		yes = []string{}
	}
	if no == nil {
		no = []string{}
	}

	_, err := r.q.Exec(ctx, query,
		question.ID,
		question.Text,
		question.CreatedBy,
		question.Platform,
		question.CreatedAt,
		question.EndTime,
		yes,
		no,
	)
	if err != nil {
		return service.StoreError("insert question", err)
	}
	return nil
}

// AttachMessageRef records where the announcement was posted
func (r *QuestionRepository) AttachMessageRef(ctx context.Context, id, channelID, messageID string) error {
	query := `
		UPDATE questions
		SET channel_id = $2, message_id = $3
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, channelID, messageID)
	if err != nil {
		return service.StoreError("attach message ref", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %s: %w", id, service.ErrNotFound)
	}
	return nil
}

// DeleteUnannounced removes a question that never got an announcement message.
// Announced or resolved questions are left alone and reported as ErrNotFound.
func (r *QuestionRepository) DeleteUnannounced(ctx context.Context, id string) error {
	query := `
		DELETE FROM questions
		WHERE id = $1 AND message_id IS NULL AND NOT resolved
	`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return service.StoreError("delete unannounced question", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unannounced question %s: %w", id, service.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a question by its id
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	question, err := scanQuestion(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("question %s: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return nil, service.StoreError("get question", err)
	}
	return question, nil
}

// CastVote adds userID to the chosen set and removes it from the other set in a
// single statement guarded by the resolved flag and the deadline
func (r *QuestionRepository) CastVote(ctx context.Context, id, userID string, choice models.VoteChoice) (*models.Question, error) {
	chosen, other := "yes_voters", "no_voters"
	switch choice {
	case models.VoteYes:
	case models.VoteNo:
		chosen, other = other, chosen
	default:
		return nil, fmt.Errorf("%w: invalid vote choice %q", service.ErrValidation, choice)
	}

	query := fmt.Sprintf(`
		UPDATE questions
		SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2::text) END,
		    %[2]s = array_remove(%[2]s, $2::text)
		WHERE id = $1 AND NOT resolved AND end_time > NOW()
		RETURNING `+questionColumns, chosen, other)

	question, err := scanQuestion(r.q.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyRejectedVote(ctx, id)
	}
	if err != nil {
		return nil, service.StoreError("cast vote", err)
	}
	return question, nil
}

// classifyRejectedVote explains why the guarded vote update matched no row
func (r *QuestionRepository) classifyRejectedVote(ctx context.Context, id string) error {
	question, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if question.Resolved {
		return fmt.Errorf("question %s: %w", id, service.ErrAlreadyResolved)
	}
	return fmt.Errorf("question %s ended %s: %w", id, question.EndTime.Format(time.RFC3339), service.ErrExpired)
}

// CommitResolution sets the outcome with compare-and-set semantics on the resolved flag
func (r *QuestionRepository) CommitResolution(ctx context.Context, id string, outcome bool, resolverID string, resolvedAt time.Time) (*models.Question, error) {
	query := `
		UPDATE questions
		SET resolved = TRUE, outcome = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1 AND NOT resolved
		RETURNING ` + questionColumns

	question, err := scanQuestion(r.q.QueryRow(ctx, query, id, outcome, resolverID, resolvedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("question %s: %w", id, service.ErrAlreadyResolved)
	}
	if err != nil {
		return nil, service.StoreError("commit resolution", err)
	}
	return question, nil
}

// ListActive returns unresolved questions whose deadline has not passed
func (r *QuestionRepository) ListActive(ctx context.Context) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM questions
		WHERE NOT resolved AND end_time > NOW()
		ORDER BY end_time ASC
	`
	return r.list(ctx, "list active questions", query)
}

// ListExpiredUnresolved returns unresolved questions whose deadline has passed
func (r *QuestionRepository) ListExpiredUnresolved(ctx context.Context) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM questions
		WHERE NOT resolved AND end_time <= NOW()
		ORDER BY end_time ASC
	`
	return r.list(ctx, "list expired questions", query)
}

func (r *QuestionRepository) list(ctx context.Context, op, query string, args ...any) ([]*models.Question, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, service.StoreError(op, err)
	}
	defer rows.Close()

	questions := make([]*models.Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, service.StoreError(op, err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, service.StoreError(op, err)
	}
	return questions, nil
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	err := row.Scan(
		&q.ID,
		&q.Text,
		&q.CreatedBy,
		&q.Platform,
		&q.CreatedAt,
		&q.EndTime,
		&q.ChannelID,
		&q.MessageID,
		&q.YesVoters,
		&q.NoVoters,
		&q.Resolved,
		&q.Outcome,
		&q.ResolvedBy,
		&q.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
