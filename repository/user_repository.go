package repository

import (
	"context"
	"errors"
	"fmt"

	"predictor/database"
	"predictor/models"
	"predictor/service"

	"github.com/jackc/pgx/v5"
)

const userColumns = `u.id, u.xp, u.total_predictions, u.correct_predictions, u.created_at, u.updated_at`

// UserRepository implements the UserRepository interface for one platform
type UserRepository struct {
	q        queryable
	platform string
}

// NewUserRepository creates a new user repository for Discord identities
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool, platform: models.PlatformDiscord}
}

// newUserRepositoryScoped creates a new user repository with a transaction and platform scope
func newUserRepositoryScoped(tx queryable, platform string) *UserRepository {
	return &UserRepository{q: tx, platform: platform}
}

// GetByExternalID retrieves a user and all of its identities
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN user_identities i ON i.user_id = u.id
		WHERE i.platform = $1 AND i.external_id = $2
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, r.platform, externalID).Scan(
		&user.ID,
		&user.XP,
		&user.TotalPredictions,
		&user.CorrectPredictions,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, service.StoreError("get user by external id", err)
	}

	identities, err := r.loadIdentities(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Identities = identities

	return &user, nil
}

func (r *UserRepository) loadIdentities(ctx context.Context, userID string) ([]models.PlatformIdentity, error) {
	query := `
		SELECT platform, external_id, display_name
		FROM user_identities
		WHERE user_id = $1
		ORDER BY platform
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, service.StoreError("load identities", err)
	}
	defer rows.Close()

	var identities []models.PlatformIdentity
	for rows.Next() {
		var identity models.PlatformIdentity
		if err := rows.Scan(&identity.Platform, &identity.ExternalID, &identity.DisplayName); err != nil {
			return nil, service.StoreError("scan identity", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, service.StoreError("load identities", err)
	}
	return identities, nil
}

// Create registers the identity and its user in one statement. When the identity
// already exists nothing is written and nil, nil is returned.
func (r *UserRepository) Create(ctx context.Context, userID, externalID, displayName string) (*models.User, error) {
	query := `
		WITH identity AS (
			INSERT INTO user_identities (platform, external_id, user_id, display_name)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (platform, external_id) DO NOTHING
			RETURNING user_id
		)
		INSERT INTO users AS u (id)
		SELECT user_id FROM identity
		RETURNING ` + userColumns

	var user models.User
	err := r.q.QueryRow(ctx, query, r.platform, externalID, userID, displayName).Scan(
		&user.ID,
		&user.XP,
		&user.TotalPredictions,
		&user.CorrectPredictions,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, service.StoreError("create user", err)
	}

	user.Identities = []models.PlatformIdentity{{
		Platform:    r.platform,
		ExternalID:  externalID,
		DisplayName: displayName,
	}}
	return &user, nil
}

// UpdateDisplayName changes the stored display name of an identity
func (r *UserRepository) UpdateDisplayName(ctx context.Context, externalID, displayName string) error {
	query := `
		UPDATE user_identities
		SET display_name = $3, updated_at = NOW()
		WHERE platform = $1 AND external_id = $2
	`

	tag, err := r.q.Exec(ctx, query, r.platform, externalID, displayName)
	if err != nil {
		return service.StoreError("update display name", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", externalID, service.ErrNotFound)
	}
	return nil
}

// AwardCorrect increments xp and both prediction counters in a single statement
func (r *UserRepository) AwardCorrect(ctx context.Context, externalID string, xp int64) (*models.User, error) {
	query := `
		UPDATE users u
		SET xp = u.xp + $3,
		    correct_predictions = u.correct_predictions + 1,
		    total_predictions = u.total_predictions + 1,
		    updated_at = NOW()
		FROM user_identities i
		WHERE i.user_id = u.id AND i.platform = $1 AND i.external_id = $2
		RETURNING ` + userColumns + `, i.display_name
	`
	return r.updateCounters(ctx, "award correct prediction", query, externalID, xp)
}

// RecordIncorrect increments the total prediction counter in a single statement
func (r *UserRepository) RecordIncorrect(ctx context.Context, externalID string) (*models.User, error) {
	query := `
		UPDATE users u
		SET total_predictions = u.total_predictions + 1,
		    updated_at = NOW()
		FROM user_identities i
		WHERE i.user_id = u.id AND i.platform = $1 AND i.external_id = $2
		RETURNING ` + userColumns + `, i.display_name
	`
	return r.updateCounters(ctx, "record incorrect prediction", query, externalID)
}

func (r *UserRepository) updateCounters(ctx context.Context, op, query, externalID string, extra ...any) (*models.User, error) {
	args := append([]any{r.platform, externalID}, extra...)

	var user models.User
	var displayName string
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.XP,
		&user.TotalPredictions,
		&user.CorrectPredictions,
		&user.CreatedAt,
		&user.UpdatedAt,
		&displayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", externalID, service.ErrNotFound)
	}
	if err != nil {
		return nil, service.StoreError(op, err)
	}

	user.Identities = []models.PlatformIdentity{{
		Platform:    r.platform,
		ExternalID:  externalID,
		DisplayName: displayName,
	}}
	return &user, nil
}

// TopByXP returns up to limit users ordered by xp, registration time and id
func (r *UserRepository) TopByXP(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `, i.external_id, i.display_name
		FROM users u
		JOIN user_identities i ON i.user_id = u.id AND i.platform = $1
		ORDER BY u.xp DESC, u.created_at ASC, u.id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.platform, limit)
	if err != nil {
		return nil, service.StoreError("top users by xp", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		var user models.User
		identity := models.PlatformIdentity{Platform: r.platform}
		if err := rows.Scan(
			&user.ID,
			&user.XP,
			&user.TotalPredictions,
			&user.CorrectPredictions,
			&user.CreatedAt,
			&user.UpdatedAt,
			&identity.ExternalID,
			&identity.DisplayName,
		); err != nil {
			return nil, service.StoreError("scan user", err)
		}
		user.Identities = []models.PlatformIdentity{identity}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, service.StoreError("top users by xp", err)
	}
	return users, nil
}
