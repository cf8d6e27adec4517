package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/profile"
	"constanciaAPI/internal/types/workout"
)

// PgStore implements Store and NotificationStore on PostgreSQL. See
// db/schema.sql for the tables.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

const profileColumns = `id, clerk_id, timezone, current_streak, longest_streak, total_workouts,
	current_plan_id, plan_start_date, created_at, updated_at`

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var planStart *time.Time
	err := row.Scan(
		&p.ID,
		&p.ClerkID,
		&p.Timezone,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.TotalWorkouts,
		&p.CurrentPlanID,
		&planStart,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if planStart != nil {
		d := daykey.FromDate(*planStart)
		p.PlanStartDate = &d
	}
	return p, nil
}

// dateArg turns a key into the value pgx binds to a DATE parameter.
func dateArg(d daykey.DayKey) (time.Time, error) {
	return d.Time(time.UTC)
}

func (s *PgStore) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(s.db.QueryRow(ctx, query, userID))
}

func (s *PgStore) GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE clerk_id = $1`
	return scanProfile(s.db.QueryRow(ctx, query, clerkID))
}

func (s *PgStore) CreateProfile(ctx context.Context, clerkID, timezone string) (*profile.Profile, error) {
	query := `
	INSERT INTO profiles (id, clerk_id, timezone, current_streak, longest_streak, total_workouts, created_at, updated_at)
	VALUES ($1, $2, $3, 0, 0, 0, NOW(), NOW())
	ON CONFLICT (clerk_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, uuid.New(), clerkID, timezone); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.GetProfileByClerkID(ctx, clerkID)
}

func (s *PgStore) DeleteProfileByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile writes all set fields in a single UPDATE statement.
func (s *PgStore) UpdateProfile(ctx context.Context, userID uuid.UUID, update profile.Update) error {
	if err := update.Validate(); err != nil {
		return err
	}
	if update.Empty() {
		return nil
	}

	sets := []string{}
	args := []any{userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.CurrentStreak != nil {
		add("current_streak", *update.CurrentStreak)
	}
	if update.LongestStreak != nil {
		add("longest_streak", *update.LongestStreak)
	}
	if update.TotalWorkouts != nil {
		add("total_workouts", *update.TotalWorkouts)
	}
	if update.CurrentPlanID != nil {
		add("current_plan_id", *update.CurrentPlanID)
	}
	if update.PlanStartDate != nil {
		start, err := dateArg(*update.PlanStartDate)
		if err != nil {
			return err
		}
		add("plan_start_date", start)
	}

	query := fmt.Sprintf(`UPDATE profiles SET %s, updated_at = NOW() WHERE id = $1`, strings.Join(sets, ", "))
	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PgStore) UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) error {
	result, err := s.db.Exec(ctx, `UPDATE profiles SET timezone = $2, updated_at = NOW() WHERE id = $1`, userID, timezone)
	if err != nil {
		return fmt.Errorf("failed to update timezone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PgStore) GetLastCheckinBefore(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (*daykey.DayKey, error) {
	before, err := dateArg(date)
	if err != nil {
		return nil, err
	}

	var last *time.Time
	err = s.db.QueryRow(ctx, `
		SELECT MAX(checkin_date) FROM daily_checkins
		WHERE user_id = $1 AND checkin_date < $2
	`, userID, before).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to read last check-in: %w", err)
	}
	if last == nil {
		return nil, nil
	}
	d := daykey.FromDate(*last)
	return &d, nil
}

func (s *PgStore) GetCheckinOn(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (bool, error) {
	on, err := dateArg(date)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM daily_checkins WHERE user_id = $1 AND checkin_date = $2)
	`, userID, on).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to read check-in: %w", err)
	}
	return exists, nil
}

func (s *PgStore) GetCheckinsSince(ctx context.Context, userID uuid.UUID, date daykey.DayKey) ([]daykey.DayKey, error) {
	since, err := dateArg(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT checkin_date FROM daily_checkins
		WHERE user_id = $1 AND checkin_date >= $2
		ORDER BY checkin_date
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read check-ins: %w", err)
	}

	dates, err := pgx.CollectRows(rows, pgx.RowTo[time.Time])
	if err != nil {
		return nil, fmt.Errorf("failed to scan check-ins: %w", err)
	}

	days := make([]daykey.DayKey, 0, len(dates))
	for _, d := range dates {
		days = append(days, daykey.FromDate(d))
	}
	return days, nil
}

func (s *PgStore) UpsertCheckin(ctx context.Context, userID uuid.UUID, date daykey.DayKey, workoutID *uuid.UUID) (bool, error) {
	on, err := dateArg(date)
	if err != nil {
		return false, err
	}

	// a second workout on the same day only fills in a missing workout reference;
	// xmax is 0 only on a freshly inserted row
	query := `
        INSERT INTO daily_checkins (id, user_id, checkin_date, workout_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id, checkin_date)
        DO UPDATE SET
            workout_id = COALESCE(daily_checkins.workout_id, EXCLUDED.workout_id)
        RETURNING (xmax = 0)
    `
	var created bool
	if err := s.db.QueryRow(ctx, query, uuid.New(), userID, on, workoutID).Scan(&created); err != nil {
		return false, fmt.Errorf("failed to upsert check-in: %w", err)
	}
	return created, nil
}

func (s *PgStore) AddWorkout(ctx context.Context, w *workout.Workout) (*workout.Workout, error) {
	out := *w
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO workouts (id, user_id, workout_type, duration_seconds, exercises_completed, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING completed_at
	`,
		out.ID,
		out.UserID,
		out.WorkoutType,
		out.DurationSeconds,
		out.ExercisesCompleted,
		out.CompletedAt,
	).Scan(&out.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add workout: %w", err)
	}
	return &out, nil
}

func (s *PgStore) ListReminderTargets(ctx context.Context) ([]ReminderTarget, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.timezone, p.current_streak, MAX(c.checkin_date)
		FROM profiles p
		LEFT JOIN daily_checkins c ON c.user_id = p.id
		GROUP BY p.id, p.timezone, p.current_streak
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder targets: %w", err)
	}
	defer rows.Close()

	var targets []ReminderTarget
	for rows.Next() {
		var t ReminderTarget
		var last *time.Time
		if err := rows.Scan(&t.UserID, &t.Timezone, &t.CurrentStreak, &last); err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		if last != nil {
			d := daykey.FromDate(*last)
			t.LastCheckin = &d
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *PgStore) UpsertNotification(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	out := *n
	err := s.db.QueryRow(ctx, `
		INSERT INTO pending_notifications (id, user_id, tag, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		ON CONFLICT (user_id, tag)
		DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body, read = FALSE, created_at = NOW()
		RETURNING id, read, created_at
	`, uuid.New(), out.UserID, out.Tag, out.Title, out.Body).Scan(&out.ID, &out.Read, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert notification: %w", err)
	}
	return &out, nil
}

func (s *PgStore) ListUnreadNotifications(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, tag, title, body, read, created_at
		FROM pending_notifications
		WHERE user_id = $1 AND read = FALSE
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var list []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Tag, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (s *PgStore) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
		UPDATE pending_notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PgStore) GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	tokens, err := pgx.CollectRows(rows, pgx.RowToStructByName[notification.DeviceToken])
	if err != nil {
		return nil, fmt.Errorf("failed to scan device tokens: %w", err)
	}
	return tokens, nil
}

func (s *PgStore) RegisterDevice(ctx context.Context, userID uuid.UUID, token notification.DeviceToken) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = NOW()
	`, userID, token.Token, token.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
