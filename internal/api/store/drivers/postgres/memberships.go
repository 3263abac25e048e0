package postgres

import (
	"context"
	"database/sql"
)

type membershipsRepo struct {
	db *sql.DB
}

func (r *membershipsRepo) IsActiveMember(ctx context.Context, meetupID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM meetup_members
			WHERE meetup_id = $1 AND user_id = $2
			  AND rsvp_status IN ('going', 'maybe', 'waitlist')
		)`, meetupID, userID).Scan(&exists)
	return exists, err
}

func (r *membershipsRepo) CreateMeetup(ctx context.Context, id, title, createdBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meetups (id, title, created_by) VALUES ($1, $2, $3)`,
		id, title, createdBy)
	return mapConstraint(err)
}

func (r *membershipsRepo) UpsertMember(ctx context.Context, meetupID, userID, rsvpStatus string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meetup_members (meetup_id, user_id, rsvp_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (meetup_id, user_id) DO UPDATE SET rsvp_status = EXCLUDED.rsvp_status`,
		meetupID, userID, rsvpStatus)
	return err
}
