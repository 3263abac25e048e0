package sqlite

import (
	"context"
	"database/sql"
)

type membershipsRepo struct {
	db *sql.DB
}

func (r *membershipsRepo) IsActiveMember(ctx context.Context, meetupID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM meetup_members
		WHERE meetup_id = ? AND user_id = ?
		  AND rsvp_status IN ('going', 'maybe', 'waitlist')`,
		meetupID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipsRepo) CreateMeetup(ctx context.Context, id, title, createdBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meetups (id, title, created_by) VALUES (?, ?, ?)`,
		id, title, createdBy)
	return mapConstraint(err)
}

func (r *membershipsRepo) UpsertMember(ctx context.Context, meetupID, userID, rsvpStatus string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meetup_members (meetup_id, user_id, rsvp_status)
		VALUES (?, ?, ?)
		ON CONFLICT (meetup_id, user_id) DO UPDATE SET rsvp_status = excluded.rsvp_status`,
		meetupID, userID, rsvpStatus)
	return err
}
