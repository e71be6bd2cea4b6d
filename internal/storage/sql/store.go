package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"example.com/streakly/internal/domain"
	"example.com/streakly/internal/repository"
	"example.com/streakly/internal/storage"
)

const fkViolation = "23503"

// Store talks to the hosted postgres over database/sql with the pgx stdlib
// driver. Task rows carry a timestamptz created_at; it is collapsed to the
// normalized day-string on the way out so same-day tasks always share a key.
type Store struct {
	db *sql.DB
}

func New(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, owner_id, text, completed, created_at
		from tasks
		where owner_id = $1
		order by created_at desc`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		var t domain.Task
		var createdAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			t.CreatedAt = domain.Day(createdAt.Time)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *Store) Create(ctx context.Context, ownerID, text string) (domain.Task, error) {
	t := domain.Task{OwnerID: ownerID, Text: text}
	var createdAt sql.NullTime
	row := s.db.QueryRowContext(ctx, `
		insert into tasks(owner_id, text, completed)
		values ($1, $2, false)
		returning id, created_at`,
		ownerID,
		text,
	)
	if err := row.Scan(&t.ID, &createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	if createdAt.Valid {
		t.CreatedAt = domain.Day(createdAt.Time)
	}
	return t, nil
}

func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	return s.exec(ctx, `update tasks set completed = $1 where id = $2`, completed, id)
}

func (s *Store) SetText(ctx context.Context, id, text string) error {
	return s.exec(ctx, `update tasks set text = $1 where id = $2`, text, id)
}

func (s *Store) Remove(ctx context.Context, id string) error {
	return s.exec(ctx, `delete from tasks where id = $1`, id)
}

func (s *Store) DailyGoal(ctx context.Context, ownerID string) (int, error) {
	var goal int
	row := s.db.QueryRowContext(ctx, `
		select daily_goal from user_settings where owner_id = $1`,
		ownerID,
	)
	if err := row.Scan(&goal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.DefaultDailyGoal, nil
		}
		return 0, err
	}
	return goal, nil
}

func (s *Store) SetDailyGoal(ctx context.Context, ownerID string, goal int) error {
	_, err := s.db.ExecContext(ctx, `
		insert into user_settings(owner_id, daily_goal)
		values ($1, $2)
		on conflict (owner_id) do update set daily_goal = excluded.daily_goal`,
		ownerID,
		goal,
	)
	return err
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
