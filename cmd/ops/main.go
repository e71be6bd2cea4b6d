package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const schema = `
create table if not exists tasks (
	id uuid primary key default gen_random_uuid(),
	owner_id text not null,
	text text not null,
	completed boolean not null default false,
	created_at timestamptz not null default now()
);
create index if not exists tasks_owner_created_idx on tasks (owner_id, created_at desc);

create table if not exists user_settings (
	owner_id text primary key,
	daily_goal integer not null
);
`

func main() {
	root := &cobra.Command{
		Use:   "ops",
		Short: "Operational tooling for the streakly backend",
	}
	root.AddCommand(migrateCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := db.Exec(schema); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Println("schema applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var ownerID string
	var days int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo tasks for an owner, spread over recent days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID == "" {
				return fmt.Errorf("--owner is required")
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			now := time.Now()
			for d := 0; d < days; d++ {
				createdAt := now.AddDate(0, 0, -d)
				for i := 0; i < 3; i++ {
					_, err := db.Exec(`
						insert into tasks(owner_id, text, completed, created_at)
						values ($1, $2, $3, $4)`,
						ownerID,
						fmt.Sprintf("demo task %d", i+1),
						i < 2, // two of three completed each day
						createdAt,
					)
					if err != nil {
						return fmt.Errorf("seed day %d: %w", d, err)
					}
				}
			}
			_, err = db.Exec(`
				insert into user_settings(owner_id, daily_goal)
				values ($1, 2)
				on conflict (owner_id) do update set daily_goal = excluded.daily_goal`,
				ownerID,
			)
			if err != nil {
				return fmt.Errorf("seed settings: %w", err)
			}
			fmt.Printf("seeded %d days for %s\n", days, ownerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id to seed")
	cmd.Flags().IntVar(&days, "days", 7, "number of recent days to fill")
	return cmd
}

// openDB reads the connection settings straight from the environment; the
// api binary's flag-based loader would fight cobra over os.Args here.
func openDB() (*sql.DB, error) {
	_ = godotenv.Load()
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "pgx"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
