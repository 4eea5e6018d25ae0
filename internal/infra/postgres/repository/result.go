package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ots-quiz-bot/internal/infra/postgres"
)

const schema = `
	CREATE TABLE IF NOT EXISTS quiz_results (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL,
		chat_id      BIGINT NOT NULL,
		player_id    BIGINT NOT NULL,
		username     TEXT NOT NULL DEFAULT '',
		first_name   TEXT NOT NULL DEFAULT '',
		score        INT NOT NULL,
		total        INT NOT NULL,
		percentage   INT NOT NULL,
		started_at   TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS quiz_results_rank_idx
		ON quiz_results (player_id, percentage DESC, score DESC);

	CREATE TABLE IF NOT EXISTS quiz_result_answers (
		result_id      TEXT NOT NULL REFERENCES quiz_results (id) ON DELETE CASCADE,
		question_order INT NOT NULL,
		prompt         TEXT NOT NULL,
		selected       INT[] NOT NULL,
		correct        INT[] NOT NULL,
		is_correct     BOOLEAN NOT NULL,
		PRIMARY KEY (result_id, question_order)
	);
`

// ResultRepository archives completed quiz sessions in PostgreSQL.
type ResultRepository struct {
	db postgres.DBTX
	tr *postgres.Transactor
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db postgres.DBTX, tr *postgres.Transactor) *ResultRepository {
	return &ResultRepository{db: db, tr: tr}
}

// EnsureSchema creates the result tables if they do not exist.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure quiz results schema: %w", err)
	}
	return nil
}

// Save stores the result and its answers in one transaction.
func (r *ResultRepository) Save(ctx context.Context, res *entities.QuizResult) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO quiz_results (
				id, session_id, chat_id, player_id, username, first_name,
				score, total, percentage, started_at, completed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

		_, err := tx.Exec(
			ctx,
			query,
			res.ID,
			res.SessionID,
			res.Player.ChatID,
			playerKey(res.Player),
			res.Player.Username,
			res.Player.FirstName,
			res.Score,
			res.Total,
			res.Percentage,
			res.StartedAt,
			res.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("insert quiz result: %w", err)
		}

		if len(res.Answers) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, a := range res.Answers {
			batch.Queue(`
				INSERT INTO quiz_result_answers (
					result_id, question_order, prompt, selected, correct, is_correct
				) VALUES ($1, $2, $3, $4, $5, $6)
			`, res.ID, i+1, a.Prompt, a.Selected, a.Correct, a.IsCorrect)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert quiz result answers: %w", err)
		}

		return nil
	})
}

// Top returns each player's best result, ranked by percentage, then score, then the earliest finish.
func (r *ResultRepository) Top(ctx context.Context, limit int) ([]*entities.QuizResult, error) {
	query := `
		SELECT id, session_id, chat_id, player_id, username, first_name,
		       score, total, percentage, started_at, completed_at
		FROM (
			SELECT DISTINCT ON (player_id) *
			FROM quiz_results
			ORDER BY player_id, percentage DESC, score DESC, completed_at ASC
		) best
		ORDER BY percentage DESC, score DESC, completed_at ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top results: %w", err)
	}
	defer rows.Close()

	var results []*entities.QuizResult
	for rows.Next() {
		var (
			res      entities.QuizResult
			playerID int64
		)
		err := rows.Scan(
			&res.ID,
			&res.SessionID,
			&res.Player.ChatID,
			&playerID,
			&res.Player.Username,
			&res.Player.FirstName,
			&res.Score,
			&res.Total,
			&res.Percentage,
			&res.StartedAt,
			&res.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Player.UserID = playerID
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

// playerKey ranks by user, falling back to the chat when the user is unknown.
func playerKey(p entities.Player) int64 {
	if p.UserID != 0 {
		return p.UserID
	}
	return p.ChatID
}
