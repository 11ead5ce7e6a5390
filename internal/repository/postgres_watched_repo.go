package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/tokvault/internal/model"
)

// watchedChunkSize は1回のINSERT文に含める最大行数。
// PostgreSQLのプレースホルダ上限（65535個）に余裕を持たせる。
const watchedChunkSize = 500

// PostgresWatchedRepo はPostgreSQLを使用した視聴履歴リポジトリ。
type PostgresWatchedRepo struct {
	db *sql.DB
}

// NewPostgresWatchedRepo はPostgresWatchedRepoを生成する。
func NewPostgresWatchedRepo(db *sql.DB) *PostgresWatchedRepo {
	return &PostgresWatchedRepo{db: db}
}

// BulkInsert は視聴履歴を一括挿入し、実際に挿入された件数を返す。
// リンクの重複はON CONFLICT DO NOTHINGで無視する。
func (r *PostgresWatchedRepo) BulkInsert(ctx context.Context, entries []model.WatchedEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	var inserted int64
	for start := 0; start < len(entries); start += watchedChunkSize {
		end := start + watchedChunkSize
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*2)
		for i, e := range chunk {
			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
			args = append(args, e.Link, e.Date)
		}

		query := `INSERT INTO watched (link, date) VALUES ` +
			strings.Join(placeholders, ", ") +
			` ON CONFLICT (link) DO NOTHING`

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return int(inserted), fmt.Errorf("視聴履歴の一括挿入に失敗しました: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return int(inserted), fmt.Errorf("挿入件数の取得に失敗しました: %w", err)
		}
		inserted += n
	}

	return int(inserted), nil
}

// compile-time interface check
var _ WatchedRepository = (*PostgresWatchedRepo)(nil)
