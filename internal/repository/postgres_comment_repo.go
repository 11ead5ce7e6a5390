package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/tokvault/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// ExistsForVideo は指定動画のコメントが1件以上存在するかを返す。
func (r *PostgresCommentRepo) ExistsForVideo(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE video_id = $1)`,
		videoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("コメントの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// BulkInsert はコメントを一括挿入し、実際に挿入された件数を返す。
// コメントIDの重複はON CONFLICT DO NOTHINGで無視する。
// 1動画分のコメントは1回のINSERT文で挿入する（部分挿入を避ける）。
func (r *PostgresCommentRepo) BulkInsert(ctx context.Context, comments []*model.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(comments))
	args := make([]interface{}, 0, len(comments)*6)
	for i, c := range comments {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, c.ID, c.Text, c.Username, c.Likes, c.Date, c.VideoID)
	}

	query := `INSERT INTO comments (id, text, username, likes, date, video_id) VALUES ` +
		strings.Join(placeholders, ", ") +
		` ON CONFLICT (id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("コメントの一括挿入に失敗しました: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("挿入件数の取得に失敗しました: %w", err)
	}

	return int(inserted), nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
