package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tokvault/internal/model"
)

// PostgresVideoRepo はPostgreSQLを使用した動画リポジトリ。
type PostgresVideoRepo struct {
	db *sql.DB
}

// NewPostgresVideoRepo はPostgresVideoRepoを生成する。
func NewPostgresVideoRepo(db *sql.DB) *PostgresVideoRepo {
	return &PostgresVideoRepo{db: db}
}

// ExistsByID は指定IDの動画レコードが存在するかを返す。
func (r *PostgresVideoRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("動画の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Insert は動画レコードを挿入する。主キー衝突時は何もしない。
func (r *PostgresVideoRepo) Insert(ctx context.Context, video *model.Video) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO videos (id, date, file_name, liked, saved)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		video.ID, video.Date, video.FileName, video.Liked, video.Saved,
	)
	if err != nil {
		return fmt.Errorf("動画レコードの挿入に失敗しました: %w", err)
	}
	return nil
}

// ListWithoutComments はコメントを1件も持たない動画をdate降順で返す。
func (r *PostgresVideoRepo) ListWithoutComments(
	ctx context.Context,
	filter ListFilter,
	offset, limit int,
) ([]*model.Video, error) {
	query := `SELECT v.id, v.date, v.file_name, v.liked, v.saved
		 FROM videos v
		 LEFT JOIN comments c ON v.id = c.video_id
		 WHERE c.id IS NULL`

	switch filter {
	case ListFilterSaved:
		query += " AND v.saved = true"
	case ListFilterLiked:
		query += " AND v.liked = true"
	case ListFilterAll:
		// 絞り込みなし
	}

	query += " ORDER BY v.date DESC OFFSET $1 LIMIT $2"

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("コメント未収集動画の一覧取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		video := &model.Video{}
		if err := rows.Scan(&video.ID, &video.Date, &video.FileName, &video.Liked, &video.Saved); err != nil {
			return nil, fmt.Errorf("動画行の読み取りに失敗しました: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("動画一覧の走査に失敗しました: %w", err)
	}

	return videos, nil
}

// DeleteAll は全動画レコードを削除する。
// コメントが動画を参照しているため、同一トランザクションでコメントを先に削除する。
func (r *PostgresVideoRepo) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments`); err != nil {
		return fmt.Errorf("コメントの全削除に失敗しました: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM videos`); err != nil {
		return fmt.Errorf("動画の全削除に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("全削除のコミットに失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VideoRepository = (*PostgresVideoRepo)(nil)
