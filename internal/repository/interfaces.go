// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tokvault/internal/model"
)

// ListFilter はコメント収集対象動画の絞り込み条件を表す。
type ListFilter string

const (
	// ListFilterSaved はsavedフラグの立った動画のみを対象にする。
	ListFilterSaved ListFilter = "saved"
	// ListFilterLiked はlikedフラグの立った動画のみを対象にする。
	ListFilterLiked ListFilter = "liked"
	// ListFilterAll は全動画を対象にする。
	ListFilterAll ListFilter = "all"
)

// VideoRepository は動画レコードの永続化インターフェース。
type VideoRepository interface {
	// ExistsByID は指定IDの動画レコードが存在するかを返す。
	// 外部サービス呼び出しの前に実行する重複ガードとして使用する。
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Insert は動画レコードを挿入する。
	// 主キー衝突時はエラーとせず挿入を省略する。重複ガードが主たる
	// 重複防止手段であり、衝突時の無害化は多重実行に対する保険。
	Insert(ctx context.Context, video *model.Video) error

	// ListWithoutComments はコメントを1件も持たない動画をdate降順で返す。
	// filterでsaved/likedフラグによる絞り込みを行い、offsetとlimitで範囲を指定する。
	ListWithoutComments(ctx context.Context, filter ListFilter, offset, limit int) ([]*model.Video, error)

	// DeleteAll は全動画レコードと関連コメントを削除する。--wipe指定時のみ使用する。
	DeleteAll(ctx context.Context) error
}

// WatchedRepository は視聴履歴の永続化インターフェース。
type WatchedRepository interface {
	// BulkInsert は視聴履歴を一括挿入し、実際に挿入された件数を返す。
	// リンクの重複は無視する。
	BulkInsert(ctx context.Context, entries []model.WatchedEntry) (int, error)
}

// CommentRepository はコメントレコードの永続化インターフェース。
type CommentRepository interface {
	// ExistsForVideo は指定動画のコメントが1件以上存在するかを返す。
	// 収集済み動画の再実行を冪等にするためのチェック。
	ExistsForVideo(ctx context.Context, videoID string) (bool, error)

	// BulkInsert はコメントを一括挿入し、実際に挿入された件数を返す。
	// コメントIDの重複は無視する（再実行しても安全）。
	BulkInsert(ctx context.Context, comments []*model.Comment) (int, error)
}
