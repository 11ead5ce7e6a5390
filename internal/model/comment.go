package model

import "time"

// Comment はアーカイブ済み動画に紐づく人気コメントを表す。
// IDは外部サービスのコメントIDをそのまま使用する。
// 動画1件につき1回の一括挿入で作成され、以降更新されない。
type Comment struct {
	ID       string
	Text     string
	Username string
	Likes    int
	Date     time.Time
	VideoID  string
}
