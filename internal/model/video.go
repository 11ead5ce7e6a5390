// Package model はドメインモデルを定義する。
package model

import "time"

// Video はアーカイブ済み動画のレコードを表す。
// IDは動画参照URLから抽出した数値コンテンツIDで、グローバルに一意。
// レコードはパイプラインが取得・保存に成功した時点で1回だけ作成され、
// 以降この処理系からは更新も削除もされない。
type Video struct {
	ID       string
	Date     time.Time // エクスポートに記録された保存/いいね日時
	FileName string    // オブジェクトストレージ上のキー
	Liked    bool
	Saved    bool
}

// WatchedEntry は視聴履歴の1件を表す。
// 参照URLそのものを主キーとし、日時はエクスポートの生の文字列のまま保持する
// （視聴履歴は正規化せず転送のみ行う）。
type WatchedEntry struct {
	Link string
	Date string
}
