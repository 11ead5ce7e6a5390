// Package export はTikTokエクスポートファイルの読み込みと正規化を提供する。
// エクスポートJSONの境界で厳密な構造体へデコードし、
// フィールド名の大文字小文字の揺れを吸収した参照列をドメイン側へ渡す。
package export

import (
	"encoding/json"
	"fmt"
	"os"
)

// ListType は処理対象のリスト種別を表す。
type ListType string

const (
	// ListSaved はセーブ済み動画リスト（Favorite Videos）。
	ListSaved ListType = "saved"
	// ListLiked はいいね済み動画リスト（Like List）。
	ListLiked ListType = "liked"
	// ListWatched は視聴履歴リスト（Video Browsing History）。
	ListWatched ListType = "watched"
)

// ParseListType は文字列をListTypeへ変換する。
// saved、liked、watched以外はエラーを返す。
func ParseListType(s string) (ListType, error) {
	switch s {
	case string(ListSaved):
		return ListSaved, nil
	case string(ListLiked):
		return ListLiked, nil
	case string(ListWatched):
		return ListWatched, nil
	default:
		return "", fmt.Errorf("無効なリスト種別です: %q（saved、liked、watchedのいずれかを指定してください）", s)
	}
}

// Reference は正規化済みの動画参照1件を表す。
// Dateはエクスポート記載の生のタイムスタンプ文字列。
type Reference struct {
	Date string
	Link string
}

// rawReference は大文字始まりのフィールド名を使うリストの1件。
type rawReference struct {
	Date string `json:"Date"`
	Link string `json:"Link"`
}

// likedReference は小文字のフィールド名を使ういいねリストの1件。
type likedReference struct {
	Date string `json:"date"`
	Link string `json:"link"`
}

// Data はエクスポートJSONのうちこの処理系が使用する部分を表す。
type Data struct {
	Activity struct {
		FavoriteVideos struct {
			FavoriteVideoList []rawReference `json:"FavoriteVideoList"`
		} `json:"Favorite Videos"`
		LikeList struct {
			ItemFavoriteList []likedReference `json:"ItemFavoriteList"`
		} `json:"Like List"`
		VideoBrowsingHistory struct {
			VideoList []rawReference `json:"VideoList"`
		} `json:"Video Browsing History"`
	} `json:"Activity"`
}

// Load はエクスポートファイルを読み込んでパースする。
// ファイルが読めない、またはJSONとして不正な場合は致命的エラーとして返す
// （個々の項目のエラーとは異なり、実行自体を開始できない）。
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("エクスポートファイルの読み込みに失敗しました: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("エクスポートファイルのパースに失敗しました: %w", err)
	}

	return &data, nil
}

// Select は指定リスト種別の参照列をエクスポート記載順のまま返す。
// 3つのリストのうちちょうど1つを選択し、フィールド名を{date, link}に正規化する。
func (d *Data) Select(t ListType) []Reference {
	switch t {
	case ListLiked:
		refs := make([]Reference, 0, len(d.Activity.LikeList.ItemFavoriteList))
		for _, v := range d.Activity.LikeList.ItemFavoriteList {
			refs = append(refs, Reference{Date: v.Date, Link: v.Link})
		}
		return refs
	case ListWatched:
		refs := make([]Reference, 0, len(d.Activity.VideoBrowsingHistory.VideoList))
		for _, v := range d.Activity.VideoBrowsingHistory.VideoList {
			refs = append(refs, Reference{Date: v.Date, Link: v.Link})
		}
		return refs
	default: // ListSaved
		refs := make([]Reference, 0, len(d.Activity.FavoriteVideos.FavoriteVideoList))
		for _, v := range d.Activity.FavoriteVideos.FavoriteVideoList {
			refs = append(refs, Reference{Date: v.Date, Link: v.Link})
		}
		return refs
	}
}

// WatchedEntries は視聴履歴リストをそのまま返す。
// transferモード用で、日時は正規化せず生の文字列のまま保持する。
func (d *Data) WatchedEntries() []Reference {
	return d.Select(ListWatched)
}
