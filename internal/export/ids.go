package export

import "regexp"

// videoIDPattern は動画参照URLのパスに含まれる数値IDセグメントにマッチする。
var videoIDPattern = regexp.MustCompile(`/video/(\d+)`)

// ExtractVideoID は動画参照URLから安定したコンテンツIDを抽出する。
// パターンに一致しない、または入力が不正な場合はok=falseを返す。
// 純粋関数であり、I/Oや副作用を持たない。
func ExtractVideoID(link string) (id string, ok bool) {
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}
