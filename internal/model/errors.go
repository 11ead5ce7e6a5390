package model

import "errors"

// ErrVideoUnavailable は解決サービスが動画を解決できなかったことを示す。
// 削除済み・非公開の動画で正常に発生するため、失敗ではなくスキップとして扱う。
var ErrVideoUnavailable = errors.New("動画を解決できませんでした")

// ErrMalformedTimestamp はエクスポートのタイムスタンプが
// "YYYY-MM-DD HH:MM:SS" 形式として解釈できないことを示す。
var ErrMalformedTimestamp = errors.New("タイムスタンプの形式が不正です")

// ErrMalformedReference は動画参照URLからコンテンツIDを抽出できないことを示す。
var ErrMalformedReference = errors.New("動画参照URLの形式が不正です")
