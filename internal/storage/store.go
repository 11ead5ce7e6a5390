// Package storage はアーカイブ成果物のオブジェクトストレージへの書き込みを提供する。
package storage

import "context"

// ObjectStore はオブジェクトストレージへの書き込みインターフェース。
// この処理系は書き込みのみを行い、読み取りと削除は行わない。
type ObjectStore interface {
	// Put はpayloadをkeyで指定されるオブジェクトとして書き込む。
	Put(ctx context.Context, key string, payload []byte, contentType string) error
}
