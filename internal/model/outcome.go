package model

// Status はパイプライン項目の終端状態を表す。
// 1件の処理は必ずStored、Skipped、Failedのいずれかで終わる。
type Status string

const (
	// StatusStored は取得・保存が完了した状態。
	StatusStored Status = "stored"
	// StatusSkipped は期待される理由（アーカイブ済み、解決サービスの辞退、
	// 対象コメントなし）で処理を省略した状態。エラーではない。
	StatusSkipped Status = "skipped"
	// StatusFailed はネットワークやストレージのエラーで項目を破棄した状態。
	// 実行全体は継続する。
	StatusFailed Status = "failed"
)

// Outcome はパイプライン項目1件の処理結果を表す。
// 項目内で発生したエラーはこの型に変換され、項目境界を越えて伝播しない。
type Outcome struct {
	Status Status
	Detail string // 手動での再トリアージに必要な文脈（ID、リンク、理由など）
	Err    error  // StatusFailedの場合の原因
}

// Stored は保存完了の結果を生成する。
func Stored(detail string) Outcome {
	return Outcome{Status: StatusStored, Detail: detail}
}

// Skipped はスキップの結果を生成する。
func Skipped(detail string) Outcome {
	return Outcome{Status: StatusSkipped, Detail: detail}
}

// Failed は失敗の結果を生成する。
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
