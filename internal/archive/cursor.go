package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// CursorFile は再開カーソルの永続化を担う。
// パイプラインの完了フックから呼ばれるため、排他制御を内蔵する。
type CursorFile struct {
	path string
	mu   sync.Mutex
}

// cursorPayload はカーソルファイルのJSON形式。
type cursorPayload struct {
	Cursor int `json:"cursor"`
}

// NewCursorFile はCursorFileの新しいインスタンスを生成する。
func NewCursorFile(path string) *CursorFile {
	return &CursorFile{path: path}
}

// Read は保存済みカーソル値を返す。
// ファイルが存在しない場合（初回実行）はエラーとせず0を返す。
func (c *CursorFile) Read() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("カーソルファイルの読み込みに失敗しました: %w", err)
	}

	var payload cursorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("カーソルファイルの解析に失敗しました: %w", err)
	}

	return payload.Cursor, nil
}

// Write はカーソル値をファイルへ上書き保存する。
func (c *CursorFile) Write(cursor int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(cursorPayload{Cursor: cursor})
	if err != nil {
		return fmt.Errorf("カーソルのシリアライズに失敗しました: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("カーソルファイルの書き込みに失敗しました: %w", err)
	}

	return nil
}
