package app

import (
	"flag"
	"fmt"
	"io"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandArchive はエクスポートの動画をアーカイブするモード。
	CommandArchive Command = "archive"
	// CommandComments はアーカイブ済み動画のコメントを収集するモード。
	CommandComments Command = "comments"
	// CommandTransfer は視聴履歴をデータベースへ転送するモード。
	CommandTransfer Command = "transfer"
	// CommandMigrate はデータベースマイグレーションを実行するモード。
	CommandMigrate Command = "migrate"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandArchiveを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandArchive
	}

	switch args[0] {
	case "archive":
		return CommandArchive
	case "comments":
		return CommandComments
	case "transfer":
		return CommandTransfer
	case "migrate":
		return CommandMigrate
	default:
		return CommandArchive
	}
}

// RunOptions はサブコマンド共通のコマンドラインオプション。
type RunOptions struct {
	// Path はエクスポートJSONファイルのパス。
	Path string
	// Limit は処理対象の上限件数。0以下は無制限。
	Limit int
	// Cursor は処理を開始する位置。-1の場合はカーソルファイルから再開する。
	Cursor int
	// Type は対象リストの種別（saved、liked、またはcommentsモードではall）。
	Type string
	// Concurrency は最大並列数。
	Concurrency int
	// Wipe は処理前に全動画レコードを削除するかどうか。
	Wipe bool
}

// ParseArgs はサブコマンド名を除いた引数列からRunOptionsを解析する。
func ParseArgs(w io.Writer, args []string) (*RunOptions, error) {
	fs := flag.NewFlagSet("tokvault", flag.ContinueOnError)
	fs.SetOutput(w)

	opts := &RunOptions{}
	fs.StringVar(&opts.Path, "path", "./data.json", "エクスポートJSONファイルのパス")
	fs.IntVar(&opts.Limit, "limit", 0, "処理対象の上限件数（0は無制限）")
	fs.IntVar(&opts.Cursor, "cursor", -1, "処理を開始する位置（-1はカーソルファイルから再開）")
	fs.StringVar(&opts.Type, "type", "saved", "対象リストの種別")
	fs.IntVar(&opts.Concurrency, "concurrent", 5, "最大並列数")
	fs.BoolVar(&opts.Wipe, "wipe", false, "処理前に全動画レコードを削除する")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("引数の解析に失敗しました: %w", err)
	}

	return opts, nil
}
