// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tokvault/internal/archive"
	"github.com/hitoshi/tokvault/internal/comments"
	"github.com/hitoshi/tokvault/internal/config"
	"github.com/hitoshi/tokvault/internal/database"
	"github.com/hitoshi/tokvault/internal/export"
	"github.com/hitoshi/tokvault/internal/logger"
	"github.com/hitoshi/tokvault/internal/metrics"
	"github.com/hitoshi/tokvault/internal/model"
	"github.com/hitoshi/tokvault/internal/ops"
	"github.com/hitoshi/tokvault/internal/repository"
	"github.com/hitoshi/tokvault/internal/resolver"
	"github.com/hitoshi/tokvault/internal/security"
	"github.com/hitoshi/tokvault/internal/storage"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで実行する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// サブコマンド名が明示されている場合はフラグ解析から除く
	flagArgs := args
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		flagArgs = args[1:]
	}

	opts, err := ParseArgs(w, flagArgs)
	if err != nil {
		return err
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	// 実行単位の識別子を全ログに付与する
	log := slog.Default().With(slog.String("run_id", uuid.NewString()))

	log.Info("starting application",
		slog.String("command", string(cmd)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandComments:
		return runComments(ctx, cfg, opts, log)
	case CommandTransfer:
		return runTransfer(ctx, cfg, opts, log)
	case CommandMigrate:
		return runMigrate(cfg, log)
	default:
		return runArchive(ctx, cfg, opts, log)
	}
}

// runArchive はエクスポートの動画をアーカイブするモードで実行する。
// DB・オブジェクトストレージ・解決サービスをワイヤリングし、
// バックログをカーソル位置から有界並列で処理する。
func runArchive(ctx context.Context, cfg *config.Config, opts *RunOptions, log *slog.Logger) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established")

	videoRepo := repository.NewPostgresVideoRepo(db)

	// 2. 全消去フラグ（明示指定時のみ）
	if opts.Wipe {
		if err := videoRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to wipe videos: %w", err)
		}
		log.Warn("全動画レコードを削除しました")
	}

	// 3. エクスポートの読み込みとリスト選択
	listType, err := export.ParseListType(opts.Type)
	if err != nil {
		return err
	}
	if listType == export.ListWatched {
		return fmt.Errorf("視聴履歴のアーカイブには transfer サブコマンドを使用してください")
	}

	data, err := export.Load(opts.Path)
	if err != nil {
		return err
	}
	refs := data.Select(listType)

	// 4. オブジェクトストレージ
	store, err := storage.NewMinioStore(ctx, storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// 5. セキュリティサービスと解決クライアント
	ssrfGuard := security.NewSSRFGuard()
	httpClient := ssrfGuard.NewSafeClient(cfg.FetchTimeout)
	resolverClient := resolver.NewClient(httpClient, log, cfg.ResolverURL)

	// 6. メトリクスと運用監視サーバー
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.OpsPort != "" {
		opsServer := ops.Start(":"+cfg.OpsPort, ops.NewRouter(db, reg, log), log)
		defer shutdownOps(opsServer, log)
	}

	// 7. 再開カーソルの決定
	cursorFile := archive.NewCursorFile(cfg.CursorPath)
	start := opts.Cursor
	if start < 0 {
		start, err = cursorFile.Read()
		if err != nil {
			return fmt.Errorf("failed to read cursor: %w", err)
		}
		log.Info("カーソルファイルから再開します", slog.Int("cursor", start))
	}

	// 8. パイプラインの実行
	processor := archive.NewProcessor(videoRepo, resolverClient, store, ssrfGuard, httpClient, log, cfg.FetchMaxSize)
	pipeline := archive.NewPipeline(processor, cursorFile, collector, log, cfg.CheckpointInterval)

	summary := pipeline.Run(ctx, refs, archive.Options{
		Limit:       opts.Limit,
		Cursor:      start,
		Concurrency: opts.Concurrency,
	})

	if summary.Failed > 0 {
		log.Warn("一部の動画の処理に失敗しました", slog.Int("failed", summary.Failed))
	}
	return nil
}

// runComments はコメント収集モードで実行する。
func runComments(ctx context.Context, cfg *config.Config, opts *RunOptions, log *slog.Logger) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established")

	videoRepo := repository.NewPostgresVideoRepo(db)
	commentRepo := repository.NewPostgresCommentRepo(db)

	filter, err := parseListFilter(opts.Type)
	if err != nil {
		return err
	}

	sanitizer := security.NewCommentSanitizer()
	client := comments.NewClient(
		&http.Client{Timeout: cfg.FetchTimeout},
		log, cfg.CommentAPIURL, cfg.CommentPageSize, cfg.CommentAPIInterval,
	)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.OpsPort != "" {
		opsServer := ops.Start(":"+cfg.OpsPort, ops.NewRouter(db, reg, log), log)
		defer shutdownOps(opsServer, log)
	}

	harvester := comments.NewHarvester(videoRepo, commentRepo, client, sanitizer, collector, log, cfg.CommentMinLikes)

	offset := opts.Cursor
	if offset < 0 {
		offset = 0
	}

	summary, err := harvester.Run(ctx, comments.Options{
		Filter:      filter,
		Limit:       opts.Limit,
		Cursor:      offset,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		log.Warn("一部の動画のコメント収集に失敗しました", slog.Int("failed", summary.Failed))
	}
	return nil
}

// runTransfer は視聴履歴をデータベースへ一括転送する。
// 日時はエクスポート記載の文字列をそのまま保存し、リンクの重複は無視する。
func runTransfer(ctx context.Context, cfg *config.Config, opts *RunOptions, log *slog.Logger) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	data, err := export.Load(opts.Path)
	if err != nil {
		return err
	}

	refs := data.WatchedEntries()
	entries := make([]model.WatchedEntry, 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, model.WatchedEntry{Link: ref.Link, Date: ref.Date})
	}

	watchedRepo := repository.NewPostgresWatchedRepo(db)
	inserted, err := watchedRepo.BulkInsert(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to transfer watched history: %w", err)
	}

	log.Info("視聴履歴を転送しました",
		slog.Int("total", len(entries)),
		slog.Int("inserted", inserted),
	)
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

// parseListFilter はコメント収集の対象フィルタを解析する。
func parseListFilter(s string) (repository.ListFilter, error) {
	switch s {
	case string(repository.ListFilterSaved):
		return repository.ListFilterSaved, nil
	case string(repository.ListFilterLiked):
		return repository.ListFilterLiked, nil
	case string(repository.ListFilterAll):
		return repository.ListFilterAll, nil
	default:
		return "", fmt.Errorf("無効な対象フィルタです: %q（saved、liked、allのいずれかを指定してください）", s)
	}
}

// shutdownOps は運用監視サーバーを停止する。
func shutdownOps(server *http.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("運用監視サーバーの停止に失敗しました", slog.String("error", err.Error()))
	}
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
