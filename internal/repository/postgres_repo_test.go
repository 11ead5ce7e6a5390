package repository

import (
	"testing"
)

// TestPostgresVideoRepo_ImplementsInterface はPostgresVideoRepoがVideoRepositoryを実装することを検証する。
func TestPostgresVideoRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresVideoRepoがVideoRepositoryを満たすことを検証
	var _ VideoRepository = (*PostgresVideoRepo)(nil)
}

// TestPostgresWatchedRepo_ImplementsInterface はPostgresWatchedRepoがWatchedRepositoryを実装することを検証する。
func TestPostgresWatchedRepo_ImplementsInterface(t *testing.T) {
	var _ WatchedRepository = (*PostgresWatchedRepo)(nil)
}

// TestPostgresCommentRepo_ImplementsInterface はPostgresCommentRepoがCommentRepositoryを実装することを検証する。
func TestPostgresCommentRepo_ImplementsInterface(t *testing.T) {
	var _ CommentRepository = (*PostgresCommentRepo)(nil)
}

// TestListFilterValues はListFilterの定数値が正しいことを検証する。
func TestListFilterValues(t *testing.T) {
	if ListFilterSaved != "saved" {
		t.Errorf("ListFilterSaved = %q, want %q", ListFilterSaved, "saved")
	}
	if ListFilterLiked != "liked" {
		t.Errorf("ListFilterLiked = %q, want %q", ListFilterLiked, "liked")
	}
	if ListFilterAll != "all" {
		t.Errorf("ListFilterAll = %q, want %q", ListFilterAll, "all")
	}
}
