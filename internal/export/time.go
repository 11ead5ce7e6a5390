package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/tokvault/internal/model"
)

// exportTimeLayout はエクスポートのタイムスタンプ形式。
// 各要素は1桁でも2桁でも受け付けるが、暦として不正な組み合わせ
// （13月、32日など）は解析エラーになる。
const exportTimeLayout = "2006-1-2 15:4:5"

// ParseTime はエクスポートの "YYYY-MM-DD HH:MM:SS" 形式のタイムスタンプを
// ローカルタイムゾーンの時刻として解析する。
// 日付と時刻の区切りは任意個の空白を許容する。
// トークン数の過不足、数値でない要素、暦として不正な組み合わせは
// すべてErrMalformedTimestampとなり、部分的な解析結果は返さない。
func ParseTime(s string) (time.Time, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrMalformedTimestamp, s)
	}

	t, err := time.ParseInLocation(exportTimeLayout, fields[0]+" "+fields[1], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrMalformedTimestamp, s)
	}

	return t, nil
}
