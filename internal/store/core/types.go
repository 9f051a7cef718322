package core

import "time"

// User is one internal account. External identifiers (phone, WeChat,
// GitHub/Gitee) may all be attached to the same account over time, but no
// two accounts ever share the same non-empty value of any one of them.
type User struct {
	ID        string
	Password  string // hash with algorithm prefix, e.g. "{bcrypt}$2a$..."
	Phone     string
	WxOpenID  string // WeChat MP scoped id, may be backfilled later
	WxUnionID string // stable cross-surface WeChat linking key
	GithubID  string
	CreatedAt time.Time
}

// SmsCode is one issued one-time code. Codes are written by the SMS sender
// and are read-only here; freshness is checked by elapsed time, never by
// deletion.
type SmsCode struct {
	Phone      string
	Code       string
	CreateTime time.Time
}

// Column names accepted by FindByColumn.
const (
	ColumnPhone     = "phone"
	ColumnWxUnionID = "wx_unionid"
	ColumnGithubID  = "github_id"
)
