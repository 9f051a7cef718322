package resolver

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/store/core"
)

// WechatMP resolves an Official Account authorization code. The union id is
// the linking key: without one the profile cannot be attached to an account
// deterministically, so the exchange is rejected outright.
type WechatMP struct {
	Store  core.Store
	Client provider.Exchanger
}

// Resolve exchanges the code and looks up, creates or backfills the account.
func (r *WechatMP) Resolve(ctx context.Context, code, _ string) (*core.User, error) {
	log := logger.From(ctx).With(logger.Component("resolver.wechat_mp"))

	tok, err := r.Client.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("wechat mp exchange: %w", err)
	}
	if tok.UnionID == "" {
		log.Info("exchange without unionid, rejecting")
		return nil, fmt.Errorf("%w: no unionid in exchange", provider.ErrRejected)
	}

	u, err := r.Store.FindByColumn(ctx, core.ColumnWxUnionID, tok.UnionID)
	if err != nil {
		if !core.IsNotFound(err) {
			return nil, fmt.Errorf("find by unionid: %w", err)
		}

		hash, err := password.Placeholder()
		if err != nil {
			return nil, fmt.Errorf("placeholder password: %w", err)
		}
		created := &core.User{
			Password:  hash,
			WxOpenID:  tok.OpenID,
			WxUnionID: tok.UnionID,
		}
		u, err = insertOrRecover(ctx, r.Store, created, core.ColumnWxUnionID, tok.UnionID)
		if err != nil {
			return nil, err
		}
		log.Info("account created from wechat mp login", logger.UserID(u.ID))
		return u, nil
	}

	// First write wins for the openid: backfill whenever the stored value
	// is empty, even if the exchange carried none. The write itself is
	// observable downstream, so it is not skipped for an empty value.
	if u.WxOpenID == "" {
		if err := r.Store.UpdateWxOpenID(ctx, u.ID, tok.OpenID); err != nil {
			return nil, fmt.Errorf("update openid: %w", err)
		}
		u.WxOpenID = tok.OpenID
		log.Info("openid backfilled", logger.UserID(u.ID))
	}
	return u, nil
}
