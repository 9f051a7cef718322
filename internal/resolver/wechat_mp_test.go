package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/store/core"
	"github.com/flizi/authcenter/internal/store/memory"
)

func TestWechatMPRejectsMissingUnionID(t *testing.T) {
	st := newRecordingStore()
	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1"}}}

	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrRejected)
	require.Zero(t, st.inserts)
	require.Empty(t, st.openIDWrites)
}

func TestWechatMPCreatesAccount(t *testing.T) {
	st := newRecordingStore()
	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1", UnionID: "u1"}}}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "u1", u.WxUnionID)
	require.Equal(t, "o1", u.WxOpenID)
	require.True(t, strings.HasPrefix(u.Password, password.Prefix))
	require.Equal(t, 1, st.inserts)
}

func TestWechatMPIdempotent(t *testing.T) {
	st := newRecordingStore()
	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1", UnionID: "u1"}}}

	first, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, st.inserts)
}

func TestWechatMPBackfillsOpenID(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", WxUnionID: "u1"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o-new", UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, existing.ID, u.ID)
	require.Equal(t, "o-new", u.WxOpenID)
	require.Equal(t, []string{"o-new"}, st.openIDWrites)
}

// The backfill fires whenever the stored openid is empty, even when the
// exchange itself carried none; downstream consumers may observe the write.
func TestWechatMPBackfillsEmptyOpenID(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", WxUnionID: "u1"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, existing.ID, u.ID)
	require.Empty(t, u.WxOpenID)
	require.Equal(t, []string{""}, st.openIDWrites)
}

// First write wins: a stored openid is never overwritten by later logins.
func TestWechatMPKeepsStoredOpenID(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", WxOpenID: "o-old", WxUnionID: "u1"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o-new", UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, "o-old", u.WxOpenID)
	require.Empty(t, st.openIDWrites)
}

func TestWechatMPExchangeFailurePropagates(t *testing.T) {
	r := &WechatMP{Store: memory.New(), Client: &fakeExchanger{err: provider.ErrUnreachable}}
	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrUnreachable)
}

func TestWechatMPInsertRaceRecovers(t *testing.T) {
	winner := &core.User{Password: "{bcrypt}x", WxOpenID: "o-winner", WxUnionID: "u1"}
	st := &conflictingStore{Store: memory.New(), winner: winner}

	r := &WechatMP{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1", UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, "o-winner", u.WxOpenID)
	require.Equal(t, "u1", u.WxUnionID)
}
