package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/store/core"
)

// The QR login flow historically tolerates a missing unionid: the lookup
// and create still run against the empty value.
func TestWechatOpenToleratesMissingUnionID(t *testing.T) {
	st := newRecordingStore()
	r := &WechatOpen{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1"}}}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Empty(t, u.WxUnionID)
	require.Empty(t, u.WxOpenID)
	require.Equal(t, 1, st.inserts)
}

func TestWechatOpenRequireUnionID(t *testing.T) {
	st := newRecordingStore()
	r := &WechatOpen{
		Store:          st,
		Client:         &fakeExchanger{tok: &provider.Token{OpenID: "o1"}},
		RequireUnionID: true,
	}

	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrRejected)
	require.Zero(t, st.inserts)
}

func TestWechatOpenCreatesWithoutOpenID(t *testing.T) {
	st := newRecordingStore()
	r := &WechatOpen{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1", UnionID: "u1"}}}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, "u1", u.WxUnionID)
	require.Empty(t, u.WxOpenID)
	require.NotEmpty(t, u.Password)
}

func TestWechatOpenFindsExisting(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", WxUnionID: "u1"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	r := &WechatOpen{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o1", UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, existing.ID, u.ID)
	require.Zero(t, st.inserts)
	require.Empty(t, st.openIDWrites)
}

// When the record already has an openid the same value is written back.
// Callers may watch for the write, so it stays.
func TestWechatOpenRewritesStoredOpenID(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", WxOpenID: "o-old", WxUnionID: "u1"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	r := &WechatOpen{Store: st, Client: &fakeExchanger{tok: &provider.Token{OpenID: "o-new", UnionID: "u1"}}}
	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, "o-old", u.WxOpenID)
	require.Equal(t, []string{"o-old"}, st.openIDWrites)
}

func TestWechatOpenExchangeFailurePropagates(t *testing.T) {
	r := &WechatOpen{Store: newRecordingStore(), Client: &fakeExchanger{err: provider.ErrUnreachable}}
	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrUnreachable)
}
