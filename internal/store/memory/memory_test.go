package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flizi/authcenter/internal/store/core"
)

func TestInsertAssignsID(t *testing.T) {
	st := New()
	u := &core.User{Password: "{bcrypt}x", Phone: "13800000000"}
	require.NoError(t, st.Insert(context.Background(), u))
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	got, err := st.FindByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "13800000000", got.Phone)
}

func TestInsertDuplicateIdentifierConflicts(t *testing.T) {
	st := New()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, &core.User{Password: "x", Phone: "13800000000"}))

	err := st.Insert(ctx, &core.User{Password: "x", Phone: "13800000000"})
	require.ErrorIs(t, err, core.ErrConflict)

	require.NoError(t, st.Insert(ctx, &core.User{Password: "x", GithubID: "42"}))
	err = st.Insert(ctx, &core.User{Password: "x", GithubID: "42"})
	require.ErrorIs(t, err, core.ErrConflict)
}

// Empty identifiers are not unique: any number of accounts may carry them.
func TestInsertManyEmptyIdentifiers(t *testing.T) {
	st := New()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, &core.User{Password: "a"}))
	require.NoError(t, st.Insert(ctx, &core.User{Password: "b"}))

	_, err := st.FindByColumn(ctx, core.ColumnPhone, "")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestFindByColumnUnknownColumn(t *testing.T) {
	st := New()
	_, err := st.FindByColumn(context.Background(), "password", "x")
	require.ErrorIs(t, err, core.ErrInvalid)
}

func TestUpdatePhoneConflicts(t *testing.T) {
	st := New()
	ctx := context.Background()
	a := &core.User{Password: "x", Phone: "13800000000"}
	b := &core.User{Password: "x", Phone: "13911112222"}
	require.NoError(t, st.Insert(ctx, a))
	require.NoError(t, st.Insert(ctx, b))

	err := st.UpdatePhone(ctx, b.ID, "13800000000")
	require.ErrorIs(t, err, core.ErrConflict)

	require.NoError(t, st.UpdatePhone(ctx, b.ID, "13933334444"))
	got, err := st.FindByColumn(ctx, core.ColumnPhone, "13933334444")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	// the old value no longer resolves
	_, err = st.FindByColumn(ctx, core.ColumnPhone, "13911112222")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateWxUnionIDReindexes(t *testing.T) {
	st := New()
	ctx := context.Background()
	u := &core.User{Password: "x", WxUnionID: "u-old"}
	require.NoError(t, st.Insert(ctx, u))

	require.NoError(t, st.UpdateWxUnionID(ctx, u.ID, "u-new"))
	got, err := st.FindByColumn(ctx, core.ColumnWxUnionID, "u-new")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = st.FindByColumn(ctx, core.ColumnWxUnionID, "u-old")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdatePasswordByPhone(t *testing.T) {
	st := New()
	ctx := context.Background()
	u := &core.User{Password: "old", Phone: "13800000000"}
	require.NoError(t, st.Insert(ctx, u))

	require.NoError(t, st.UpdatePassword(ctx, "13800000000", "new"))
	got, err := st.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new", got.Password)

	err = st.UpdatePassword(ctx, "13999999999", "new")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestLatestSmsCodeOverwrite(t *testing.T) {
	st := New()
	ctx := context.Background()

	_, err := st.LatestSmsCode(ctx, "13800000000")
	require.ErrorIs(t, err, core.ErrNotFound)

	st.PutSmsCode(core.SmsCode{Phone: "13800000000", Code: "111111", CreateTime: time.Now().Add(-time.Minute)})
	st.PutSmsCode(core.SmsCode{Phone: "13800000000", Code: "222222", CreateTime: time.Now()})

	got, err := st.LatestSmsCode(ctx, "13800000000")
	require.NoError(t, err)
	require.Equal(t, "222222", got.Code)
}

// Returned records are copies; mutating them must not leak into the store.
func TestFindReturnsCopy(t *testing.T) {
	st := New()
	ctx := context.Background()
	u := &core.User{Password: "x", Phone: "13800000000"}
	require.NoError(t, st.Insert(ctx, u))

	got, err := st.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	got.Phone = "tampered"

	again, err := st.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "13800000000", again.Phone)
}
