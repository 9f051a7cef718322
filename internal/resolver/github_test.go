package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/store/core"
)

type fakeGithubClient struct {
	fakeExchanger
	profile      *provider.Profile
	profileErr   error
	profileCalls int
}

func (f *fakeGithubClient) FetchProfile(_ context.Context, _ string) (*provider.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func TestGithubCreatesAccount(t *testing.T) {
	st := newRecordingStore()
	client := &fakeGithubClient{
		fakeExchanger: fakeExchanger{tok: &provider.Token{AccessToken: "t1"}},
		profile:       &provider.Profile{ID: "42"},
	}
	r := &Github{Store: st, Client: client}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "42", u.GithubID)
	require.NotEmpty(t, u.Password)
	require.Equal(t, 1, st.inserts)
}

func TestGithubFindsExisting(t *testing.T) {
	st := newRecordingStore()
	existing := &core.User{Password: "{bcrypt}x", GithubID: "42"}
	require.NoError(t, st.Store.Insert(context.Background(), existing))

	client := &fakeGithubClient{
		fakeExchanger: fakeExchanger{tok: &provider.Token{AccessToken: "t1"}},
		profile:       &provider.Profile{ID: "42"},
	}
	r := &Github{Store: st, Client: client}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, existing.ID, u.ID)
	require.Zero(t, st.inserts)
}

// A token response without an access token is declined before any profile
// fetch goes out.
func TestGithubMissingTokenSkipsProfileFetch(t *testing.T) {
	st := newRecordingStore()
	client := &fakeGithubClient{fakeExchanger: fakeExchanger{tok: &provider.Token{}}}
	r := &Github{Store: st, Client: client}

	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrRejected)
	require.Zero(t, client.profileCalls)
	require.Zero(t, st.inserts)
}

func TestGithubProfileFailurePropagates(t *testing.T) {
	client := &fakeGithubClient{
		fakeExchanger: fakeExchanger{tok: &provider.Token{AccessToken: "t1"}},
		profileErr:    provider.ErrUnreachable,
	}
	r := &Github{Store: newRecordingStore(), Client: client}

	_, err := r.Resolve(context.Background(), "code", "")
	require.ErrorIs(t, err, provider.ErrUnreachable)
}

func TestGithubInsertRaceRecovers(t *testing.T) {
	winner := &core.User{Password: "{bcrypt}x", GithubID: "42"}
	st := &conflictingStore{Store: newRecordingStore().Store, winner: winner}

	client := &fakeGithubClient{
		fakeExchanger: fakeExchanger{tok: &provider.Token{AccessToken: "t1"}},
		profile:       &provider.Profile{ID: "42"},
	}
	r := &Github{Store: st, Client: client}

	u, err := r.Resolve(context.Background(), "code", "")
	require.NoError(t, err)
	require.Equal(t, "42", u.GithubID)
	require.Equal(t, winner.ID, u.ID)
}
