package resolver

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/store/core"
)

// insertOrRecover inserts u, and if the store reports a unique-constraint
// conflict, retries once by re-reading the linking column. Two concurrent
// resolutions of the same new external identifier then both end up on the
// record the winner created.
func insertOrRecover(ctx context.Context, st core.Store, u *core.User, column, value string) (*core.User, error) {
	err := st.Insert(ctx, u)
	if err == nil {
		return u, nil
	}
	if !core.IsConflict(err) {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	logger.From(ctx).Debug("insert lost race, re-reading",
		logger.Component("resolver"),
		logger.String("column", column),
	)
	existing, rerr := st.FindByColumn(ctx, column, value)
	if rerr != nil {
		return nil, fmt.Errorf("%w: insert conflicted and re-read failed: %v", ErrConflict, rerr)
	}
	return existing, nil
}
