package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard payload.
const dashboardCachePattern = "dash:*"

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string)
}

// authorize consults the role policy once for op and returns FORBIDDEN on denial.
func authorize(actor models.Actor, op policy.Operation) error {
	if policy.Allows(actor.Role, op) {
		return nil
	}
	action := strings.ToLower(strings.ReplaceAll(string(op), "_", " "))
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %q is not allowed to %s", actor.Role, action))
}

// stamp returns now in UTC truncated to the precision PostgreSQL stores.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}

func invalidateDashboards(ctx context.Context, cache cacheInvalidator) {
	if cache != nil {
		cache.Invalidate(ctx, dashboardCachePattern)
	}
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
