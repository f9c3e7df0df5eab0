package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/alejoevilches/laabuelachela/internal/cache"
	"github.com/alejoevilches/laabuelachela/internal/health"
)

// cacheChecker сообщает degraded, пока последняя загрузка какой-либо партиции завершилась ошибкой.
type cacheChecker struct {
	cache *cache.OrderCache
}

func (c cacheChecker) Check(context.Context) health.Check {
	snapshot := c.cache.Snapshot()
	var failed []string
	for _, view := range []cache.PartitionView{snapshot.Pending, snapshot.Completed} {
		if view.State == cache.StateFailed {
			failed = append(failed, fmt.Sprintf("%s: %v", view.Status, view.Err))
		}
	}
	if len(failed) > 0 {
		return health.Check{Status: health.StatusDegraded, Message: strings.Join(failed, "; ")}
	}
	return health.Check{Status: health.StatusHealthy}
}
