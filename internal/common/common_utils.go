package common

import (
	"fmt"
	"time"

	"uav-logchat/flightdesk/internal/constants"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// CacheKey namespaces an id under a cache prefix.
func CacheKey(prefix constants.CachePrefix, id string) string {
	return string(prefix) + id
}
