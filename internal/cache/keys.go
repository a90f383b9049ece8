package cache

import "fmt"

// DatasetClassesKey caches the class-name-to-count listing of the dataset
// catalog. Poll-style status reads are never cached; this is the only
// read-through cache in the service.
func DatasetClassesKey() string {
	return "dataset:classes"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
