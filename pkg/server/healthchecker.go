package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// CheckAll runs every checker and reports each result plus whether all passed.
func CheckAll(ctx context.Context, checkers map[string]HealthChecker) (map[string]bool, bool) {
	results := make(map[string]bool, len(checkers))
	healthy := true
	for name, hc := range checkers {
		ok := hc.Healthy(ctx)
		results[name] = ok
		healthy = healthy && ok
	}
	return results, healthy
}
