package ports

import "time"

// Metrics records authentication outcomes and request traffic
type Metrics interface {
	RecordNonceIssued()
	RecordLogin(result string)
	RecordGateDecision(decision string)
	RecordSocialLookup(cacheHit bool)
	RecordHTTPRequest(route string, status int, duration time.Duration)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordNonceIssued()                           {}
func (NopMetrics) RecordLogin(string)                           {}
func (NopMetrics) RecordGateDecision(string)                    {}
func (NopMetrics) RecordSocialLookup(bool)                      {}
func (NopMetrics) RecordHTTPRequest(string, int, time.Duration) {}
