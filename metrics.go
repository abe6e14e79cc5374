package goSaaS

import (
	"sync/atomic"
)

// MetricID names one engine counter.
type MetricID uint16

const (
	MetricSignInSuccess MetricID = iota
	MetricSignInFailure
	MetricSignInRateLimited
	MetricSignUpSuccess
	MetricSignUpConflict
	MetricSignUpRateLimited
	MetricSignUpInvalidInvitation
	MetricSignOut
	MetricSessionCreated
	MetricSessionRefreshed
	MetricSessionDestroyed
	MetricSessionValid
	MetricSessionAbsent
	MetricSessionExpired
	MetricSessionTampered
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricPasswordRehashed
	MetricAccountUpdated
	MetricAccountDeleted
	MetricTeamMemberRemoved
	MetricTeamMemberInvited
	MetricCheckoutStarted
	MetricCheckoutCompleted
	MetricSubscriptionUpdated
	MetricActivityAppended
	MetricActivityAppendFailed
	metricIDCount
)

// Guard names and outcome labels reported through GuardOutcome.
var (
	guardNames    = [...]string{"validated_with_user", "with_team"}
	guardOutcomes = [...]string{"proceed", "validation_failed", "redirect", "fault"}
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil or disabled *Metrics ignores
// every call.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
	guards   [len(guardNames)][len(guardOutcomes)]paddedCounter
}

// GuardKey identifies one guard/outcome pair in a snapshot.
type GuardKey struct {
	Guard   string
	Outcome string
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
	Guards   map[GuardKey]uint64
}

// NewMetrics returns counters gated on cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// GuardOutcome counts one guarded call. Unknown labels are ignored.
func (m *Metrics) GuardOutcome(guard, outcome string) {
	if m == nil || !m.enabled {
		return
	}
	g, o := indexOf(guardNames[:], guard), indexOf(guardOutcomes[:], outcome)
	if g < 0 || o < 0 {
		return
	}
	atomic.AddUint64(&m.guards[g][o].value, 1)
}

// GuardValue returns the count for a guard/outcome pair.
func (m *Metrics) GuardValue(guard, outcome string) uint64 {
	if m == nil {
		return 0
	}
	g, o := indexOf(guardNames[:], guard), indexOf(guardOutcomes[:], outcome)
	if g < 0 || o < 0 {
		return 0
	}
	return atomic.LoadUint64(&m.guards[g][o].value)
}

// Snapshot copies every counter. A disabled Metrics yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
			Guards:   map[GuardKey]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
		Guards:   make(map[GuardKey]uint64, len(guardNames)*len(guardOutcomes)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	for g, guard := range guardNames {
		for o, outcome := range guardOutcomes {
			s.Guards[GuardKey{Guard: guard, Outcome: outcome}] = atomic.LoadUint64(&m.guards[g][o].value)
		}
	}
	return s
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
