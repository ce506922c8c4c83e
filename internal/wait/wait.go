// Package wait provides bounded sleep-poll loops used to turn single-shot
// checks into retries with a timeout. Both helpers block the calling
// goroutine; nothing is evaluated concurrently.
package wait

import "time"

// DefaultInterval is the pause between evaluations when callers do not
// specify one.
const DefaultInterval = 100 * time.Millisecond

// For repeatedly evaluates condition until it returns true or timeout
// elapses. It returns true as soon as the condition holds; once the elapsed
// time exceeds timeout it gives up without a further evaluation. A
// non-positive interval falls back to DefaultInterval.
func For(condition func() bool, timeout, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	for !condition() {
		if time.Since(start) > timeout {
			return false
		}
		time.Sleep(interval)
	}
	return true
}

// ToBeSet repeatedly evaluates produce until it reports a value or timeout
// elapses. The producer is evaluated once before the clock starts, so a
// zero timeout still gets exactly one evaluation. The second return value
// reports whether a value was produced in time.
func ToBeSet[T any](produce func() (T, bool), timeout, interval time.Duration) (T, bool) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	value, ok := produce()

	start := time.Now()
	for !ok {
		if time.Since(start) > timeout {
			break
		}
		time.Sleep(interval)
		value, ok = produce()
	}
	return value, ok
}
