// Package events carries change notifications out of the clinic core.
//
// Every successful mutation of clinic state produces one ChangeEvent. The
// core emits events after it has released its locks, so handlers such as the
// snapshot writer and the metrics recorder may read clinic state again or
// block on I/O without stalling other operations.
package events
