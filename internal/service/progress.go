package service

import "errors"

// ErrChannelClosed signals that the client-facing progress channel died
// mid-run. The run stops without rollback; nothing further is sent. The next
// run's artifact reconciliation repairs whatever was left half-done.
var ErrChannelClosed = errors.New("progress channel closed")

// ProgressSink is one pipeline run's ordered notification stream. Send is
// called before the corresponding stage's side effects begin, so a client
// never learns about a stage after it already finished.
type ProgressSink interface {
	Send(event any) error
}
