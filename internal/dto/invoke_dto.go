package dto

// InvokeStatus is the closed set of stages a comparison channel reports.
type InvokeStatus string

const (
	InvokeStatusVerifying   InvokeStatus = "verifying"
	InvokeStatusLoading     InvokeStatus = "loading"
	InvokeStatusExtracting  InvokeStatus = "extracting"
	InvokeStatusRetrieving  InvokeStatus = "retrieving"
	InvokeStatusChecking    InvokeStatus = "checking"
	InvokeStatusSummarizing InvokeStatus = "summarizing"
	InvokeStatusQuerying    InvokeStatus = "querying"
	InvokeStatusSuccess     InvokeStatus = "success"
	InvokeStatusFailed      InvokeStatus = "failed"
)

// InvokeEvent is one JSON frame on a query or compare progress channel.
// Result carries the final answer or report only on success.
type InvokeEvent struct {
	Status  InvokeStatus `json:"status"`
	Message string       `json:"message"`
	Result  string       `json:"result,omitempty"`
	Code    string       `json:"code,omitempty"`
}
