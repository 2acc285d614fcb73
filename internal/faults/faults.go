// Package faults defines the fault taxonomy for pipeline runs. Every fault
// is terminal for its run: services return it, and the websocket boundary
// translates it into one final failed event plus a close frame.
package faults

import "github.com/gofiber/websocket/v2"

type Kind string

const (
	KindIntegrity         Kind = "integrity_error"
	KindNotFound          Kind = "not_found"
	KindDigestMismatch    Kind = "digest_mismatch"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindNotEmbedded       Kind = "not_embedded"
	KindCredentialInvalid Kind = "credential_invalid"
	KindArtifactMissing   Kind = "artifact_missing"
	KindInternal          Kind = "internal_error"
)

type Fault struct {
	Kind    Kind
	Message string
}

func (f *Fault) Error() string {
	return string(f.Kind) + ": " + f.Message
}

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Integrity(message string) *Fault         { return New(KindIntegrity, message) }
func NotFound(message string) *Fault          { return New(KindNotFound, message) }
func DigestMismatch(message string) *Fault    { return New(KindDigestMismatch, message) }
func UnsupportedFormat(message string) *Fault { return New(KindUnsupportedFormat, message) }
func NotEmbedded(message string) *Fault       { return New(KindNotEmbedded, message) }
func CredentialInvalid(message string) *Fault { return New(KindCredentialInvalid, message) }
func ArtifactMissing(message string) *Fault   { return New(KindArtifactMissing, message) }
func Internal(message string) *Fault          { return New(KindInternal, message) }

// From coerces any error into a Fault, wrapping unexpected errors as internal.
func From(err error) *Fault {
	if f, ok := err.(*Fault); ok {
		return f
	}
	return Internal(err.Error())
}

// CloseCode maps a fault kind to the websocket close status sent with the
// terminal frame.
func CloseCode(kind Kind) int {
	switch kind {
	case KindNotFound, KindUnsupportedFormat, KindArtifactMissing:
		return websocket.CloseUnsupportedData
	case KindIntegrity, KindDigestMismatch, KindNotEmbedded, KindCredentialInvalid:
		return websocket.ClosePolicyViolation
	default:
		return websocket.CloseInternalServerErr
	}
}
