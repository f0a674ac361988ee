/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the error taxonomy of spec.md §7: a small set of
  sentinel errors (in the style of codec/h264/h264dec's package-level
  errFoo vars) plus a Kind classification used to decide fatal-vs-warn
  handling and to key the warning accumulator in warnings.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package iaberr provides the shared error taxonomy and warning
// accumulator for the codec, DLC sub-codec and renderer.
package iaberr

import "github.com/pkg/errors"

// Kind classifies an error for fatal-vs-warn handling per spec.md §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindIOShort
	KindBadPlex
	KindSizeMismatch
	KindInvalidVersion
	KindUnknownElement
	KindReservedPrefix
	KindInvalidFrameRate
	KindInvalidSampleRate
	KindFrameStructure
	KindDLCDecode
	KindRendererConfig
	KindNoVBAPPatch
	KindNoLFEForBedLFE
	KindEmptyZone
	KindCRCMismatch
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindIOShort:
		return "IOShort"
	case KindBadPlex:
		return "BadPlex"
	case KindSizeMismatch:
		return "SizeMismatch"
	case KindInvalidVersion:
		return "InvalidVersion"
	case KindUnknownElement:
		return "UnknownElement"
	case KindReservedPrefix:
		return "ReservedPrefix"
	case KindInvalidFrameRate:
		return "InvalidFrameRate"
	case KindInvalidSampleRate:
		return "InvalidSampleRate"
	case KindFrameStructure:
		return "FrameStructure"
	case KindDLCDecode:
		return "DLCDecode"
	case KindRendererConfig:
		return "RendererConfig"
	case KindNoVBAPPatch:
		return "NoVBAPPatch"
	case KindNoLFEForBedLFE:
		return "NoLFEForBedLFE"
	case KindEmptyZone:
		return "EmptyZone"
	case KindCRCMismatch:
		return "CRCMismatch"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Fatal reports whether an error of this kind must abort the
// operation in progress (parse, decode, render), per spec.md §7's
// fatal/warn split. Some kinds are fatal only in certain modes (e.g.
// InvalidVersion in strict mode); callers that have such a mode
// should not rely on this default and should decide explicitly.
func (k Kind) Fatal() bool {
	switch k {
	case KindIOShort, KindBadPlex, KindReservedPrefix:
		return true
	default:
		return false
	}
}

// Error is a taxonomy-tagged error: a Kind plus a wrapped cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// New returns a new *Error of the given kind, wrapping msg.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, cause: errors.New(msg)}
}

// Wrap returns a new *Error of the given kind, wrapping err with
// additional context (via github.com/pkg/errors, matching codec/pcm
// and h264dec's use of it for wrapped errors).
func Wrap(k Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, cause: errors.Wrap(err, msg)}
}

// Sentinel errors for conditions that do not need per-call context.
// Package plex declares its own sentinel (plex.ErrBadPlex); this
// package doesn't duplicate it.
var (
	ErrReservedGainPrefix = errors.New("iaberr: reserved gain prefix")
	ErrFrameRateUnknown   = errors.New("iaberr: unrecognised frame rate")
	ErrSampleRateUnknown  = errors.New("iaberr: unrecognised sample rate")
)

// As reports whether err (or something it wraps) is an *Error of the
// given kind.
func As(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}
