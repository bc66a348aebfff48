package protocol

import "errors"

var (
	ErrTruncated      = errors.New("protocol: truncated data")
	ErrTrailingBytes  = errors.New("protocol: payload not fully consumed")
	ErrVarIntTooLong  = errors.New("protocol: varint exceeds five bytes")
	ErrStringTooLong  = errors.New("protocol: string exceeds declared cap")
	ErrInvalidString  = errors.New("protocol: invalid string encoding")
	ErrBlobTooLarge   = errors.New("protocol: blob exceeds declared cap")
	ErrInvalidBool    = errors.New("protocol: invalid bool value")
	ErrBadBatchSize   = errors.New("protocol: batch size out of range")
	ErrUnknownMessage = errors.New("protocol: unidentified message index")
)
