package interfaces

import "errors"

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")

	// ErrReadAfterWrite is returned by a transaction handle when a read is issued
	// after the first write of the same transaction.
	ErrReadAfterWrite = errors.New("read issued after write in transaction")

	// ErrTxAborted means the store gave up on a transaction after exhausting its
	// conflict retry limit.
	ErrTxAborted = errors.New("transaction aborted after retries")
)
