// Package syncerr defines the failure kinds of a library sync run.
//
// Every error returned by the sync pipeline wraps exactly one of the sentinel
// kinds below, so callers can branch with errors.Is and print a stable label
// with KindOf. All kinds are terminal for the current run.
package syncerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedUnreachable means the feed request failed at the transport level
	// or returned an empty body.
	ErrFeedUnreachable = errors.New("feed unreachable")

	// ErrUnknownVersion means the feed or the archive endpoint answered 404.
	ErrUnknownVersion = errors.New("unknown version")

	// ErrFeedUnavailable means the feed or archive endpoint answered another status >= 400.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrMalformedFeedResponse means the feed body could not be decoded into a descriptor.
	ErrMalformedFeedResponse = errors.New("malformed feed response")

	// ErrDownloadTransportError means the archive stream broke while downloading.
	ErrDownloadTransportError = errors.New("download transport error")

	// ErrDestinationUnwritable means a file or directory under the library dir could not be written.
	ErrDestinationUnwritable = errors.New("destination unwritable")

	// ErrArchiveCorrupt means the archive could not be opened or an entry failed mid-read.
	ErrArchiveCorrupt = errors.New("archive corrupt")

	// ErrUserDeclined means the operator did not confirm the overwrite.
	ErrUserDeclined = errors.New("user declined")

	// ErrProjectNotFound means the working directory is not the top of a project.
	ErrProjectNotFound = errors.New("project not found")
)

var kinds = []error{
	ErrFeedUnreachable,
	ErrUnknownVersion,
	ErrFeedUnavailable,
	ErrMalformedFeedResponse,
	ErrDownloadTransportError,
	ErrDestinationUnwritable,
	ErrArchiveCorrupt,
	ErrUserDeclined,
	ErrProjectNotFound,
}

// New wraps err with kind and a short description of the failed step.
// err may be nil, in which case only kind and msg are kept.
func New(kind error, msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}

// KindOf returns the first sentinel kind wrapped by err, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
