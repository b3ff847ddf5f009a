package uploader

import "errors"

// The upload error taxonomy. Every failure an upload can return wraps
// exactly one of these sentinels; discriminate with errors.Is.
var (
	// ErrInvalidArgument indicates a missing required callback.
	ErrInvalidArgument = errors.New("uploader: invalid argument")

	// ErrNoImage indicates the coredump partition holds no image.
	ErrNoImage = errors.New("uploader: no coredump image")

	// ErrPlatform indicates an underlying image-locate or flash-read failure.
	ErrPlatform = errors.New("uploader: platform failure")

	// ErrOutOfMemory indicates the session's buffer budget was exceeded.
	ErrOutOfMemory = errors.New("uploader: out of memory")

	// ErrStartFailed indicates the start callback returned an error.
	// The stream loop, end callback, and erase are all skipped.
	ErrStartFailed = errors.New("uploader: start callback failed")

	// ErrWriteFailed indicates the write callback returned an error.
	ErrWriteFailed = errors.New("uploader: write callback failed")

	// ErrEndFailed indicates the end callback returned an error on an
	// otherwise successful session.
	ErrEndFailed = errors.New("uploader: end callback failed")

	// ErrCancelled indicates the progress callback requested a cooperative
	// cancellation.
	ErrCancelled = errors.New("uploader: cancelled by progress callback")

	// ErrEncodeFailed indicates the Base64 transform failed.
	ErrEncodeFailed = errors.New("uploader: base64 encode failed")

	// ErrEraseFailed indicates the image was delivered but the on-flash
	// commit did not happen. The next boot will re-send the image.
	ErrEraseFailed = errors.New("uploader: image erase failed")
)
