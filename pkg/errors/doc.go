// Package errors provides coded errors shared across the gateway.
//
// A StructuredError carries an ErrorCode that survives fmt.Errorf wrapping,
// so callers branch on the code rather than on message text. The server
// package maps codes onto HTTP status codes.
//
//	err := errors.New(errors.ErrCodeNotFound, "engine executable not found").
//	    With("dir", baseDir).
//	    With("candidates", candidates)
//
//	if errors.HasCode(err, errors.ErrCodeNotFound) {
//	    // report engine unavailable
//	}
package errors
