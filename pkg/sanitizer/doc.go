// Package sanitizer normalizes user supplied values into stable keys.
//
// Normalization is idempotent and never fails: input that cannot be parsed
// falls back to a best effort form instead of an error.
package sanitizer
