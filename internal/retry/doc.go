// Package retry runs a fallible operation until it succeeds or an attempt
// budget is exhausted, sleeping a linearly growing delay between attempts.
//
// # Usage
//
//	id, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
//	    return drive.Upload(ctx, params)
//	}, retry.WithAttempts(5))
//
// With the defaults an operation is tried three times, waiting 1s before the
// second attempt and 2s before the third. When every attempt fails the error
// of the last attempt is returned unmodified; WithFirstError selects the
// first failure instead.
package retry
