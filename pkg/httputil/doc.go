// Package httputil provides retry with exponential backoff for calls to
// remote Maven repositories.
//
// Transient failures are marked with [Retryable]; [Retry] re-runs the call
// for those only and gives up immediately on anything else:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Defaults: 3 attempts, 1 second initial delay, doubling per attempt.
package httputil
