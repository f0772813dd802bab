// Package httpsource implements acquire.Source against a JSON price service
// over HTTP.
//
// The service exposes two endpoints below the configured base URL:
//
//	GET {base}/products/{id}/prices   -> {"2024-01-01": "7.10", ...}
//	GET {base}/search?q={query}&page={n} -> {"product_ids": [1, 2, 3]}
//
// Requests that fail temporarily are retried with exponential backoff. A
// circuit breaker stops hammering the service after repeated temporary
// failures and refuses requests until the cooldown has passed.
//
// Use New to obtain an acquire.Source:
//
//	source, err := httpsource.New(acquire.NewConfig(acquire.WithBaseURL(url)))
//	if err != nil {
//	    return err
//	}
//	defer source.Close()
package httpsource
