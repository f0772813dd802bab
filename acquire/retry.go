// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package acquire

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff calls fetch until it succeeds, fails with an error that
// is not ErrTemporary, or maxAttempts calls have been made. The wait before
// attempt n+1 is baseDelay<<(n-1), so a flaky price service is given
// progressively more room to recover. The error of the last attempt is
// returned when every attempt fails.
func RetryWithBackoff(ctx context.Context, fetch func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fetch(); err == nil {
			if attempt > 1 {
				slog.Debug("fetch succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !IsRetryable(err) || attempt == maxAttempts {
			return err
		}

		delay := baseDelay << (attempt - 1)
		slog.Debug("temporary fetch failure, backing off",
			"attempt", attempt, "maxAttempts", maxAttempts, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
