package application

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IDSource yields the random part of artifact names.
type IDSource interface {
	NewSuffix() string
}

// UUIDSource takes the first 8 hex characters of a random UUID.
type UUIDSource struct{}

func (UUIDSource) NewSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Metrics receives dispatch and job outcomes. A nil Metrics is allowed
// wherever a service takes one.
type Metrics interface {
	DispatchFailed()
	JobStarted()
	JobFinished(status reports.Status)
	JobFailed(phase reporterrors.Phase)
}
