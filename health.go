package anvil

import (
	"context"
	"sync"
	"time"
)

type HealthStatus string

const (
	HealthStatusUp      HealthStatus = "up"
	HealthStatusDown    HealthStatus = "down"
	HealthStatusUnknown HealthStatus = "unknown"
)

type HealthReport struct {
	Name    string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// Live fails with the first HealthChecker that reports an error, in
// registration order.
func (c *Container) Live(ctx context.Context) error {
	return firstDown(c.Health(ctx))
}

// Ready fails with the first ReadinessChecker that reports an error, in
// registration order.
func (c *Container) Ready(ctx context.Context) error {
	return firstDown(c.Readiness(ctx))
}

// Health polls every registered HealthChecker concurrently. Reports keep
// registration order.
func (c *Container) Health(ctx context.Context) []HealthReport {
	return c.poll(ctx, func(instance any) func(context.Context) error {
		if hc, ok := instance.(HealthChecker); ok {
			return hc.HealthCheck
		}
		return nil
	})
}

// Readiness polls every registered ReadinessChecker concurrently.
func (c *Container) Readiness(ctx context.Context) []HealthReport {
	return c.poll(ctx, func(instance any) func(context.Context) error {
		if rc, ok := instance.(ReadinessChecker); ok {
			return rc.ReadinessCheck
		}
		return nil
	})
}

func (c *Container) poll(ctx context.Context, checkOf func(any) func(context.Context) error) []HealthReport {
	type job struct {
		name  string
		check func(context.Context) error
	}

	var jobs []job
	for _, entry := range c.internal.Entries() {
		if check := checkOf(entry.Instance); check != nil {
			jobs = append(jobs, job{name: KeyName(entry.Key), check: check})
		}
	}

	reports := make([]HealthReport, len(jobs))
	var wg sync.WaitGroup

	for i, j := range jobs {
		wg.Go(func() {
			start := time.Now()
			err := j.check(ctx)

			report := HealthReport{
				Name:    j.name,
				Status:  HealthStatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				report.Status = HealthStatusDown
				report.Error = err
			}
			reports[i] = report
		})
	}

	wg.Wait()
	return reports
}

func firstDown(reports []HealthReport) error {
	for _, r := range reports {
		if r.Status == HealthStatusDown {
			return errHealthCheckFailed(r.Name, r.Error)
		}
	}
	return nil
}
