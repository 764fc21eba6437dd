package anvil

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

func BenchmarkBootstrap_10Providers(b *testing.B) {
	benchmarkBootstrap(b, 10, 0)
}

func BenchmarkBootstrap_50Providers(b *testing.B) {
	benchmarkBootstrap(b, 50, 0)
}

func BenchmarkBootstrap_100Providers(b *testing.B) {
	benchmarkBootstrap(b, 100, 0)
}

func BenchmarkBootstrapWithWork_10Providers(b *testing.B) {
	benchmarkBootstrap(b, 10, time.Millisecond)
}

func BenchmarkBootstrap_Chain5(b *testing.B) {
	benchmarkChain(b, 5)
}

func BenchmarkBootstrap_Chain20(b *testing.B) {
	benchmarkChain(b, 20)
}

func BenchmarkBootstrap_NestedModules10(b *testing.B) {
	benchmarkNestedModules(b, 10)
}

func BenchmarkClose_50Services(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		b.StopTimer()
		c := New(WithLogger(discardLogger()))
		for j := range 50 {
			_, _ = c.Set(&benchService{id: j}, fmt.Sprintf("svc_%d", j))
		}
		b.StartTimer()
		_ = c.Close()
	}
}

func BenchmarkResolve_Registered(b *testing.B) {
	c := New(WithLogger(discardLogger()))
	_, _ = c.Set(benchServiceClass)

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Invoke[*benchService](c)
	}
}

func BenchmarkConstruct_WithDependencies(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		c := New(WithLogger(discardLogger()))
		_, _ = c.Set(benchAggregatorClass)
	}
}

type benchService struct {
	id int
}

type benchAggregator struct {
	svc *benchService
}

var (
	benchServiceClass    = Injectable(func() *benchService { return &benchService{id: 1} })
	benchAggregatorClass = Injectable(func(s *benchService) *benchAggregator { return &benchAggregator{svc: s} })
)

func benchmarkBootstrap(b *testing.B, count int, work time.Duration) {
	b.ReportAllocs()

	for b.Loop() {
		b.StopTimer()
		c := New(WithLogger(discardLogger()))
		m := NewModule("bench")
		for j := range count {
			m.Provide(
				&Provider{
					Provide: fmt.Sprintf("svc_%d", j),
					UseFactory: func(ctx context.Context, deps ...any) (any, error) {
						if work > 0 {
							time.Sleep(work)
						}
						return &benchService{id: j}, nil
					},
				},
			)
		}
		b.StartTimer()
		_ = c.Bootstrap(context.Background(), m)
	}
}

func benchmarkChain(b *testing.B, depth int) {
	b.ReportAllocs()

	for b.Loop() {
		b.StopTimer()
		c := New(WithLogger(discardLogger()))
		m := NewModule("chain")
		prev := ""
		for j := range depth {
			key := fmt.Sprintf("chain_%d", j)
			var deps []any
			if prev != "" {
				deps = append(deps, prev)
			}
			m.Provide(
				&Provider{
					Provide: key,
					Deps:    deps,
					UseFactory: func(ctx context.Context, deps ...any) (any, error) {
						return &benchService{id: j}, nil
					},
				},
			)
			prev = key
		}
		b.StartTimer()
		_ = c.Bootstrap(context.Background(), m)
	}
}

func benchmarkNestedModules(b *testing.B, depth int) {
	b.ReportAllocs()

	for b.Loop() {
		b.StopTimer()
		c := New(WithLogger(discardLogger()))
		root := NewModule("level_0").Bootstrap(benchAggregatorClass)
		current := root
		for j := 1; j < depth; j++ {
			next := NewModule(fmt.Sprintf("level_%d", j)).
				Provide(&Provider{Provide: fmt.Sprintf("value_%d", j), UseValue: j})
			current.Import(next)
			current = next
		}
		b.StartTimer()
		_ = c.Bootstrap(context.Background(), root)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
