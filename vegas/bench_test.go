package vegas_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/vegas"
)

func benchmarkIteration(b *testing.B, dim, calls, workers int) {
	var o = vegas.DefaultOptions()
	o.Workers = workers
	o.EventsLimit = calls / 4
	var f, err = vegas.New(dim, calls, o)
	if err != nil {
		b.Fatal(err)
	}
	if err = f.Compile(integrand.Lepage(dim, 0.1)); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = f.Run(context.Background(), 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIteration_D4_1e5_Sequential(b *testing.B) { benchmarkIteration(b, 4, 100_000, 1) }
func BenchmarkIteration_D4_1e5_Parallel(b *testing.B)   { benchmarkIteration(b, 4, 100_000, 4) }
func BenchmarkIteration_D8_1e5_Parallel(b *testing.B)   { benchmarkIteration(b, 8, 100_000, 4) }
