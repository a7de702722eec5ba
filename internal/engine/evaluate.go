package engine

import (
	"runtime"
	"sync"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
)

// evaluatePopulation scores every candidate and returns the fitness
// values aligned by index. Evaluation fans out across a worker pool;
// each worker writes only its own indices, so results are identical to
// a serial pass regardless of worker count. EvalWorkers 0 uses one
// worker per CPU, 1 forces a serial evaluation.
func (e *Engine) evaluatePopulation(population []*roster.Candidate) []float64 {
	fitnesses := make([]float64, len(population))

	workers := e.settings.EvalWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(population) {
		workers = len(population)
	}

	if workers <= 1 {
		for i, candidate := range population {
			fitnesses[i] = e.Fitness(candidate)
		}
		return fitnesses
	}

	jobs := make(chan int, len(population))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fitnesses[i] = e.Fitness(population[i])
			}
		}()
	}

	for i := range population {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return fitnesses
}
