// gen_soclog generates batches of synthetic .soclog event logs for testing.
//
// Usage:
//
//	go run ./tools/gen_soclog [flags]
//
// Flags:
//
//	--output-dir  where to write generated files (default: "./testdata/generated")
//	--count       number of files to generate (default: 20)
//	--min-turns   minimum rolled turns per game (default: 5)
//	--max-turns   maximum rolled turns per game (default: 60)
//	--seed        random seed; 0 = use current time (default: 0)
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/akvileja/soclog-tools/internal/genlog"
)

func main() {
	outputDir := flag.String("output-dir", "testdata/generated", "output directory")
	count := flag.Int("count", 20, "number of files to generate")
	minTurns := flag.Int("min-turns", 5, "minimum rolled turns per game")
	maxTurns := flag.Int("max-turns", 60, "maximum rolled turns per game")
	seed := flag.Int64("seed", 0, "random seed (0 = use current Unix time)")
	flag.Parse()

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "error: --count must be >= 1")
		os.Exit(1)
	}
	if *minTurns > *maxTurns || *minTurns < 1 {
		fmt.Fprintln(os.Stderr, "error: need 1 <= --min-turns <= --max-turns")
		os.Exit(1)
	}

	actualSeed := *seed
	if actualSeed == 0 {
		actualSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(actualSeed))
	fmt.Printf("seed: %d\n", actualSeed)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot create output dir %q: %v\n", *outputDir, err)
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("synthetic-%03d", i)
		log := genlog.Generate(genlog.Options{
			GameName: name,
			Players:  2 + rng.Intn(3),
			Turns:    *minTurns + rng.Intn(*maxTurns-*minTurns+1),
			Seed:     rng.Int63(),
		})

		path := filepath.Join(*outputDir, name+".soclog")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := log.Save(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		f.Close()
		fmt.Printf("[%3d/%d] %s  %d entries\n", i+1, *count, filepath.Base(path), len(log.Entries))
	}

	fmt.Printf("\ndone - %d files written to %s\n", *count, *outputDir)
}
