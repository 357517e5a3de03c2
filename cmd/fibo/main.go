package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/platformdemo/backend/config"
	"github.com/platformdemo/backend/services"
)

// Prints fibo(n) and how long it took, to pick a FIBO_NUMBER that loads the
// target platform the way you want.
func main() {
	n := flag.Int("n", -1, "term to compute (defaults to FIBO_NUMBER from the environment)")
	flag.Parse()

	if *n < 0 {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		*n = cfg.FiboNumber
	}

	start := time.Now()
	result := services.Fibo(*n)
	elapsed := time.Since(start)

	fmt.Printf("fibo(%d) = %d\n", *n, result)
	fmt.Printf("took %s\n", elapsed)
}
