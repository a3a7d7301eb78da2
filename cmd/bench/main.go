package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/notekeep"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	direct := flag.Bool("direct", false, "Use direct writes instead of temp file + rename")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "notekeep_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	targets := []struct {
		name string
		uri  string
		opts []notekeep.Option
	}{
		{"fs/json", filepath.Join(benchDir, "json"), []notekeep.Option{notekeep.WithDirectWrite(*direct)}},
		{"fs/yaml", filepath.Join(benchDir, "yaml"), []notekeep.Option{notekeep.WithCodec("yaml"), notekeep.WithDirectWrite(*direct)}},
		{"memory", "", []notekeep.Option{notekeep.WithAdapter(notekeep.AdapterMemory)}},
		{"sqlite", filepath.Join(benchDir, "notes.db"), []notekeep.Option{notekeep.WithAdapter(notekeep.AdapterSQLite)}},
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	for _, target := range targets {
		svc, err := notekeep.New(target.uri, append(target.opts, notekeep.WithLogger(logger))...)
		if err != nil {
			panic(err)
		}

		startWrite := time.Now()
		for i := 0; i < *count; i++ {
			note := notekeep.NewEntry("bench", fmt.Sprintf("Note %d", i), "This is a test note.")
			if _, err := svc.SaveNote(ctx, note); err != nil {
				panic(err)
			}
		}
		writeTook := time.Since(startWrite)

		startList := time.Now()
		list, err := svc.ListNotes(ctx)
		if err != nil {
			panic(err)
		}
		listTook := time.Since(startList)

		fmt.Printf("  %-8s write: %-14v list: %-14v (items: %d)\n", target.name, writeTook, listTook, len(list))

		if c, ok := svc.Store().(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	fmt.Printf("--------------------------------------------------\n")
}
