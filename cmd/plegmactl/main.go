package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"plegma/internal/storage"
	api "plegma/pkg/plegma"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "scapes":
		return runScapes(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: plegmactl <init|train|runs|fitness|export|scapes> [flags]", msg)
}

func newClient(ctx context.Context, storeKind, dbPath string) (*api.Client, error) {
	client, err := api.New(api.Options{StoreKind: storeKind, DBPath: dbPath})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	scapeName := fs.String("scape", "sticks", "scape name")
	population := fs.Int("pop", 50, "root team count")
	generations := fs.Int("gens", 100, "generation count")
	iterations := fs.Int("iters", 5, "evaluation episodes per root per generation")
	maxActions := fs.Int("max-actions", 500, "action budget per episode")
	workers := fs.Int("workers", 4, "evaluation worker count")
	agents := fs.Int("agents", 0, "roots per adversarial evaluation (0 uses the scape default)")
	ratio := fs.Float64("ratio", 0.5, "fraction of roots deleted each generation")
	archiveSize := fs.Int("archive", 64, "bid archive capacity (0 disables)")
	validation := fs.Bool("validation", false, "re-evaluate each generation's best root in validation mode")
	seed := fs.Int64("seed", 1, "rng seed")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	quiet := fs.Bool("quiet", false, "suppress per-generation output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	started := time.Now()
	summary, err := client.Run(ctx, api.RunRequest{
		Scape:       *scapeName,
		Population:  *population,
		Generations: *generations,
		Iterations:  *iterations,
		MaxActions:  *maxActions,
		Workers:     *workers,
		Agents:      *agents,
		Ratio:       *ratio,
		ArchiveSize: *archiveSize,
		Validation:  *validation,
		Seed:        *seed,
	})
	if err != nil {
		return err
	}

	if !*quiet {
		for i, best := range summary.BestByGeneration {
			fmt.Printf("generation=%d best_score=%.6f\n", i+1, best)
		}
	}
	fmt.Printf("run completed run_id=%s scape=%s generations=%s elapsed=%s\n",
		summary.RunID,
		summary.Scape,
		humanize.Comma(int64(len(summary.BestByGeneration))),
		time.Since(started).Round(time.Millisecond),
	)
	fmt.Printf("best_score=%.6f final_graph_id=%s\n", summary.BestScore, summary.FinalGraphID)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, item := range runs {
		created, age := item.CreatedAtUTC, ""
		if at, err := time.Parse(time.RFC3339, item.CreatedAtUTC); err == nil {
			age = humanize.Time(at)
		}
		fmt.Printf("run_id=%s created_at=%s (%s) scape=%s seed=%d gens=%d best_score=%.6f\n",
			item.RunID,
			created,
			age,
			item.Scape,
			item.Seed,
			item.Generations,
			item.BestScore,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 0, "max generations to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, api.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_score=%.6f\n", i+1, best)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run's best graph")
	outPath := fs.String("out", "", "output DOT file path (default stdout)")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, api.ExportRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}

	if *outPath == "" {
		fmt.Print(exported.Dot)
		return nil
	}
	if err := os.WriteFile(*outPath, []byte(exported.Dot), 0o644); err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s graph_id=%s size=%s path=%s\n",
		exported.RunID,
		exported.GraphID,
		humanize.Bytes(uint64(len(exported.Dot))),
		*outPath,
	)
	return nil
}

func runScapes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scapes", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit scape list as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plegma.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	scapes, err := client.Scapes(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scapes)
	}

	for _, item := range scapes {
		fmt.Printf("scape=%s best_score=%.6f description=%s\n", item.Name, item.BestScore, item.Description)
	}
	return nil
}
