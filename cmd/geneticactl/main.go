package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"genetica/pkg/genetica"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "compare":
		return runCompare(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "operators":
		return runOperators(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	configPath := fs.String("config", "", "run config file (yaml or json)")
	metricsAddr := fs.String("metrics-addr", "", "serve prometheus metrics on this address while running")
	jsonOut := fs.Bool("json", false, "emit the run summary as JSON")
	var flagReq genetica.RunRequest
	bindRunFlags(fs, &flagReq)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := resolveRunRequest(fs, *configPath)
	if err != nil {
		return err
	}

	metrics, err := startMetricsServer(*metricsAddr)
	if err != nil {
		return err
	}
	defer metrics.shutdown()

	client, err := common.newClient(ctx, metrics.registerer())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(summary)
	}
	printSummary(summary)
	fmt.Printf("best_genes=%s\n", strings.Join(summary.BestGenes, ","))
	return nil
}

func runCompare(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("compare", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	configPath := fs.String("config", "", "run config file (yaml or json)")
	executors := fs.StringSlice("executors", []string{"linear", "parallel", "task-group"}, "task executors to compare")
	maxConcurrent := fs.Int("max-concurrent", 0, "max runs evolving at once (0 = all)")
	jsonOut := fs.Bool("json", false, "emit the summaries as JSON")
	var flagReq genetica.RunRequest
	bindRunFlags(fs, &flagReq)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(*executors) == 0 {
		return errors.New("at least one executor is required")
	}

	req, err := resolveRunRequest(fs, *configPath)
	if err != nil {
		return err
	}

	common.maxConcurrent = *maxConcurrent
	client, err := common.newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summaries, err := client.Compare(ctx, req, *executors...)
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(summaries)
	}
	for i, summary := range summaries {
		fmt.Printf("rank=%d ", i+1)
		printSummary(summary)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("runs", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, genetica.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("run_id=%s name=%s state=%s generations=%s best_fitness=%s time_evolving=%s created=%s\n",
			r.ID,
			r.Name,
			r.State,
			humanize.Comma(int64(r.Generations)),
			humanize.FtoaWithDigits(r.BestFitness, 4),
			r.TimeEvolving,
			humanize.Time(r.CreatedAt),
		)
	}
	return nil
}

func runOperators(_ context.Context, args []string) error {
	fs := pflag.NewFlagSet("operators", pflag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit operators as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	operators := genetica.Operators()
	if *jsonOut {
		return writeJSON(operators)
	}
	families := make([]string, 0, len(operators))
	for family := range operators {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		fmt.Printf("%s: %s\n", family, strings.Join(operators[family], ", "))
	}
	return nil
}

func printSummary(summary genetica.RunSummary) {
	fmt.Printf("run_id=%s name=%s state=%s generations=%s best_fitness=%s time_evolving=%s\n",
		summary.RunID,
		summary.Name,
		summary.State,
		humanize.Comma(int64(summary.Generations)),
		humanize.FtoaWithDigits(summary.BestFitness, 4),
		summary.TimeEvolving,
	)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: geneticactl <run|compare|runs|operators> [flags]", msg)
}
