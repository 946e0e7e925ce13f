// Command paracas downloads historical Dukascopy tick data, optionally
// aggregates it into OHLCV bars, and manages long-running downloads as
// background jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"paracas/internal/aggregate"
	"paracas/internal/daemon"
	"paracas/internal/dateutil"
	"paracas/internal/estimate"
	"paracas/internal/fetch"
	"paracas/internal/format"
	"paracas/internal/instruments"
	"paracas/internal/jobs"
	"paracas/internal/logging"
	"paracas/internal/ticks"
)

// TableWriter renders a simple bordered text table, one column width pass
// computed from the data before anything is printed.
type TableWriter struct {
	headers []string
	rows    [][]string
	writer  *os.File
}

func NewTableWriter(writer *os.File) *TableWriter {
	return &TableWriter{writer: writer}
}

func (t *TableWriter) SetHeader(headers []string) { t.headers = headers }

func (t *TableWriter) Append(row []string) { t.rows = append(t.rows, row) }

func (t *TableWriter) Render() {
	colWidths := make([]int, len(t.headers))
	for i, h := range t.headers {
		colWidths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	printRow := func(row []string) {
		fmt.Fprint(t.writer, "| ")
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(t.writer, "%-*s | ", colWidths[i], cell)
		}
		fmt.Fprintln(t.writer)
	}

	printRow(t.headers)
	fmt.Fprint(t.writer, "| ")
	for _, w := range colWidths {
		fmt.Fprint(t.writer, strings.Repeat("-", w), " | ")
	}
	fmt.Fprintln(t.writer)
	for _, row := range t.rows {
		printRow(row)
	}
}

// Command is one top-level subcommand.
type Command struct {
	usage       string
	description string
	execute     func(args []string) error
}

var commands map[string]Command

func main() {
	commands = map[string]Command{
		"download": {"download <instrument> [flags]", "Download tick or OHLCV data", cmdDownload},
		"list":     {"list [--category <cat>]", "List available instruments", cmdList},
		"info":     {"info <instrument>", "Show instrument details", cmdInfo},
		"job":      {"job <pause|resume|kill|clean> [job-id] [flags]", "Manage background jobs", cmdJob},
		"status":   {"status [job-id] [flags]", "Show background job status", cmdStatus},
	}

	if len(os.Args) > 1 && os.Args[1] == jobs.DaemonRunArg {
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "paracas: --daemon-run requires a job id")
			os.Exit(2)
		}
		os.Exit(runDaemon(os.Args[2]))
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "paracas: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if err := cmd.execute(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "paracas: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: paracas <command> [arguments]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(os.Stderr, "  %-40s %s\n", cmd.usage, cmd.description)
	}
}

func defaultStore() (*jobs.StateStore, error) {
	return jobs.NewStateStoreDefault()
}

func runDaemon(jobIDStr string) int {
	log := logging.Configure(false)

	id, err := uuid.Parse(jobIDStr)
	if err != nil {
		log.WithError(err).Error("invalid job id")
		return 1
	}
	store, err := defaultStore()
	if err != nil {
		log.WithError(err).Error("failed to initialize state store")
		return 1
	}

	status, err := daemon.Run(context.Background(), store, id)
	if err != nil {
		log.WithError(err).Error("daemon run failed")
		return 1
	}
	if status != jobs.StatusCompleted {
		return 1
	}
	return 0
}

func cmdDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	start := fs.String("start", "", "start date YYYY-MM-DD (default: instrument's earliest data)")
	end := fs.String("end", "", "end date YYYY-MM-DD (default: today)")
	output := fs.String("output", "", "output file path (default: <instrument>.<format>)")
	outputFormat := fs.String("format", "csv", "output format: csv, json, ndjson")
	timeframe := fs.String("timeframe", "tick", "aggregation timeframe, or tick for raw ticks")
	concurrency := fs.Int("concurrency", 32, "maximum concurrent hour downloads")
	background := fs.Bool("background", false, "run as a detached background job")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("download requires an instrument id")
	}
	instrumentID := fs.Arg(0)

	instrument, ok := instruments.Global().Get(instrumentID)
	if !ok {
		return fmt.Errorf("unknown instrument: %s", instrumentID)
	}

	startDate, err := resolveStart(*start, instrument)
	if err != nil {
		return err
	}
	endDate, err := resolveEnd(*end)
	if err != nil {
		return err
	}
	dateRange, err := dateutil.NewDateRange(startDate, endDate)
	if err != nil {
		return err
	}

	tf, err := aggregate.ParseTimeframe(*timeframe)
	if err != nil {
		return err
	}
	formatter, err := format.Parse(*outputFormat)
	if err != nil {
		return err
	}
	outputPath := *output
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s.%s", instrumentID, formatter.Extension())
	}

	printEstimate(instrument, dateRange)

	if *background {
		return spawnBackgroundDownload(instrument, dateRange, outputPath, *outputFormat, *timeframe, *concurrency)
	}

	return runForegroundDownload(instrument, dateRange, outputPath, formatter, tf, *concurrency)
}

// printEstimate prints a rough pre-download projection so the user can
// gauge size and duration before a potentially long-running fetch starts.
func printEstimate(instrument instruments.Instrument, r dateutil.DateRange) {
	est := estimate.DefaultEstimator().EstimateSingle(instrument, r)
	fmt.Printf("Estimate: ~%s compressed, ~%s ticks, ~%s (confidence: %s)\n",
		estimate.FormatBytes(est.EstimatedCompressedBytes),
		estimate.FormatTicks(est.EstimatedTicks),
		estimate.FormatDuration(est.EstimatedDuration),
		est.Confidence)
}

func resolveStart(s string, instrument instruments.Instrument) (time.Time, error) {
	if s != "" {
		return time.Parse("2006-01-02", s)
	}
	if instrument.StartTickDate != nil {
		return *instrument.StartTickDate, nil
	}
	return time.Date(2003, 5, 5, 0, 0, 0, 0, time.UTC), nil
}

func resolveEnd(s string) (time.Time, error) {
	if s != "" {
		return time.Parse("2006-01-02", s)
	}
	return time.Now().UTC(), nil
}

func runForegroundDownload(instrument instruments.Instrument, r dateutil.DateRange, outputPath string, formatter format.Formatter, tf aggregate.Timeframe, concurrency int) error {
	cfg := fetch.DefaultClientConfig()
	cfg.Concurrency = concurrency
	client := fetch.NewDownloadClient(cfg)

	stream := fetch.TickStreamResilient(context.Background(), client, instrument, r)

	var collected []ticks.Tick
	skippedHours := 0
	for batch := range stream {
		if batch.HadError {
			skippedHours++
		}
		collected = append(collected, batch.Ticks...)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	sort.Slice(collected, func(i, j int) bool { return collected[i].Timestamp.Before(collected[j].Timestamp) })

	if tf.IsTick() {
		if err := formatter.WriteTicks(collected, f); err != nil {
			return err
		}
	} else {
		bars := aggregate.AggregateTicks(collected, tf)
		if err := formatter.WriteOHLCV(bars, f); err != nil {
			return err
		}
	}

	if skippedHours > 0 {
		fmt.Printf("Downloaded %d ticks (%d hours skipped due to errors)\n", len(collected), skippedHours)
	} else {
		fmt.Printf("Downloaded %d ticks\n", len(collected))
	}
	fmt.Printf("Output written to: %s\n", outputPath)
	return nil
}

func spawnBackgroundDownload(instrument instruments.Instrument, r dateutil.DateRange, outputPath, formatName, timeframeName string, concurrency int) error {
	store, err := defaultStore()
	if err != nil {
		return err
	}
	task := jobs.NewInstrumentTask(instrument.ID, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), outputPath, formatName, timeframeName, uint32(r.TotalHours()))
	job := jobs.NewDownloadJob([]*jobs.InstrumentTask{task}, concurrency)
	if err := store.Save(job); err != nil {
		return err
	}

	spawner, err := jobs.NewDaemonSpawner(store)
	if err != nil {
		return err
	}
	if err := spawner.Spawn(job); err != nil {
		return err
	}

	fmt.Printf("Started background job %s (pid %d)\n", job.ID, *job.PID)
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	category := fs.String("category", "", "filter by category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	all := instruments.Global().All()
	var filtered []instruments.Instrument
	for _, inst := range all {
		if *category == "" || strings.EqualFold(string(inst.Category), *category) {
			filtered = append(filtered, inst)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	if len(filtered) == 0 {
		fmt.Println("No instruments found.")
		return nil
	}

	table := NewTableWriter(os.Stdout)
	table.SetHeader([]string{"ID", "NAME", "CATEGORY"})
	for _, inst := range filtered {
		table.Append([]string{inst.ID, inst.Name, string(inst.Category)})
	}
	table.Render()
	fmt.Printf("\nTotal: %d instruments\n", len(filtered))
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info requires an instrument id")
	}
	inst, ok := instruments.Global().Get(args[0])
	if !ok {
		return fmt.Errorf("unknown instrument: %s", args[0])
	}

	fmt.Printf("Instrument: %s\n", inst.Name)
	fmt.Printf("ID:         %s\n", inst.ID)
	fmt.Printf("Category:   %s\n", inst.Category)
	fmt.Printf("Description: %s\n", inst.Description)
	fmt.Printf("Decimal Factor: %d\n", inst.DecimalFactor)
	if inst.StartTickDate != nil {
		fmt.Printf("Data Available From: %s\n", inst.StartTickDate.Format("2006-01-02"))
	}
	return nil
}

func cmdJob(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("job requires an action: pause, resume, kill, clean")
	}
	action := args[0]
	rest := args[1:]

	store, err := defaultStore()
	if err != nil {
		return err
	}
	spawner, err := jobs.NewDaemonSpawner(store)
	if err != nil {
		return err
	}
	controller := jobs.NewController(store, spawner)

	if action == "clean" {
		fs := flag.NewFlagSet("job clean", flag.ExitOnError)
		all := fs.Bool("all", false, "clean every finished job regardless of age")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		result, err := controller.Clean(*all)
		if err != nil {
			return err
		}
		if len(result.Cleaned) == 0 {
			fmt.Println("No jobs to clean.")
		} else {
			fmt.Printf("Cleaned %d job(s).\n", len(result.Cleaned))
		}
		return nil
	}

	if len(rest) < 1 {
		return fmt.Errorf("job %s requires a job id", action)
	}
	id, err := uuid.Parse(rest[0])
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}

	switch action {
	case "pause":
		if err := controller.Pause(id); err != nil {
			return err
		}
		fmt.Printf("Job %s paused.\n", id)
	case "resume":
		if err := controller.Resume(id); err != nil {
			return err
		}
		fmt.Printf("Job %s resumed.\n", id)
	case "kill":
		if err := controller.Kill(id); err != nil {
			return err
		}
		fmt.Printf("Job %s killed.\n", id)
	default:
		return fmt.Errorf("unknown job action: %s", action)
	}
	return nil
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	runningOnly := fs.Bool("running", false, "show only running/pending jobs")
	showAll := fs.Bool("all", false, "show all historical jobs")
	cancel := fs.String("cancel", "", "cancel a running or pending job by id (SIGTERM, no force-kill)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := defaultStore()
	if err != nil {
		return err
	}

	if *cancel != "" {
		id, err := uuid.Parse(*cancel)
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		controller := jobs.NewController(store, nil)
		if err := controller.Cancel(id); err != nil {
			return err
		}
		fmt.Printf("Job %s cancelled.\n", id)
		return nil
	}

	if fs.NArg() >= 1 {
		id, err := uuid.Parse(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		return showJobDetail(store, id)
	}

	return listJobsStatus(store, *runningOnly, *showAll)
}

func showJobDetail(store *jobs.StateStore, id uuid.UUID) error {
	job, err := store.Load(id)
	if err != nil {
		return err
	}

	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("Status: %s\n", job.Status)
	fmt.Printf("Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.StartedAt != nil {
		fmt.Printf("Started: %s\n", job.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if job.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Progress: %.1f%%\n", job.ProgressPercent())
	if job.PID != nil {
		fmt.Printf("PID: %d\n", *job.PID)
	} else {
		fmt.Println("PID: N/A")
	}
	if job.LogFile != nil {
		fmt.Printf("Log: %s\n", *job.LogFile)
	} else {
		fmt.Println("Log: N/A")
	}

	fmt.Println("\nTasks:")
	for i, task := range job.Tasks {
		fmt.Printf("  %d. %s [%s] %.1f%% (%d/%d hours)\n", i+1, task.InstrumentID, task.Status, task.ProgressPercent(), task.HoursCompleted, task.HoursTotal)
		if task.ErrorMessage != nil {
			fmt.Printf("     Error: %s\n", *task.ErrorMessage)
		}
	}
	return nil
}

func listJobsStatus(store *jobs.StateStore, runningOnly, showAll bool) error {
	list, err := store.List()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	var filtered []*jobs.Job
	for _, job := range list {
		switch {
		case runningOnly:
			if job.Status == jobs.StatusRunning || job.Status == jobs.StatusPending {
				filtered = append(filtered, job)
			}
		case showAll:
			filtered = append(filtered, job)
		default:
			isRecent := job.CreatedAt.After(cutoff)
			isActive := job.Status == jobs.StatusRunning || job.Status == jobs.StatusPending
			if isRecent || isActive {
				filtered = append(filtered, job)
			}
		}
	}

	if len(filtered) == 0 {
		fmt.Println("No jobs found.")
		if !showAll {
			fmt.Println("Use --all to show all historical jobs.")
		}
		return nil
	}

	table := NewTableWriter(os.Stdout)
	table.SetHeader([]string{"JOB ID", "STATUS", "PROGRESS", "CREATED"})
	for _, job := range filtered {
		table.Append([]string{
			job.ID.String(),
			string(job.Status),
			fmt.Sprintf("%.1f%%", job.ProgressPercent()),
			job.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	fmt.Printf("\nTotal: %d jobs\n", len(filtered))
	return nil
}
