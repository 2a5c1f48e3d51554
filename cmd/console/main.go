package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"report-console/config"
	"report-console/internal/client"
	"report-console/internal/models"
	"report-console/pkg/cronexpr"
)

const usage = `Usage: console <command> [flags]

Commands:
  submit            Submit a report generation task
  list              List tasks, optionally filtered by status
  watch             Poll the task list continuously
  get               Show a single task
  cancel            Cancel a pending task
  download          Download a completed report
  schedule create   Create a scheduled task
  schedule list     List scheduled tasks
  schedule delete   Delete a scheduled task
  presets           Show common cron expressions
  health            Check backend liveness
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	gw := client.NewGateway(cfg.APIBaseURL, cfg.HTTPTimeout)
	ctx := context.Background()

	switch args[0] {
	case "submit":
		runSubmit(ctx, gw, args[1:])
	case "list":
		runList(ctx, gw, args[1:])
	case "watch":
		runWatch(gw, cfg.PollInterval, args[1:])
	case "get":
		runGet(ctx, gw, args[1:])
	case "cancel":
		runCancel(ctx, gw, args[1:])
	case "download":
		runDownload(ctx, gw, args[1:])
	case "schedule":
		runSchedule(ctx, gw, args[1:])
	case "presets":
		runPresets()
	case "health":
		if err := gw.Health(ctx); err != nil {
			fatal("backend unhealthy: %v", err)
		}
		fmt.Println("healthy")
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runSubmit(ctx context.Context, gw *client.Gateway, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	company := fs.String("company", "", "company name")
	code := fs.String("code", "", "stock code")
	market := fs.String("market", models.MarketHK, "market (HK, A or US)")
	fs.Parse(args)

	taskID, err := gw.SubmitReport(ctx, *company, *code, *market)
	if err != nil {
		fatal("submit failed: %v", err)
	}
	fmt.Printf("task %s accepted\n", taskID)
}

func runList(ctx context.Context, gw *client.Gateway, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status (pending, running, completed, failed, cancelled)")
	fs.Parse(args)

	tasks, err := gw.ListTasks(ctx, *status)
	if err != nil {
		fatal("list failed: %v", err)
	}
	printTasks(tasks)
}

func runWatch(gw *client.Gateway, interval time.Duration, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	fs.Parse(args)

	poller := client.NewPoller(gw, interval)
	if *status != "" {
		if err := poller.SetFilter(context.Background(), *status); err != nil {
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
		}
	}
	poller.Start()
	defer poller.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := poller.LastError(); err != nil {
				fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
				continue
			}
			fmt.Print("\033[H\033[2J")
			printTasks(poller.Snapshot())
		case <-quit:
			return
		}
	}
}

func runGet(ctx context.Context, gw *client.Gateway, args []string) {
	if len(args) != 1 {
		fatal("usage: console get <task-id>")
	}

	task, err := gw.GetTask(ctx, args[0])
	if err != nil {
		fatal("get failed: %v", err)
	}
	printTasks([]models.Task{task})
	if task.Error != "" {
		fmt.Printf("error: %s\n", task.Error)
	}
}

func runCancel(ctx context.Context, gw *client.Gateway, args []string) {
	if len(args) != 1 {
		fatal("usage: console cancel <task-id>")
	}

	poller := client.NewPoller(gw, 0)
	coordinator := client.NewCoordinator(gw, poller, confirmStdin, nil)
	if err := coordinator.Cancel(ctx, args[0]); err != nil {
		fatal("cancel failed: %v", err)
	}
	fmt.Println("ok")
}

func runDownload(ctx context.Context, gw *client.Gateway, args []string) {
	if len(args) != 1 {
		fatal("usage: console download <task-id>")
	}

	poller := client.NewPoller(gw, 0)
	coordinator := client.NewCoordinator(gw, poller, nil, nil)
	filename, err := coordinator.Download(ctx, args[0])
	if err != nil {
		fatal("download failed: %v", err)
	}
	fmt.Printf("saved %s\n", filename)
}

func runSchedule(ctx context.Context, gw *client.Gateway, args []string) {
	if len(args) == 0 {
		fatal("usage: console schedule <create|list|delete> ...")
	}

	manager := client.NewScheduleManager(gw, confirmStdin)

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("schedule create", flag.ExitOnError)
		name := fs.String("name", "", "unique schedule name")
		company := fs.String("company", "", "company name")
		code := fs.String("code", "", "stock code")
		market := fs.String("market", models.MarketHK, "market (HK, A or US)")
		expr := fs.String("cron", "", "cron expression (minute hour day month weekday)")
		fs.Parse(args[1:])

		created, err := manager.Create(ctx, *name, *company, *code, *market, *expr)
		if err != nil {
			fatal("create failed: %v", err)
		}
		fmt.Printf("scheduled %q (%s)", created.Name, created.CronExpression)
		if created.NextRunTime != nil {
			fmt.Printf(", next run %s", created.NextRunTime.Format(time.RFC3339))
		}
		fmt.Println()

	case "list":
		tasks, err := manager.List(ctx)
		if err != nil {
			fatal("list failed: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOMPANY\tCODE\tMARKET\tCRON\tNEXT RUN")
		for _, task := range tasks {
			next := "-"
			if task.NextRunTime != nil {
				next = task.NextRunTime.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				task.Name, task.Company, task.Code, task.Market, task.CronExpression, next)
		}
		w.Flush()

	case "delete":
		if len(args) != 2 {
			fatal("usage: console schedule delete <name>")
		}
		if err := manager.Delete(ctx, args[1]); err != nil {
			fatal("delete failed: %v", err)
		}
		fmt.Println("ok")

	default:
		fatal("usage: console schedule <create|list|delete> ...")
	}
}

func runPresets() {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, preset := range cronexpr.Presets() {
		fmt.Fprintf(w, "%s\t%s\n", preset.Expression, preset.Label)
	}
	w.Flush()
}

func printTasks(tasks []models.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tCODE\tMARKET\tSTATUS\tPROGRESS\tCREATED")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			task.ID, task.Company, task.Code, task.Market,
			task.Status, task.Progress, task.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func confirmStdin(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
