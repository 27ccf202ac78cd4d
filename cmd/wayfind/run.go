package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/wayfind/internal/cache"
	"github.com/ShayCichocki/wayfind/internal/config"
	"github.com/ShayCichocki/wayfind/internal/invoke"
	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/internal/orchestrate"
	"github.com/ShayCichocki/wayfind/internal/search"
	"github.com/ShayCichocki/wayfind/internal/session"
	"github.com/ShayCichocki/wayfind/internal/tui"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

var (
	runModel       string
	runTemperature float64
	runMaxTokens   int
	runLoopBudget  int
	runLanguage    string
	runMock        bool
	runHeadless    bool
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Work through a goal as a task loop",
	Long: `Run an agent session against a goal.

The goal is decomposed into an initial task list. Each task is analyzed
(answer from model knowledge, or search the web when current information
is needed), executed, and its result feeds the creation of follow-up
tasks. The session stops when no tasks remain or the loop budget is
spent.

A session can be stopped from another terminal by touching
.wayfind/signals/stop, or paused while .wayfind/signals/pause exists.

Use --mock to exercise the loop without any model or network access.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoal,
}

func init() {
	runCmd.Flags().StringVar(&runModel, "model", "", "Override the configured model")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", 0, "Override the sampling temperature")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "Override the per-completion token ceiling")
	runCmd.Flags().IntVar(&runLoopBudget, "loop-budget", 0, "Override the maximum number of executed tasks")
	runCmd.Flags().StringVar(&runLanguage, "language", "", "Override the output language")
	runCmd.Flags().BoolVar(&runMock, "mock", false, "Use the canned offline agent (no API calls)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without TUI (print events to stdout)")
}

func runGoal(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cacheSvc := cache.New(cfg.CacheDir())
	defer cacheSvc.Close()

	agent, client, err := buildAgent(cfg, cacheSvc)
	if err != nil {
		return err
	}

	settings := models.ModelSettings{
		Model:       cfg.Anthropic.Model,
		Temperature: cfg.Agent.Temperature,
		MaxTokens:   cfg.Agent.MaxTokens,
		Language:    cfg.Agent.Language,
	}

	control, err := session.NewControlWatcher(".wayfind")
	if err != nil {
		fmt.Printf("Warning: control signals unavailable: %v\n", err)
		control = nil
	} else {
		control.ClearSignals()
		defer control.Close()
	}

	events := make(chan session.Event, 64)
	driver := newSessionDriver(agent, settings, cfg.Agent.LoopBudget, control, events)

	var summary session.Summary
	if runHeadless {
		done := make(chan struct{})
		go func() {
			consumeEventsHeadless(events)
			close(done)
		}()

		fmt.Printf("Goal: %s\n", goal)
		fmt.Printf("  Model: %s\n", settings.Model)
		fmt.Printf("  Loop budget: %d\n", cfg.Agent.LoopBudget)
		fmt.Println()

		summary = driver.Run(ctx, goal)
		close(events)
		<-done
	} else {
		p, _ := tui.NewRunProgram(goal)

		go tui.ForwardEvents(p, events)
		go func() {
			s := driver.Run(ctx, goal)
			close(events)
			p.Send(tui.RunDoneMsg{Summary: s})
		}()

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		cancel()
		return nil
	}

	printSummary(summary, client)
	return nil
}

// applyRunFlags folds explicit command-line overrides into the loaded
// config. Unchanged flags leave config and defaults alone.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("model") {
		cfg.Anthropic.Model = runModel
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Agent.Temperature = runTemperature
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.Agent.MaxTokens = runMaxTokens
	}
	if cmd.Flags().Changed("loop-budget") {
		cfg.Agent.LoopBudget = runLoopBudget
	}
	if cmd.Flags().Changed("language") {
		cfg.Agent.Language = runLanguage
	}
	if runMock {
		cfg.Agent.Mock = true
	}
}

// buildAgent wires the orchestrator from config: mock needs nothing,
// live needs a model client, the invocation layer, and optionally a
// search collaborator.
func buildAgent(cfg *config.Config, cacheSvc *cache.Service) (orchestrate.AgentService, *model.AnthropicClient, error) {
	if cfg.Agent.Mock {
		return orchestrate.New(orchestrate.Options{Mock: true}), nil, nil
	}

	apiKey, err := config.GetAnthropicKey(cfg)
	if err != nil && !cfg.Anthropic.UseAWSBedrock {
		return nil, nil, err
	}

	client, err := model.NewAnthropicClient(model.ClientConfig{
		Model:         cfg.Anthropic.Model,
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create model client: %w", err)
	}

	opts := orchestrate.Options{
		Invoker: invoke.New(cacheSvc, client),
		Client:  client,
	}

	if serperKey := config.GetSerperKey(cfg); serperKey != "" {
		provider, err := search.NewSerper(serperKey)
		if err != nil {
			return nil, nil, fmt.Errorf("create search provider: %w", err)
		}
		opts.Searcher = search.NewSummarizer(provider, client)
	}

	return orchestrate.New(opts), client, nil
}

func newSessionDriver(agent orchestrate.AgentService, settings models.ModelSettings, loopBudget int, control *session.ControlWatcher, events chan session.Event) *session.Driver {
	// A typed nil stored in the interface would dodge the driver's nil
	// check, so only pass a live watcher.
	if control == nil {
		return session.NewDriver(agent, settings, loopBudget, nil, events)
	}
	return session.NewDriver(agent, settings, loopBudget, control, events)
}

// consumeEventsHeadless prints session events to stdout.
func consumeEventsHeadless(events <-chan session.Event) {
	for event := range events {
		switch event.Type {
		case session.EventTasksCreated:
			for _, t := range event.Tasks {
				fmt.Printf("%s %s\n", color.CyanString("[QUEUED]"), t)
			}
		case session.EventTaskStarted:
			fmt.Printf("%s %s\n", color.YellowString("[STARTED]"), event.Task)
		case session.EventTaskAnalyzed:
			fmt.Printf("%s %s via %s\n", color.BlueString("[ANALYZED]"), event.Task, event.Action)
		case session.EventTaskCompleted:
			fmt.Printf("%s %s\n%s\n", color.GreenString("[DONE]"), event.Task, indentResult(event.Result))
		case session.EventSessionDone:
			fmt.Printf("%s %s\n", color.MagentaString("[SESSION]"), event.Message)
		}
	}
}

func indentResult(result string) string {
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// printSummary reports the final session accounting in headless mode.
func printSummary(summary session.Summary, client *model.AnthropicClient) {
	fmt.Println()
	fmt.Printf("Session finished: %s\n", summary.StopReason)
	fmt.Printf("  Tasks completed: %d\n", len(summary.Completed))
	if len(summary.Pending) > 0 {
		fmt.Printf("  Tasks left in queue: %d\n", len(summary.Pending))
	}
	if client != nil {
		in, out := client.Tracker().Total()
		fmt.Printf("  Tokens used: %d in / %d out\n", in, out)
	}
	if _, err := os.Stat(".wayfind"); err == nil {
		fmt.Println("  Signals dir: .wayfind/signals")
	}
}
