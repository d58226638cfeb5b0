package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	bizcontext "github.com/ziadkadry99/handoverdoc/internal/context"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
	"github.com/ziadkadry99/handoverdoc/internal/llm"
	"github.com/ziadkadry99/handoverdoc/internal/pipeline"
	"github.com/ziadkadry99/handoverdoc/internal/progress"
	"github.com/ziadkadry99/handoverdoc/internal/render"
)

var (
	dryRun     bool
	staticOnly bool
	noCache    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate the fourteen-document handover knowledge base for a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) == 1 {
			rootDir = args[0]
		}
		return runGenerate(rootDir)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate token usage and cost without calling the LLM provider")
	generateCmd.Flags().BoolVar(&staticOnly, "static-only", false, "skip all AI rounds and produce only the static-analysis documents")
	generateCmd.Flags().BoolVar(&noCache, "no-cache", false, "skip round cache reads; writes still happen so the next normal run is warm (§4.11)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(rootDir string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if staticOnly {
		cfg.Analysis.StaticOnly = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolving repository path: %w", err)
	}
	repoName := filepath.Base(absRoot)

	logger.Info("walking repository", zap.String("root", absRoot))
	files, err := discover.Walk(discover.OptionsFromConfig(absRoot, cfg))
	if err != nil {
		return fmt.Errorf("walking repository: %w", err)
	}
	logger.Info("discovered files", zap.Int("count", len(files)))

	var business *bizcontext.BusinessContext
	if cfg.Context != "" {
		if biz, err := bizcontext.Load(cfg.Context); err != nil {
			logger.Warn("failed to load business context", zap.Error(err))
		} else if biz != nil {
			logger.Info("loaded business context", zap.String("path", cfg.Context))
			business = biz
		}
	}

	documentIDs := render.AllDocumentIDs()
	requiredRounds := render.RequiredRounds(documentIDs)
	if cfg.Analysis.StaticOnly {
		requiredRounds = nil
	}

	var provider llm.Provider
	if len(requiredRounds) > 0 && !dryRun {
		provider, err = llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
		if err != nil {
			return err
		}
	}

	if dryRun {
		return runDryRun(cfg, files, requiredRounds)
	}

	var cache *pipeline.Cache
	if len(requiredRounds) > 0 {
		cachePath := filepath.Join(absRoot, ".handoverdoc", "cache.db")
		cache, err = pipeline.OpenCache(cachePath)
		if err != nil {
			logger.Warn("round cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer cache.Close()
			if err := pipeline.AppendIgnorePattern(absRoot, ".handoverdoc/"); err != nil {
				logger.Warn("failed to update .gitignore", zap.Error(err))
			}
		}
	}

	tracker := pipeline.NewTracker()
	reporter := progress.NewReporter()

	outDir := cfg.Output
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(absRoot, outDir)
	}

	renderStep := func(ctx context.Context, rc *pipeline.RunContext) (any, error) {
		staticDep, ok := rc.Dep(pipeline.StepStaticAnalysis)
		if !ok {
			return nil, fmt.Errorf("render: static analysis result unavailable")
		}
		static := staticDep.Data

		rounds := make(map[int]pipeline.RoundExecutionResult)
		for _, n := range requiredRounds {
			dep, ok := rc.Dep(pipeline.RoundStepID(n))
			if !ok {
				continue
			}
			rounds[n] = dep.Data.(pipeline.RoundExecutionResult)
		}

		in := render.RenderInput{
			RepoName:    repoName,
			RunID:       rc.RunID,
			GeneratedAt: startTime,
			Audience:    cfg.Audience,
			Files:       files,
			Static:      static.(analyzers.StaticAnalysisResult),
			Rounds:      rounds,
		}
		logger.Info("rendering documents", zap.String("run_id", rc.RunID))
		return render.Render(outDir, documentIDs, in)
	}

	assembleCfg := pipeline.AssembleConfig{
		RootDir:        absRoot,
		Files:          files,
		Config:         cfg,
		Business:       business,
		Provider:       provider,
		Cache:          cache,
		NoCache:        noCache,
		Tracker:        tracker,
		Sink:           reporter,
		Logger:         logger,
		Concurrency:    cfg.Analysis.Concurrency,
		RequiredRounds: requiredRounds,
		RenderStep:     renderStep,
	}
	sched, err := pipeline.Assemble(assembleCfg)
	if err != nil {
		return fmt.Errorf("assembling pipeline: %w", err)
	}

	reporter.Start(len(requiredRounds) + 2)
	defer reporter.Finish()

	ctx := context.Background()
	results, err := sched.Execute(ctx)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	if renderResult, ok := results[pipeline.StepRender]; ok && renderResult.Err == nil {
		docResults, _ := renderResult.Data.([]render.DocumentResult)
		for _, d := range docResults {
			logger.Info("rendered document", zap.String("file", d.Spec.Filename), zap.String("status", string(d.Status)))
		}
	}

	totalUsage, totalCost := tracker.Total()
	fmt.Fprintf(os.Stderr, "\nTokens: %s input, %s output — estimated cost $%.2f\n",
		humanize.Comma(int64(totalUsage.InputTokens)), humanize.Comma(int64(totalUsage.OutputTokens)), totalCost)
	if cfg.CostWarningThreshold > 0 && totalCost > cfg.CostWarningThreshold {
		fmt.Fprintf(os.Stderr, "Warning: estimated cost $%.2f exceeds cost_warning_threshold $%.2f\n", totalCost, cfg.CostWarningThreshold)
	}
	fmt.Fprintf(os.Stderr, "Handover documentation written to %s\n", outDir)

	return nil
}

// startTime is the generation run's timestamp, read once at process start
// since pipeline steps cannot call time.Now themselves without breaking
// the round cache's deterministic replay.
var startTime = time.Now()

func runDryRun(cfg *config.Config, files []discover.FileInfo, requiredRounds []int) error {
	var totalBytes int64
	for _, f := range files {
		totalBytes += f.Size
	}
	fmt.Printf("Repository: %d files, %s total\n", len(files), humanize.Bytes(uint64(totalBytes)))
	fmt.Printf("Required AI rounds: %d\n", len(requiredRounds))
	if len(requiredRounds) == 0 {
		fmt.Println("Static-analysis-only run: no LLM calls, no cost.")
		return nil
	}

	// A dry run cannot know actual prompt content cheaply, so it estimates
	// off raw file size (roughly 4 bytes/token) rather than re-running the
	// packer, which would itself need a full tokenizer pass over every file.
	estimatedInputTokens := int(totalBytes / 4)
	estimatedOutputTokens := 2000
	estimatedCost := llm.EstimateCost(cfg.Model, estimatedInputTokens*len(requiredRounds), estimatedOutputTokens*len(requiredRounds))

	fmt.Printf("Estimated tokens: ~%s input per round, ~%s output per round\n",
		humanize.Comma(int64(estimatedInputTokens)), humanize.Comma(int64(estimatedOutputTokens)))
	fmt.Printf("Estimated total cost: ~$%.2f (model: %s)\n", estimatedCost, cfg.Model)
	return nil
}
