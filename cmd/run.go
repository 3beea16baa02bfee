package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/saksham-os/agent-core/internal/ai"
	"github.com/saksham-os/agent-core/internal/ai/gemini"
	"github.com/saksham-os/agent-core/internal/finance"
	"github.com/saksham-os/agent-core/internal/hunter"
	"github.com/saksham-os/agent-core/internal/logger"
	"github.com/saksham-os/agent-core/internal/marketplace"
	"github.com/saksham-os/agent-core/internal/profiles"
	"github.com/saksham-os/agent-core/internal/ranking"
	"github.com/saksham-os/agent-core/internal/schedule"
	"github.com/saksham-os/agent-core/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptRankBids    = "Rank received bids"
	PromptScanMatches = "Scan job matches and draft proposals"
	PromptClassify    = "Classify transactions"
	PromptEvaluate    = "Evaluate schedule"
	PromptMonthly     = "Monthly deductible summary"
	PromptDumpToFile  = "Dump report to file"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Choose an agent action",
	Items: []string{PromptRankBids, PromptScanMatches, PromptClassify, PromptEvaluate, PromptMonthly, PromptDumpToFile, PromptExit},
}

// workspace is the snapshot of marketplace and finance data the agents run
// over, loaded from the input file.
type workspace struct {
	Jobs         []*marketplace.JobPosting        `json:"jobs"`
	Bids         []*marketplace.Bid               `json:"bids"`
	Profiles     []*marketplace.FreelancerProfile `json:"profiles"`
	Candidate    *marketplace.FreelancerProfile   `json:"candidate"`
	Transactions []*finance.Transaction           `json:"transactions"`
	Schedule     *schedule.Snapshot               `json:"schedule"`
}

// report accumulates agent output for the dump action.
type report struct {
	RankedBids      map[string][]*ranking.ScoredBid   `json:"ranked_bids,omitempty"`
	Matches         []*marketplace.JobPosting         `json:"matches,omitempty"`
	Proposals       []*hunter.Proposal                `json:"proposals,omitempty"`
	Classifications []*finance.Classification         `json:"classifications,omitempty"`
	Advice          []*finance.Advice                 `json:"advice,omitempty"`
	Schedule        *schedule.Result                  `json:"schedule,omitempty"`
	Monthly         map[string]finance.MonthlySummary `json:"monthly,omitempty"`
}

type agents struct {
	ranker     *ranking.Ranker
	drafter    *hunter.Drafter
	classifier *finance.Classifier
	advisor    *finance.Advisor
	evaluator  *schedule.Evaluator
	account    *finance.AccountProfile
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the saksham-agents main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "workspace snapshot file (jobs, bids, profiles, transactions, schedule)")
	runCmd.Flags().BoolP("auto-approve", "y", false, "run every agent without the interactive prompt and dump the report")

	viper.BindPFlag("input", runCmd.Flags().Lookup("input"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the saksham-agents", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	inputPath := strings.TrimSpace(viper.GetString("input"))
	if inputPath == "" {
		inputPath = config.Input
	}
	if inputPath == "" {
		logger.Fatal("workspace input file is required", zap.String("hint", "pass --input or set the 'input' config key"))
	}

	ws, err := loadWorkspace(inputPath)
	if err != nil {
		logger.Fatal("loading workspace", zap.Error(err))
	}

	logger.Info("loaded workspace",
		zap.String("input", inputPath),
		zap.Int("jobs", len(ws.Jobs)),
		zap.Int("bids", len(ws.Bids)),
		zap.Int("transactions", len(ws.Transactions)),
	)

	store, closeStore, err := prepareProfileStore(ctx, config, ws, logger)
	if err != nil {
		logger.Fatal("preparing profile store", zap.Error(err))
	}
	defer closeStore()

	drafter, err := prepareDrafter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("text generation disabled, agents will use deterministic fallbacks", zap.Error(err))
	}

	ag := &agents{
		ranker:     ranking.NewRanker(store, logger),
		drafter:    hunter.NewDrafter(drafter, logger),
		classifier: finance.NewClassifier(nil, drafter, logger),
		advisor:    finance.NewAdvisor(drafter, logger),
		evaluator:  schedule.NewEvaluator(drafter, logger),
		account:    prepareAccount(config.Finance, ws),
	}

	rep := &report{}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		for _, action := range []string{PromptRankBids, PromptScanMatches, PromptClassify, PromptEvaluate, PromptMonthly, PromptDumpToFile} {
			if err := handleAction(ctx, action, ag, ws, rep, logger); err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, ag, ws, rep, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, ag *agents, ws *workspace, rep *report, logger *zap.Logger) error {
	switch action {
	case PromptRankBids:
		return rankBids(ctx, ag, ws, rep, logger)
	case PromptScanMatches:
		return scanMatches(ctx, ag, ws, rep, logger)
	case PromptClassify:
		return classifyTransactions(ctx, ag, ws, rep, logger)
	case PromptEvaluate:
		rep.Schedule = ag.evaluator.Evaluate(ctx, ws.Schedule)
		logger.Info("schedule evaluation finished",
			zap.Float64("utilization", rep.Schedule.Utilization),
			zap.Int("actions", len(rep.Schedule.Actions)),
		)
		return nil
	case PromptMonthly:
		rep.Monthly = finance.SummarizeMonthly(nil, ws.Transactions)
		logger.Info("monthly summary computed", zap.Int("months", len(rep.Monthly)))
		return nil
	case PromptDumpToFile:
		filename, err := dumpReport(rep)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func rankBids(ctx context.Context, ag *agents, ws *workspace, rep *report, logger *zap.Logger) error {
	if rep.RankedBids == nil {
		rep.RankedBids = make(map[string][]*ranking.ScoredBid)
	}

	byJob := make(map[string]*marketplace.Bids)
	for _, bid := range ws.Bids {
		if byJob[bid.JobID] == nil {
			byJob[bid.JobID] = &marketplace.Bids{}
		}
		byJob[bid.JobID].Items = append(byJob[bid.JobID].Items, bid)
	}

	jobs := &marketplace.Jobs{Items: ws.Jobs}
	for jobID, bids := range byJob {
		job := jobs.FindByID(jobID)
		if job == nil {
			logger.Warn("bids reference unknown job, skipping", zap.String("job_id", jobID))
			continue
		}

		ranked, err := ag.ranker.Rank(ctx, job, bids)
		if err != nil {
			return fmt.Errorf("rank bids for job %s: %w", jobID, err)
		}
		rep.RankedBids[jobID] = ranked

		for _, sb := range ranked {
			logger.Info("ranked bid",
				zap.String("job_id", jobID),
				zap.String("freelancer_id", sb.FreelancerID),
				zap.Int("score", sb.Score),
			)
		}
	}
	return nil
}

func scanMatches(ctx context.Context, ag *agents, ws *workspace, rep *report, logger *zap.Logger) error {
	if ws.Candidate == nil {
		logger.Info("no candidate profile in workspace, skipping match scan")
		return nil
	}

	jobs := &marketplace.Jobs{Items: ws.Jobs}
	rep.Matches = ranking.MatchJobs(jobs, ws.Candidate.Skills, ws.Candidate.MinRate)
	logger.Info("matched jobs",
		zap.String("candidate", ws.Candidate.ID),
		zap.Int("count", len(rep.Matches)),
	)

	for _, job := range rep.Matches {
		proposal := ag.drafter.OnJobNotification(ctx, job, ws.Candidate)
		if proposal == nil {
			continue
		}
		rep.Proposals = append(rep.Proposals, proposal)
		logger.Info("drafted proposal",
			zap.String("job_id", job.ID),
			zap.Int("match_score", proposal.Meta.MatchScore),
			zap.Float64("suggested_rate", proposal.Meta.SuggestedRate),
		)
	}
	return nil
}

func classifyTransactions(ctx context.Context, ag *agents, ws *workspace, rep *report, logger *zap.Logger) error {
	for _, txn := range ws.Transactions {
		classification := ag.classifier.Classify(ctx, txn)
		rep.Classifications = append(rep.Classifications, classification)
		logger.Info("classified transaction",
			zap.String("transaction_id", txn.ID),
			zap.String("category", classification.Category),
			zap.Bool("deductible", classification.Deductible),
		)

		if ag.advisor.ShouldAct(txn, ag.account) {
			if advice := ag.advisor.OnTransaction(ctx, txn, ag.account); advice != nil {
				rep.Advice = append(rep.Advice, advice)
				logger.Info("finance advice",
					zap.String("transaction_id", txn.ID),
					zap.String("type", advice.Type),
				)
			}
		}
	}
	return nil
}

func loadWorkspace(path string) (*workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ws workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parsing workspace %q: %w", path, err)
	}
	return &ws, nil
}

func dumpReport(rep *report) (string, error) {
	file, err := os.CreateTemp("", "agents_report_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func prepareProfileStore(ctx context.Context, config *Config, ws *workspace, logger *zap.Logger) (marketplace.ProfileStore, func(), error) {
	noop := func() {}

	if config.Profiles == nil || (config.Profiles.PostgresURL == "" && config.Profiles.File == "") {
		logger.Info("using workspace profiles as the profile store", zap.Int("profiles", len(ws.Profiles)))
		return profiles.NewStatic(ws.Profiles), noop, nil
	}

	if config.Profiles.File != "" {
		store, err := profiles.LoadStatic(config.Profiles.File)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}

	pg, err := profiles.NewPostgres(ctx, config.Profiles.PostgresURL)
	if err != nil {
		return nil, noop, err
	}

	var store marketplace.ProfileStore = pg
	if rc := config.Profiles.Redis; rc != nil && rc.Addr != "" {
		ttl, _ := time.ParseDuration(rc.TTL)
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		store = profiles.NewCache(pg, rdb, ttl, logger)
		logger.Info("profile store cache enabled", zap.String("redis", rc.Addr))
	}

	return store, pg.Close, nil
}

func prepareDrafter(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Drafter, error) {
	if config == nil || !config.Enabled {
		return nil, errors.New("ai is not enabled in the config")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.Gemini.Model),
	)

	return gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, genLogger)
}

func prepareAccount(config *FinanceConfig, ws *workspace) *finance.AccountProfile {
	account := &finance.AccountProfile{}
	if ws.Candidate != nil {
		account.UserID = ws.Candidate.ID
	}
	if config != nil {
		account.CheckingBalance = config.CheckingBalance
		account.MonthlyBurn = config.MonthlyBurn
		account.Split = config.Split
	}
	return account
}
