package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/candidate"
	"github.com/talentsift/talentsift/internal/evalclient"
	"github.com/talentsift/talentsift/internal/judge"
	"github.com/talentsift/talentsift/internal/judge/gemini"
	"github.com/talentsift/talentsift/internal/logger"
	"github.com/talentsift/talentsift/internal/retrieval"
	"github.com/talentsift/talentsift/internal/secrets"
	"github.com/talentsift/talentsift/internal/validator"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var defaultWeights = candidate.Weights{Retrieval: 0.6, Preference: 0.3, Padding: 0.1}

var gradePrompt = promptui.Select{
	Label: "Submit grades to the evaluation backend?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the talentsift search-validate loop for every configured role",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before submitting grades")
	runCmd.Flags().StringP("role", "r", "", "run only the given role category")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting talentsift", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if len(config.Roles) == 0 {
		logger.Fatal("at least one role is required under the roles section")
	}

	if config.IndexFile == "" {
		logger.Fatal("index snapshot path is required under index-file")
	}

	source, err := retrieval.NewFileSource(config.IndexFile)
	if err != nil {
		logger.Fatal("loading index snapshot", zap.Error(err))
	}

	a := agent.New(source, buildValidator(ctx, config, logger), scoringWeights(config), maxIterations(config), logger)

	outcomes := make(map[string]*agent.Outcome, len(config.Roles))
	for _, name := range roleNames(cmd, config) {
		role := *config.Roles[name]
		if role.Category == "" {
			role.Category = name
		}

		logger.Info("running role", zap.String("role_category", role.Category))

		outcome, err := a.Run(ctx, role)
		if err != nil {
			logger.Fatal("search session failed", zap.String("role_category", role.Category), zap.Error(err))
		}

		logger.Info("role finished",
			zap.String("role_category", role.Category),
			zap.String("state", string(outcome.State)),
			zap.Float64("score", outcome.Score),
			zap.Int("iterations", outcome.Iterations),
			zap.Strings("candidates", outcome.Candidates.IDs()),
		)

		if viper.GetBool("debug") && outcome.Candidates.Len() > 0 {
			filename, err := outcome.Candidates.DumpToTmpFile()
			if err != nil {
				logger.Warn("dumping candidates to file", zap.Error(err))
			} else {
				logger.Debug("dumped candidates to file", zap.String("filename", filename))
			}
		}

		outcomes[role.Category] = outcome
	}

	if config.Evaluation == nil || !config.Evaluation.Enabled {
		logger.Info("evaluation backend disabled, exiting")
		return
	}

	evaluate(ctx, cmd, config, outcomes, logger)
}

// evaluate runs the backend scoring pass over the accepted outcomes and
// optionally submits final grades.
func evaluate(ctx context.Context, cmd *cobra.Command, config *Config, outcomes map[string]*agent.Outcome, logger *zap.Logger) {
	credential, err := resolveCredential(config)
	if err != nil {
		logger.Fatal(
			"loading evaluation backend credential",
			zap.Error(err),
			zap.String("hint", "set TALENTSIFT_CREDENTIAL_FILE environment variable or the 'credential-file' key in the configuration file"),
		)
	}

	client := evalclient.New(logger, credential)

	requests := make([]evalclient.BatchRequest, 0, len(outcomes))
	for _, category := range sortedCategories(outcomes) {
		outcome := outcomes[category]
		if outcome.Candidates.Len() == 0 {
			logger.Warn("skipping evaluation for empty outcome", zap.String("role_category", category))
			continue
		}
		requests = append(requests, evalclient.BatchRequest{
			Category:     category,
			CandidateIDs: outcome.Candidates.IDs(),
		})
	}

	if len(requests) == 0 {
		logger.Info("nothing to evaluate, exiting")
		return
	}

	for _, result := range client.BatchEvaluate(ctx, requests, config.Evaluation.PoolWidth) {
		if result.Err != nil {
			// degrade gracefully, local validation already scored the set
			logger.Warn("backend evaluation failed",
				zap.String("role_category", result.Category),
				zap.Error(result.Err),
			)
			continue
		}

		logger.Info("backend evaluation",
			zap.String("role_category", result.Category),
			zap.Int("candidates", result.Result.CandidateCount),
			zap.Float64("average_final_score", result.Result.AverageFinalScore),
		)
	}

	if !config.Evaluation.SubmitGrades {
		return
	}

	grades := collectGrades(outcomes, logger)
	if len(grades) == 0 {
		logger.Info("no role produced enough candidates to grade, exiting")
		return
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := gradePrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	receipt, err := client.SubmitGrades(ctx, grades)
	if err != nil {
		logger.Fatal("submitting grades", zap.Error(err))
	}

	logger.Info("grades submitted",
		zap.String("submission_id", receipt.SubmissionID),
		zap.Int("accepted", receipt.Accepted),
	)
}

// collectGrades picks the top candidates per category for the grade call,
// skipping categories that cannot fill the required count.
func collectGrades(outcomes map[string]*agent.Outcome, logger *zap.Logger) map[string][]string {
	grades := make(map[string][]string)
	for category, outcome := range outcomes {
		ids := outcome.Candidates.IDs()
		if len(ids) < 10 {
			logger.Warn("not enough candidates to grade",
				zap.String("role_category", category),
				zap.Int("candidates", len(ids)),
			)
			continue
		}
		grades[category] = ids[:10]
	}
	return grades
}

func resolveCredential(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	credentialFile := strings.TrimSpace(config.CredentialFile)
	if credentialFile == "" {
		credentialFile = strings.TrimSpace(viper.GetString("credential-file"))
	}

	if credentialFile == "" {
		return "", errors.New("evaluation backend credential file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "evaluation backend credential",
		File: credentialFile,
	})
}

// buildValidator wires the optional gemini judge into the validator. A judge
// that cannot be built only disables the preferred path; the heuristic
// fallback still works.
func buildValidator(ctx context.Context, config *Config, logger *zap.Logger) *validator.Validator {
	var j judge.Judge

	if config.AI != nil && config.AI.Enabled {
		built, err := newJudge(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("judge unavailable, validator will use heuristics only", zap.Error(err))
		} else {
			j = built
		}
	}

	improvement, escalation := 0.0, 0.0
	if config.Validation != nil {
		improvement = config.Validation.ImprovementThreshold
		escalation = config.Validation.EscalationThreshold
	}

	return validator.New(j, improvement, escalation, logger)
}

func newJudge(ctx context.Context, cfg *AIConfig, lg *zap.Logger) (judge.Judge, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported judge provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when the judge is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries)
	if err != nil {
		return nil, err
	}

	judgeLogger := logger.WithJudgeFields(lg, "gemini", generator.Model(), "")

	return gemini.NewJudge(generator, judgeLogger, cfg.Gemini.SampleSize, cfg.Gemini.MaxLogLength), nil
}

func scoringWeights(config *Config) candidate.Weights {
	if config.Scoring == nil || config.Scoring.Weights == nil {
		return defaultWeights
	}
	return *config.Scoring.Weights
}

func maxIterations(config *Config) int {
	if config.Validation == nil {
		return agent.DefaultMaxIterations
	}
	return config.Validation.MaxIterations
}

// roleNames returns the configured role keys in deterministic order,
// restricted to the --role flag when set.
func roleNames(cmd *cobra.Command, config *Config) []string {
	selected := ""
	if cmd != nil {
		if flag := cmd.Flag("role"); flag != nil {
			selected = flag.Value.String()
		}
	}

	names := make([]string, 0, len(config.Roles))
	for name := range config.Roles {
		if selected != "" && name != selected {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedCategories(outcomes map[string]*agent.Outcome) []string {
	categories := make([]string, 0, len(outcomes))
	for category := range outcomes {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
