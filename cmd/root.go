package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/candidate"
)

const (
	app = "talentsift"
)

type Config struct {
	IndexFile      string                 `mapstructure:"index-file"`
	CredentialFile string                 `mapstructure:"credential-file"`
	Roles          map[string]*agent.Role `mapstructure:"roles"`
	Scoring        *ScoringConfig         `mapstructure:"scoring"`
	Validation     *ValidationConfig      `mapstructure:"validation"`
	Evaluation     *EvaluationConfig      `mapstructure:"evaluation"`
	AI             *AIConfig              `mapstructure:"ai"`
}

type ScoringConfig struct {
	Weights *candidate.Weights `mapstructure:"weights"`
}

type ValidationConfig struct {
	ImprovementThreshold float64 `mapstructure:"improvement-threshold"`
	EscalationThreshold  float64 `mapstructure:"escalation-threshold"`
	MaxIterations        int     `mapstructure:"max-iterations"`
}

type EvaluationConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PoolWidth    int  `mapstructure:"pool-width"`
	SubmitGrades bool `mapstructure:"submit-grades"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	SampleSize   int    `mapstructure:"sample-size"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentsift is a cli for ranking candidate profiles per role and validating them against an evaluation backend",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("credential-file", "TALENTSIFT_CREDENTIAL_FILE"); err != nil {
		log.Fatalf("binding TALENTSIFT_CREDENTIAL_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
