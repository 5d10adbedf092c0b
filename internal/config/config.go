package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/alterego/alterego/internal/types"
)

// DefaultConfigName is the base name of the optional YAML config file
// searched for in the workspace root.
const DefaultConfigName = "alterego"

// DefaultEnvFile is the local override file read once at startup.
const DefaultEnvFile = ".env"

// Config holds the full application configuration.
// It is built once at process start and passed explicitly to the
// components that need it.
type Config struct {
	Root         string             `yaml:"root,omitempty" mapstructure:"root"`
	Paths        PathsConfig        `yaml:"paths" mapstructure:"paths"`
	Fitness      FitnessConfig      `yaml:"fitness" mapstructure:"fitness"`
	Credentials  CredentialsConfig  `yaml:"credentials" mapstructure:"credentials"`
	Connectivity ConnectivityConfig `yaml:"connectivity" mapstructure:"connectivity"`
	Patrol       PatrolConfig       `yaml:"patrol" mapstructure:"patrol"`
	Watch        WatchConfig        `yaml:"watch" mapstructure:"watch"`
	History      HistoryConfig      `yaml:"history" mapstructure:"history"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the workspace areas, relative to Root.
type PathsConfig struct {
	ADRDir     string `yaml:"adr_dir" mapstructure:"adr_dir"`
	BooksDir   string `yaml:"books_dir" mapstructure:"books_dir"`
	ScriptsDir string `yaml:"scripts_dir" mapstructure:"scripts_dir"`
	BrainDir   string `yaml:"brain_dir" mapstructure:"brain_dir"`
}

// FitnessConfig configures the fitness checks.
type FitnessConfig struct {
	// EssentialScripts are paths relative to Paths.ScriptsDir that must exist.
	EssentialScripts []string `yaml:"essential_scripts" mapstructure:"essential_scripts"`

	// Encodings are tried in order after strict UTF-8 when decoding documents.
	Encodings []string `yaml:"encodings" mapstructure:"encodings"`

	// Dependencies probed for local availability.
	Dependencies []DependencyConfig `yaml:"dependencies" mapstructure:"dependencies"`

	// PythonPaths are site-packages style directories searched for python
	// modules. PYTHONPATH entries are appended at probe time.
	PythonPaths []string `yaml:"python_paths" mapstructure:"python_paths"`

	// OversizeBytes marks knowledge artifacts as dedup-risk candidates.
	OversizeBytes int64 `yaml:"oversize_bytes" mapstructure:"oversize_bytes"`
}

// DependencyConfig describes one probed capability.
type DependencyConfig struct {
	Kind       string `yaml:"kind" mapstructure:"kind"` // python, exec, gomod
	Capability string `yaml:"capability" mapstructure:"capability"`
	Name       string `yaml:"name" mapstructure:"name"`
	Required   bool   `yaml:"required" mapstructure:"required"`
	MinVersion string `yaml:"min_version,omitempty" mapstructure:"min_version"`
}

// CredentialsConfig holds external service credentials.
type CredentialsConfig struct {
	GitHubToken        string `yaml:"github_token" mapstructure:"github_token"`
	ClickUpAPIKey      string `yaml:"clickup_api_key" mapstructure:"clickup_api_key"`
	AWSAccessKeyID     string `yaml:"aws_access_key_id" mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key" mapstructure:"aws_secret_access_key"`
	AWSSessionToken    string `yaml:"aws_session_token,omitempty" mapstructure:"aws_session_token"`
	AWSRegion          string `yaml:"aws_region" mapstructure:"aws_region"`
	AnthropicAPIKey    string `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
}

// ConnectivityConfig configures the external API probes.
type ConnectivityConfig struct {
	TimeoutSecs      int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Placeholders     []string `yaml:"placeholders" mapstructure:"placeholders"`
	GitHubBaseURL    string   `yaml:"github_base_url" mapstructure:"github_base_url"`
	ClickUpBaseURL   string   `yaml:"clickup_base_url" mapstructure:"clickup_base_url"`
	AnthropicBaseURL string   `yaml:"anthropic_base_url,omitempty" mapstructure:"anthropic_base_url"`
}

// PatrolConfig configures the recent-changes patrol.
type PatrolConfig struct {
	WindowHours int      `yaml:"window_hours" mapstructure:"window_hours"`
	ExcludeDirs []string `yaml:"exclude_dirs" mapstructure:"exclude_dirs"`
}

// WatchConfig configures the always-on loop.
type WatchConfig struct {
	TickSecs int `yaml:"tick_secs" mapstructure:"tick_secs"`

	PatrolIntervalMins int `yaml:"patrol_interval_mins" mapstructure:"patrol_interval_mins"`

	// FitnessIntervalMins of 0 disables fitness runs inside the loop.
	FitnessIntervalMins int `yaml:"fitness_interval_mins" mapstructure:"fitness_interval_mins"`
}

// HistoryConfig configures the fitness run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// credentialEnv maps credential keys to their conventional, unprefixed
// environment variable names.
var credentialEnv = map[string]string{
	"credentials.github_token":          "GITHUB_TOKEN",
	"credentials.clickup_api_key":       "CLICKUP_API_KEY",
	"credentials.aws_access_key_id":     "AWS_ACCESS_KEY_ID",
	"credentials.aws_secret_access_key": "AWS_SECRET_ACCESS_KEY",
	"credentials.aws_session_token":     "AWS_SESSION_TOKEN",
	"credentials.aws_region":            "AWS_REGION",
	"credentials.anthropic_api_key":     "ANTHROPIC_API_KEY",
}

// DefaultEssentialScripts are the scripts the workspace cannot operate without.
func DefaultEssentialScripts() []string {
	return []string{
		"knowledge/extract-oreilly-learning.py",
		"knowledge/extract-text-from-screenshots.py",
		"knowledge/extract-kindle-book.py",
		"knowledge/index-book-pages.py",
		"patrol/clickup_adapter.py",
		"analyze/analyze_thoughts.py",
	}
}

// DefaultDependencies lists the probed capabilities. The request transport
// and the browser automation library are required; the rest are optional.
func DefaultDependencies() []DependencyConfig {
	return []DependencyConfig{
		{Kind: "python", Capability: "playwright", Name: "playwright", Required: true},
		{Kind: "python", Capability: "google.cloud.vision", Name: "google.cloud.vision"},
		{Kind: "python", Capability: "mobi", Name: "mobi"},
		{Kind: "python", Capability: "requests", Name: "requests", Required: true},
		{Kind: "python", Capability: "boto3", Name: "boto3"},
		{Kind: "python", Capability: "feedparser", Name: "feedparser"},
	}
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ADRDir:     "docs/adr",
			BooksDir:   "knowledge/books",
			ScriptsDir: "scripts",
			BrainDir:   ".agent/brain",
		},
		Fitness: FitnessConfig{
			EssentialScripts: DefaultEssentialScripts(),
			Encodings:        []string{"shift_jis", "euc-jp"},
			Dependencies:     DefaultDependencies(),
			OversizeBytes:    1024 * 1024,
		},
		Credentials: CredentialsConfig{
			AWSRegion: "us-east-1",
		},
		Connectivity: ConnectivityConfig{
			TimeoutSecs:    5,
			Placeholders:   []string{"your_"},
			GitHubBaseURL:  "https://api.github.com",
			ClickUpBaseURL: "https://api.clickup.com/api/v2",
		},
		Patrol: PatrolConfig{
			WindowHours: 24,
			ExcludeDirs: []string{".git", "node_modules", "__pycache__", ".venv"},
		},
		Watch: WatchConfig{
			TickSecs:           60,
			PatrolIntervalMins: 120,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".agent/brain/fitness.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// Root is the workspace root. Defaults to the current directory.
	Root string

	// ConfigFile is an explicit YAML file. When empty, alterego.yaml is
	// searched for in Root and is optional.
	ConfigFile string

	// EnvFile is the local override file. When empty, Root/.env is used
	// if it exists.
	EnvFile string
}

// Load reads configuration from defaults, an optional YAML file, an optional
// dotenv override file and the process environment, in increasing order of
// precedence.
func Load(opts LoadOptions) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrapf(err, "config: resolve root %q", root)
	}

	v := viper.New()
	setDefaults(v, Default())

	// Environment
	v.SetEnvPrefix("ALTEREGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	// Config file (optional unless explicit)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrapf(err, "config: read %s", opts.ConfigFile)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(absRoot)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, eris.Wrap(err, "config: read file")
			}
		}
	}

	// Local override file
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = filepath.Join(absRoot, DefaultEnvFile)
		if _, err := os.Stat(envFile); err != nil {
			envFile = ""
		}
	}
	if envFile != "" {
		if err := mergeEnvFile(v, envFile); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.Root = absRoot
	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeEnvFile reads a dotenv file and merges the credential values it holds
// into the config layer, so real environment variables still take precedence.
func mergeEnvFile(v *viper.Viper, path string) error {
	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return eris.Wrapf(err, "config: read env file %s", path)
	}

	creds := map[string]any{}
	for key, env := range credentialEnv {
		val := ev.GetString(strings.ToLower(env))
		if val == "" {
			continue
		}
		creds[strings.TrimPrefix(key, "credentials.")] = val
	}
	if len(creds) == 0 {
		return nil
	}

	if err := v.MergeConfigMap(map[string]any{"credentials": creds}); err != nil {
		return eris.Wrap(err, "config: merge env file")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("paths.adr_dir", d.Paths.ADRDir)
	v.SetDefault("paths.books_dir", d.Paths.BooksDir)
	v.SetDefault("paths.scripts_dir", d.Paths.ScriptsDir)
	v.SetDefault("paths.brain_dir", d.Paths.BrainDir)
	v.SetDefault("fitness.encodings", d.Fitness.Encodings)
	v.SetDefault("fitness.python_paths", []string{})
	v.SetDefault("fitness.oversize_bytes", d.Fitness.OversizeBytes)
	v.SetDefault("credentials.aws_region", d.Credentials.AWSRegion)
	v.SetDefault("connectivity.timeout_secs", d.Connectivity.TimeoutSecs)
	v.SetDefault("connectivity.placeholders", d.Connectivity.Placeholders)
	v.SetDefault("connectivity.github_base_url", d.Connectivity.GitHubBaseURL)
	v.SetDefault("connectivity.clickup_base_url", d.Connectivity.ClickUpBaseURL)
	v.SetDefault("connectivity.anthropic_base_url", "")
	v.SetDefault("patrol.window_hours", d.Patrol.WindowHours)
	v.SetDefault("patrol.exclude_dirs", d.Patrol.ExcludeDirs)
	v.SetDefault("watch.tick_secs", d.Watch.TickSecs)
	v.SetDefault("watch.patrol_interval_mins", d.Watch.PatrolIntervalMins)
	v.SetDefault("watch.fitness_interval_mins", d.Watch.FitnessIntervalMins)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// applyFallbacks fills list-valued settings that viper cannot default
// through the environment.
func (c *Config) applyFallbacks() {
	if len(c.Fitness.EssentialScripts) == 0 {
		c.Fitness.EssentialScripts = DefaultEssentialScripts()
	}
	if len(c.Fitness.Dependencies) == 0 {
		c.Fitness.Dependencies = DefaultDependencies()
	}
}

// Validate checks the loaded configuration for values that would make the
// checks meaningless.
func (c *Config) Validate() error {
	if c.Connectivity.TimeoutSecs <= 0 {
		return eris.Errorf("config: connectivity.timeout_secs must be positive (got %d)", c.Connectivity.TimeoutSecs)
	}
	if c.Fitness.OversizeBytes <= 0 {
		return eris.Errorf("config: fitness.oversize_bytes must be positive (got %d)", c.Fitness.OversizeBytes)
	}
	if c.Patrol.WindowHours <= 0 {
		return eris.Errorf("config: patrol.window_hours must be positive (got %d)", c.Patrol.WindowHours)
	}
	for i, dep := range c.Fitness.Dependencies {
		if !types.DependencyKind(dep.Kind).IsValid() {
			return eris.Errorf("config: fitness.dependencies[%d]: unknown kind %q", i, dep.Kind)
		}
		if dep.Capability == "" {
			return eris.Errorf("config: fitness.dependencies[%d]: capability is required", i)
		}
	}
	return nil
}

// Path resolves a workspace-relative path against Root.
// Absolute paths are returned unchanged.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Root, rel)
}

// ReportsDir is where patrol reports are written.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.Path(c.Paths.BrainDir), "reports")
}

// StateFile is the agent state document updated by the watch loop.
func (c *Config) StateFile() string {
	return filepath.Join(c.Path(c.Paths.BrainDir), "state.md")
}

// WatchLockFile guards against two watch loops in one workspace.
func (c *Config) WatchLockFile() string {
	return filepath.Join(c.Path(c.Paths.BrainDir), "watch.lock")
}

// HousekeepingFiles are the files alterego itself writes inside the
// workspace: the history database with its journal files, the state
// document and every lock file in the brain directory. Patrol never
// reports them.
func (c *Config) HousekeepingFiles() []string {
	db := c.Path(c.History.Path)
	return []string{
		db,
		db + "-wal",
		db + "-shm",
		db + "-journal",
		c.StateFile(),
		filepath.Join(c.Path(c.Paths.BrainDir), "*.lock"),
	}
}

// SaveDefault writes the default configuration as YAML. Credentials are
// written as placeholders, which the connectivity probe treats as
// not configured.
func SaveDefault(path string) error {
	cfg := Default()
	cfg.Credentials.GitHubToken = "your_github_token"
	cfg.Credentials.ClickUpAPIKey = "your_clickup_api_key"
	cfg.Credentials.AWSAccessKeyID = "your_aws_access_key_id"
	cfg.Credentials.AWSSecretAccessKey = "your_aws_secret_access_key"
	cfg.Credentials.AnthropicAPIKey = "your_anthropic_api_key"

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return eris.Wrap(err, "config: encode defaults")
	}
	annotate(&doc, []string{"fitness", "python_paths"},
		"Extra site-packages directories searched for python dependencies, e.g.\n"+
			"  - ~/miniconda3/lib/python3.12/site-packages\n"+
			"  - /Library/Frameworks/Python.framework/Versions/3.12/lib/python3.12/site-packages\n"+
			"PYTHONPATH, VIRTUAL_ENV, CONDA_PREFIX, pyenv versions and the python3 on PATH are searched as well.")

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}

	return nil
}

// annotate sets the head comment of the mapping key found by walking keys.
func annotate(node *yaml.Node, keys []string, comment string) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for depth, key := range keys {
		if node.Kind != yaml.MappingNode {
			return
		}
		found := false
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value != key {
				continue
			}
			if depth == len(keys)-1 {
				node.Content[i].HeadComment = comment
				return
			}
			node, found = node.Content[i+1], true
			break
		}
		if !found {
			return
		}
	}
}
