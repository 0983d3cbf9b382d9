package walker

import (
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config is the configuration instance the rest of walker should access for
// global configuration values. See WalkerConfig for available config members.
var Config WalkerConfig

// ConfigName is the path (can be relative or absolute) to the config file that
// should be read.
var ConfigName = "walker.yaml"

func init() {
	err := readConfig()
	if err != nil {
		if strings.Contains(err.Error(), "no such file or directory") {
			log.Info().Str("config", ConfigName).Msg("did not find config file, continuing with defaults")
		} else {
			panic(err.Error())
		}
	}
}

// WalkerConfig defines the available global configuration parameters for
// walker's search core. It reads values straight from the config file
// (walker.yaml by default). See SetDefaultConfig for default values.
type WalkerConfig struct {
	UserAgent     string `yaml:"user_agent"`
	RequestTimeout string `yaml:"request_timeout"`

	Frontier struct {
		CrawlDelay           float64 `yaml:"crawl_delay"`
		MaxPagesPerDomain    int     `yaml:"max_pages_per_domain"`
		MaxCrawlThreads      int     `yaml:"max_crawl_threads"`
	} `yaml:"frontier"`

	Index struct {
		BatchSize     int `yaml:"batch_size"`
		MinTermLength int `yaml:"min_term_length"`
		MaxTermLength int `yaml:"max_term_length"`
	} `yaml:"index"`

	Query struct {
		MaxResultsPerPage int     `yaml:"max_results_per_page"`
		DefaultResults    int     `yaml:"default_results_count"`
		Timeout           string  `yaml:"query_timeout"`
	} `yaml:"query"`

	Rank struct {
		ContentRelevanceWeight float64 `yaml:"content_relevance_weight"`
		PageRankWeight         float64 `yaml:"pagerank_weight"`
		FreshnessWeight        float64 `yaml:"freshness_weight"`
		UserSignalsWeight      float64 `yaml:"user_signals_weight"`
		TechnicalSEOWeight     float64 `yaml:"technical_seo_weight"`

		DampingFactor            float64 `yaml:"damping_factor"`
		PersonalizedDampingFactor float64 `yaml:"personalized_damping_factor"`
		MaxIterations            int     `yaml:"max_iterations"`
		Tolerance                float64 `yaml:"tolerance"`

		DuplicateSimilarityThreshold float64 `yaml:"duplicate_similarity_threshold"`
	} `yaml:"rank"`

	Lifecycle struct {
		HighPriorityInterval   string `yaml:"high_priority_interval"`
		MediumPriorityInterval string `yaml:"medium_priority_interval"`
		LowPriorityInterval    string `yaml:"low_priority_interval"`
		DeletionGracePeriod    string `yaml:"deletion_grace_period"`
		RecrawlAttempts        int    `yaml:"recrawl_attempts"`
	} `yaml:"lifecycle"`

	Cassandra struct {
		Hosts             []string `yaml:"hosts"`
		Keyspace          string   `yaml:"keyspace"`
		ReplicationFactor int      `yaml:"replication_factor"`
		Timeout           string   `yaml:"timeout"`
	} `yaml:"cassandra"`

	API struct {
		Port      int    `yaml:"port"`
		CookieKey string `yaml:"cookie_key"`
	} `yaml:"api"`
}

// SetDefaultConfig resets the Config object to default values, regardless of
// what was set by any configuration file.
func SetDefaultConfig() {
	// NOTE: go-yaml has a bug where it does not overwrite sequence values
	// (i.e. lists), it appends to them. See
	// https://github.com/go-yaml/yaml/issues/48. Until fixed, any sequence
	// value must be nil'd here and re-defaulted in readConfig if unmarshal did
	// not fill anything in.

	Config.UserAgent = "CustomSearchBot/1.0"
	Config.RequestTimeout = "30s"

	Config.Frontier.CrawlDelay = 1.0
	Config.Frontier.MaxPagesPerDomain = 10000
	Config.Frontier.MaxCrawlThreads = 10

	Config.Index.BatchSize = 1000
	Config.Index.MinTermLength = 2
	Config.Index.MaxTermLength = 100

	Config.Query.MaxResultsPerPage = 10
	Config.Query.DefaultResults = 20
	Config.Query.Timeout = "5s"

	Config.Rank.ContentRelevanceWeight = 0.4
	Config.Rank.PageRankWeight = 0.25
	Config.Rank.FreshnessWeight = 0.15
	Config.Rank.UserSignalsWeight = 0.1
	Config.Rank.TechnicalSEOWeight = 0.1
	Config.Rank.DampingFactor = 0.85
	Config.Rank.PersonalizedDampingFactor = 0.15
	Config.Rank.MaxIterations = 50
	Config.Rank.Tolerance = 1e-6
	Config.Rank.DuplicateSimilarityThreshold = 0.85

	Config.Lifecycle.HighPriorityInterval = "1h"
	Config.Lifecycle.MediumPriorityInterval = "24h"
	Config.Lifecycle.LowPriorityInterval = "168h"
	Config.Lifecycle.DeletionGracePeriod = "336h"
	Config.Lifecycle.RecrawlAttempts = 3

	Config.Cassandra.Hosts = []string{"localhost"}
	Config.Cassandra.Keyspace = "walker"
	Config.Cassandra.ReplicationFactor = 3
	Config.Cassandra.Timeout = "2s"

	Config.API.Port = 3000
	Config.API.CookieKey = "walker-search-session"
}

// ReadConfigFile sets a new path to find the walker yaml config file and
// forces a reload of the config.
func ReadConfigFile(path string) error {
	ConfigName = path
	return readConfig()
}

func assertConfigInvariants() error {
	var errs []string

	sum := Config.Rank.ContentRelevanceWeight + Config.Rank.PageRankWeight +
		Config.Rank.FreshnessWeight + Config.Rank.UserSignalsWeight +
		Config.Rank.TechnicalSEOWeight
	if sum < 0.999 || sum > 1.001 {
		errs = append(errs, fmt.Sprintf("Rank weights must sum to 1.0, got %v", sum))
	}

	if _, err := time.ParseDuration(Config.RequestTimeout); err != nil {
		errs = append(errs, fmt.Sprintf("RequestTimeout failed to parse: %v", err))
	}
	if _, err := time.ParseDuration(Config.Query.Timeout); err != nil {
		errs = append(errs, fmt.Sprintf("Query.Timeout failed to parse: %v", err))
	}
	if _, err := time.ParseDuration(Config.Cassandra.Timeout); err != nil {
		errs = append(errs, fmt.Sprintf("Cassandra.Timeout failed to parse: %v", err))
	}
	if Config.Frontier.MaxCrawlThreads < 1 {
		errs = append(errs, "Frontier.MaxCrawlThreads must be greater than 0")
	}

	if len(errs) > 0 {
		em := ""
		for _, err := range errs {
			log.Error().Str("error", err).Msg("config error")
			em += "\t" + err + "\n"
		}
		return fmt.Errorf("config error:\n%v", em)
	}
	return nil
}

func readConfig() error {
	SetDefaultConfig()

	// See NOTE in SetDefaultConfig regarding sequence values
	Config.Cassandra.Hosts = []string{}

	data, err := ioutil.ReadFile(ConfigName)
	if err != nil {
		return fmt.Errorf("failed to read config file (%v): %v", ConfigName, err)
	}
	if err := yaml.Unmarshal(data, &Config); err != nil {
		return fmt.Errorf("failed to unmarshal yaml from config file (%v): %v", ConfigName, err)
	}

	if len(Config.Cassandra.Hosts) == 0 {
		Config.Cassandra.Hosts = []string{"localhost"}
	}

	if err := assertConfigInvariants(); err != nil {
		return err
	}
	log.Info().Str("config", ConfigName).Msg("loaded config file")
	return nil
}
