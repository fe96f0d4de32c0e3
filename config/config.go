package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/cache"
)

// Member ordering applied to a cluster before profile folding.
const (
	OrderInput  = "input"
	OrderLength = "length"
)

// Catalog backends.
const (
	BackendDirectory = "directory"
	BackendFASTA     = "fasta"
	BackendKV        = "kv"
	BackendEntrez    = "entrez"
)

// Config is the complete stage configuration.
type Config struct {
	WorkDir     string `json:"work_dir"`
	Manifest    string `json:"manifest"`
	ResultsFile string `json:"results_file"`
	Extension   string `json:"extension"`

	// OverlapThreshold is the strict lower bound on both coverage fractions of an accepted hit.
	OverlapThreshold float64 `json:"overlap_threshold"`

	// MaxDistance is BACKBONE_MAX_DISTANCE: a profile merge is kept only when
	// its mean pairwise distance is strictly below it.
	MaxDistance float64 `json:"max_distance"`

	// Workers bounds task parallelism; 0 means one per CPU.
	Workers     int    `json:"workers"`
	MemberOrder string `json:"member_order"`

	Search  SearchConfig  `json:"search"`
	Aligner AlignerConfig `json:"aligner"`
	Catalog CatalogConfig `json:"catalog"`
	Metrics MetricsConfig `json:"metrics"`
}

// SearchConfig configures the BLAST+ similarity search.
type SearchConfig struct {
	MakeBlastDB string        `json:"makeblastdb"`
	Program     string        `json:"program"`
	DBType      string        `json:"db_type"`
	DBName      string        `json:"db_name"`
	EValue      float64       `json:"evalue"`
	Threads     int           `json:"threads"`
	Timeout     time.Duration `json:"timeout"`
}

// AlignerConfig configures the external profile aligner.
type AlignerConfig struct {
	Path    string        `json:"path"`
	Args    []string      `json:"args,omitempty"`
	Timeout time.Duration `json:"timeout"`
}

// CatalogConfig selects and configures the sequence catalog backend.
type CatalogConfig struct {
	Backend string       `json:"backend"`
	Dir     string       `json:"dir,omitempty"`
	File    string       `json:"file,omitempty"`
	KV      KVConfig     `json:"kv"`
	Entrez  EntrezConfig `json:"entrez"`
	Cache   cache.Config `json:"cache"`
}

// KVConfig locates a JetStream key-value bucket holding sequences.
type KVConfig struct {
	URLs   []string `json:"urls,omitempty"`
	Bucket string   `json:"bucket"`
}

// EntrezConfig configures the NCBI E-utilities backend.
type EntrezConfig struct {
	BaseURL  string        `json:"base_url"`
	Database string        `json:"database"`
	APIKey   string        `json:"api_key,omitempty"`
	Email    string        `json:"email,omitempty"`
	Tool     string        `json:"tool"`
	Timeout  time.Duration `json:"timeout"`
}

// MetricsConfig controls batch metrics export.
type MetricsConfig struct {
	Textfile string `json:"textfile,omitempty"`
}

// Default returns the configuration used before any layer is applied.
func Default() *Config {
	return &Config{
		ResultsFile:      "merged.txt",
		Extension:        ".fa",
		OverlapThreshold: 0.51,
		MaxDistance:      0.1,
		MemberOrder:      OrderInput,
		Search: SearchConfig{
			MakeBlastDB: "makeblastdb",
			Program:     "blastn",
			DBType:      "nucl",
			DBName:      "seeds.fa",
			EValue:      1e-10,
			Threads:     1,
			Timeout:     time.Hour,
		},
		Aligner: AlignerConfig{
			Path:    "muscle",
			Timeout: 30 * time.Minute,
		},
		Catalog: CatalogConfig{
			Backend: BackendDirectory,
			KV: KVConfig{
				URLs:   []string{"nats://localhost:4222"},
				Bucket: "SEQUENCES",
			},
			Entrez: EntrezConfig{
				BaseURL:  "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
				Database: "nucleotide",
				Tool:     "orthomerge",
				Timeout:  30 * time.Second,
			},
			Cache: cache.DefaultConfig(),
		},
	}
}

// Validate checks semantic ranges and fills derived defaults.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return invalid("work_dir is required")
	}
	if c.Manifest == "" {
		return invalid("manifest is required")
	}
	if c.ResultsFile == "" {
		return invalid("results_file is required")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return invalid(fmt.Sprintf("extension %q must start with a dot", c.Extension))
	}
	if c.OverlapThreshold <= 0 || c.OverlapThreshold >= 1 {
		return invalid(fmt.Sprintf("overlap_threshold must be in (0, 1), got %v", c.OverlapThreshold))
	}
	if c.MaxDistance <= 0 || c.MaxDistance > 1 {
		return invalid(fmt.Sprintf("max_distance must be in (0, 1], got %v", c.MaxDistance))
	}
	if c.Workers < 0 {
		return invalid(fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	switch c.MemberOrder {
	case OrderInput, OrderLength:
	default:
		return invalid(fmt.Sprintf("member_order must be %q or %q, got %q", OrderInput, OrderLength, c.MemberOrder))
	}

	if err := c.Search.validate(); err != nil {
		return err
	}
	if c.Aligner.Path == "" {
		return invalid("aligner.path is required")
	}
	if c.Aligner.Timeout < 0 {
		return invalid("aligner.timeout must not be negative")
	}
	return c.Catalog.validate(c.WorkDir)
}

func (s *SearchConfig) validate() error {
	if s.MakeBlastDB == "" || s.Program == "" {
		return invalid("search.makeblastdb and search.program are required")
	}
	if s.DBType != "nucl" && s.DBType != "prot" {
		return invalid(fmt.Sprintf("search.db_type must be nucl or prot, got %q", s.DBType))
	}
	if s.DBName == "" {
		return invalid("search.db_name is required")
	}
	if s.EValue <= 0 {
		return invalid(fmt.Sprintf("search.evalue must be positive, got %v", s.EValue))
	}
	if s.Threads < 1 {
		return invalid(fmt.Sprintf("search.threads must be at least 1, got %d", s.Threads))
	}
	if s.Timeout < 0 {
		return invalid("search.timeout must not be negative")
	}
	return nil
}

func (c *CatalogConfig) validate(workDir string) error {
	switch c.Backend {
	case BackendDirectory:
		if c.Dir == "" {
			c.Dir = workDir
		}
	case BackendFASTA:
		if c.File == "" {
			return invalid("catalog.file is required for the fasta backend")
		}
	case BackendKV:
		if len(c.KV.URLs) == 0 || c.KV.Bucket == "" {
			return invalid("catalog.kv.urls and catalog.kv.bucket are required for the kv backend")
		}
	case BackendEntrez:
		if c.Entrez.BaseURL == "" || c.Entrez.Database == "" {
			return invalid("catalog.entrez.base_url and catalog.entrez.database are required")
		}
	default:
		return invalid(fmt.Sprintf("unknown catalog backend %q", c.Backend))
	}

	if err := c.Cache.Validate(); err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "catalog.cache")
	}
	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg), "config", "Validate", "check configuration")
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Aligner.Args = append([]string(nil), c.Aligner.Args...)
	clone.Catalog.KV.URLs = append([]string(nil), c.Catalog.KV.URLs...)
	return &clone
}

// String returns the configuration as JSON with secrets masked.
func (c *Config) String() string {
	masked := c.Clone()
	if masked.Catalog.Entrez.APIKey != "" {
		masked.Catalog.Entrez.APIKey = "***"
	}
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// SaveToFile writes the configuration as JSON.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "config", "SaveToFile", "marshal configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "config", "SaveToFile", "write configuration")
	}
	return nil
}
