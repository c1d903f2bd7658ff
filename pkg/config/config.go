package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"FinPanel/internal/domain/models"
	"FinPanel/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"5s"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	Metrics struct {
		Path string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Store struct {
		Backend string `yaml:"backend" default:"sqlite" validate:"oneof=sqlite clickhouse"`
	} `yaml:"store"`
	SQLite struct {
		Path string `yaml:"path" default:"data/panels.db"`
	} `yaml:"sqlite"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finpanel"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl" default:"6h"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Compression  string   `yaml:"compression" default:"snappy"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Producer     struct {
			Topic        string        `yaml:"topic" default:"finpanel.panels.built"`
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Topic      string        `yaml:"topic" default:"finpanel.panels.rebuild"`
			GroupID    string        `yaml:"group_id" default:"finpanel"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"1s"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"30s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"finpanel.panels.rebuild.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Fred struct {
		BaseURL   string        `yaml:"base_url" default:"https://fred.stlouisfed.org/graph/fredgraph.csv"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		RPS       float64       `yaml:"rps" default:"2"`
		Burst     int           `yaml:"burst" default:"2"`
		Retries   int           `yaml:"retries" default:"3"`
		Backoff   time.Duration `yaml:"backoff" default:"2s"`
		UserAgent string        `yaml:"user_agent" default:"finpanel/1.0"`
	} `yaml:"fred"`
	Files struct {
		Dir string `yaml:"dir" default:"data/files"`
	} `yaml:"files"`
	Pipeline struct {
		Concurrency int    `yaml:"concurrency" default:"4" validate:"gt=0"`
		OutputDir   string `yaml:"output_dir" default:"data/output"`
	} `yaml:"pipeline"`
	Panels []PanelConfig `yaml:"panels" validate:"required,min=1,dive"`
}

// PanelConfig declares one panel as data: which series to pull and which
// rules to apply.
type PanelConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Calendar string `yaml:"calendar"`
	// Start and End bound the window; empty is open.
	Start        string           `yaml:"start"`
	End          string           `yaml:"end"`
	Series       []SeriesConfig   `yaml:"series" validate:"required,min=1,dive"`
	Units        []UnitConfig     `yaml:"units" validate:"dive"`
	CarryForward []string         `yaml:"carry_forward"`
	Fallbacks    []FallbackConfig `yaml:"fallbacks" validate:"dive"`
	Manual       []string         `yaml:"manual"`
	// Overrides maps column id to date to value.
	Overrides map[string]map[string]float64 `yaml:"overrides"`
	Drop      []string                      `yaml:"drop"`
	// Labels describes manual and derived columns for exports.
	Labels map[string]string `yaml:"labels"`
}

type SeriesConfig struct {
	ID           string   `yaml:"id" validate:"required"`
	Source       string   `yaml:"source" default:"fred" validate:"required"`
	Ref          string   `yaml:"ref"`
	DateColumn   string   `yaml:"date_column"`
	ValueColumns []string `yaml:"value_columns"`
	Description  string   `yaml:"description"`
}

type UnitConfig struct {
	Column string  `yaml:"column" validate:"required"`
	Factor float64 `yaml:"factor" validate:"required"`
	Op     string  `yaml:"op" default:"divide" validate:"oneof=divide multiply"`
}

type FallbackConfig struct {
	Column    string `yaml:"column" validate:"required"`
	Primary   string `yaml:"primary" validate:"required"`
	Secondary string `yaml:"secondary" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies defaults, decodes YAML over them and validates. Defaults go
// first so an explicit false or 0 in the file is kept; list elements only
// exist after decoding and get their defaults afterwards.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i := range c.Panels {
		if err := c.Panels[i].setDefaults(); err != nil {
			return nil, fmt.Errorf("panel %d defaults: %w", i, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (p *PanelConfig) setDefaults() error {
	for i := range p.Series {
		if err := defaults.Set(&p.Series[i]); err != nil {
			return err
		}
	}
	for i := range p.Units {
		if err := defaults.Set(&p.Units[i]); err != nil {
			return err
		}
	}
	return nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("FRED_BASE_URL"); v != "" {
		c.Fred.BaseURL = v
	}
	if v := os.Getenv("FILES_DIR"); v != "" {
		c.Files.Dir = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate runs struct tag validation, then the checks tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}

	seen := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		if seen[p.Name] {
			return fmt.Errorf("panels: duplicate name %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := p.Definition(); err != nil {
			return err
		}
	}
	return nil
}

// Definitions converts every panel declaration.
func (c *Config) Definitions() ([]models.PanelDefinition, error) {
	out := make([]models.PanelDefinition, 0, len(c.Panels))
	for _, p := range c.Panels {
		d, err := p.Definition()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Definition converts the declaration into the builder's records. Rule
// semantics (unknown columns and the like) are checked by the builder.
func (p PanelConfig) Definition() (models.PanelDefinition, error) {
	d := models.PanelDefinition{Name: p.Name, Calendar: p.Calendar, Labels: p.Labels}
	var err error
	if d.Window.Start, err = util.ParseDatePtr(p.Start); err != nil {
		return d, fmt.Errorf("panel %s: start: %w", p.Name, err)
	}
	if d.Window.End, err = util.ParseDatePtr(p.End); err != nil {
		return d, fmt.Errorf("panel %s: end: %w", p.Name, err)
	}

	for _, s := range p.Series {
		d.Series = append(d.Series, models.SeriesSpec{
			ID:           s.ID,
			Source:       s.Source,
			Ref:          s.Ref,
			DateColumn:   s.DateColumn,
			ValueColumns: s.ValueColumns,
			Description:  s.Description,
		})
	}
	for _, u := range p.Units {
		d.Rules.Units = append(d.Rules.Units, models.UnitRule{
			Column: u.Column,
			Factor: u.Factor,
			Op:     models.UnitOp(u.Op),
		})
	}
	for _, id := range p.CarryForward {
		d.Rules.Fills = append(d.Rules.Fills, models.FillPolicy{Column: id, Mode: models.FillCarryForward})
	}
	for _, f := range p.Fallbacks {
		d.Rules.Fallbacks = append(d.Rules.Fallbacks, models.FallbackRule{
			Column:    f.Column,
			Primary:   f.Primary,
			Secondary: f.Secondary,
		})
	}
	d.Rules.Manual = p.Manual
	d.Rules.Drop = p.Drop

	overrides, err := p.overrides()
	if err != nil {
		return d, err
	}
	d.Rules.Overrides = overrides
	return d, nil
}

// overrides flattens the column -> date -> value table, ordered by date
// then column so the result does not depend on map iteration.
func (p PanelConfig) overrides() ([]models.Override, error) {
	var out []models.Override
	for col, byDate := range p.Overrides {
		for ds, v := range byDate {
			ts, err := util.ParseDate(ds)
			if err != nil {
				return nil, fmt.Errorf("panel %s: override %s@%s: %w", p.Name, col, ds, err)
			}
			out = append(out, models.Override{Timestamp: ts, Column: col, Value: v})
		}
	}
	slices.SortFunc(out, func(a, b models.Override) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.Column, b.Column)
	})
	return out, nil
}
