// Package experiment runs the low-rank kernel regression benchmark: a sweep
// over methods, ranks and regularization strengths with repeated random
// splits, written to CSV and summarized as tables and plots.
package experiment

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Method names accepted in Config.Methods.
const (
	MethodICD     = "ICD"
	MethodNystrom = "Nystrom"
	MethodRFF     = "RFF"
)

// EnvPrefix prefixes environment overrides, e.g. LOWRANK_GAMMA_BASE.
const EnvPrefix = "LOWRANK"

// GammaConfig describes the bandwidths base^e for count exponents e evenly
// spaced in [min_exp, max_exp].
type GammaConfig struct {
	Base   float64 `mapstructure:"base" validate:"gt=0"`
	MinExp float64 `mapstructure:"min_exp"`
	MaxExp float64 `mapstructure:"max_exp" validate:"gtefield=MinExp"`
	Count  int     `mapstructure:"count" validate:"gte=1"`
}

// Range returns the bandwidths in increasing exponent order.
func (g GammaConfig) Range() []float64 {
	exps := []float64{g.MinExp}
	if g.Count > 1 {
		exps = make([]float64, g.Count)
		floats.Span(exps, g.MinExp, g.MaxExp)
	}
	return lo.Map(exps, func(e float64, _ int) float64 {
		return math.Pow(g.Base, e)
	})
}

// TuneConfig bounds the hyperparameter search of the tune command.
type TuneConfig struct {
	Trials    int     `mapstructure:"trials" validate:"gte=1"`
	LambdaMin float64 `mapstructure:"lambda_min" validate:"gt=0"`
	LambdaMax float64 `mapstructure:"lambda_max" validate:"gtfield=LambdaMin"`
}

// Config is the benchmark configuration.
type Config struct {
	Dataset        string      `mapstructure:"dataset" validate:"required"`
	DataDir        string      `mapstructure:"data_dir"`
	NRange         []int       `mapstructure:"n_range" validate:"required,min=1,dive,gte=1"`
	CVIterations   int         `mapstructure:"cv_iterations" validate:"gte=1"`
	TrainingSize   float64     `mapstructure:"training_size" validate:"gt=0,lt=1"`
	ValidationSize float64     `mapstructure:"validation_size" validate:"gte=0,lt=1"`
	Gamma          GammaConfig `mapstructure:"gamma"`
	RankRange      []int       `mapstructure:"rank_range" validate:"required,min=1,dive,gte=1"`
	LambdaRange    []float64   `mapstructure:"lambda_range" validate:"required,min=1,dive,gte=0"`
	Delta          int         `mapstructure:"delta" validate:"gte=0"`
	Methods        []string    `mapstructure:"methods" validate:"required,min=1,dive,oneof=ICD Nystrom RFF"`
	OutputDir      string      `mapstructure:"output_dir" validate:"required"`
	LogLevel       string      `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	Tune           TuneConfig  `mapstructure:"tune"`
}

// DefaultRankRange is 2..20 followed by 25..80 in steps of 5.
func DefaultRankRange() []int {
	return append(lo.RangeWithSteps(2, 21, 1), lo.RangeWithSteps(25, 85, 5)...)
}

// DefaultLambdaRange is 0 followed by 10^-5 .. 10^1.
func DefaultLambdaRange() []float64 {
	ls := make([]float64, 7)
	floats.LogSpan(ls, 1e-5, 10)
	return append([]float64{0}, ls...)
}

// SetDefaults registers the default configuration on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dataset", "synthetic")
	v.SetDefault("data_dir", "data")
	v.SetDefault("n_range", []int{30000, 100000})
	v.SetDefault("cv_iterations", 5)
	v.SetDefault("training_size", 0.6)
	v.SetDefault("validation_size", 0.2)
	v.SetDefault("gamma.base", 2.0)
	v.SetDefault("gamma.min_exp", -3.0)
	v.SetDefault("gamma.max_exp", 3.0)
	v.SetDefault("gamma.count", 7)
	v.SetDefault("rank_range", DefaultRankRange())
	v.SetDefault("lambda_range", DefaultLambdaRange())
	v.SetDefault("delta", 10)
	v.SetDefault("methods", []string{MethodICD, MethodNystrom, MethodRFF})
	v.SetDefault("output_dir", "output")
	v.SetDefault("log_level", "info")
	v.SetDefault("tune.trials", 50)
	v.SetDefault("tune.lambda_min", 1e-6)
	v.SetDefault("tune.lambda_max", 10.0)
}

// NewViper returns a viper instance with defaults and LOWRANK_ environment
// overrides registered.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file at path into v, then decodes
// and validates the result.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "experiment: read config %s", path)
		}
	}
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToWeakSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.Wrap(err, "experiment: decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the training and validation
// fractions leave room for a test set.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Namespace(), "failed '"+fe.Tag()+"' constraint", fe.Value())
		}
		return errors.Wrap(err, "experiment: validate config")
	}
	if c.TrainingSize+c.ValidationSize >= 1 {
		return errors.NewValidationError("validation_size",
			"training_size + validation_size must leave a test set", c.TrainingSize+c.ValidationSize)
	}
	return nil
}

// Combinations returns the number of rows a full sweep attempts.
func (c *Config) Combinations() int {
	return c.CVIterations * len(c.NRange) * len(c.Methods) * len(c.RankRange) * len(c.LambdaRange)
}
