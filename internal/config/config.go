// Package config resolves flags, environment variables and the config file into the
// read-only Config used for a whole run.
package config

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/errors"
	"github.com/simao/jaxe/internal/filter"
	"github.com/simao/jaxe/internal/keypath"
	"github.com/simao/jaxe/internal/output"
	"github.com/simao/jaxe/internal/watcher"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys shared by flags, the config file and, upper-cased with the JAXE_ prefix, the environment.
const (
	KeyExtract  = "extract"
	KeyOmit     = "omit"
	KeyFilter   = "filter"
	KeyLevel    = "level"
	KeyTime     = "time"
	KeyNoColors = "no-colors"
	KeyColor    = "color"
	KeyJSONOnly = "json-only"
	KeyOutput   = "output"
	KeyFollow   = "follow"
	KeyLogLevel = "log-level"
)

// EnvPrefix is prepended to every key to form its environment variable.
const EnvPrefix = "JAXE"

// emptyList is the literal that stands for an empty list, e.g. --extract [].
const emptyList = "[]"

// StdinPath names standard input among the inputs.
const StdinPath = watcher.StdinPath

// ColorMode selects when colors are used.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// OutputMode selects the renderer.
type OutputMode string

const (
	OutputText OutputMode = "text"
	OutputJSON OutputMode = "json"
)

// Config is the resolved configuration of a run. It is built once by Load and never
// modified afterwards.
type Config struct {
	// Filter is nil when no filter was given. Several filters are combined with and.
	Filter  filter.Expression
	Filters []string

	Omit      []keypath.Path
	Extract   []keypath.Path
	LevelKeys []keypath.Path
	TimeKeys  []keypath.Path

	ColorsEnabled     bool
	EmitNonStructured bool

	Output   OutputMode
	Follow   bool
	Inputs   []string
	LogLevel zerolog.Level
}

// FormatterOptions returns the projection settings of the Config.
func (cfg *Config) FormatterOptions() output.Options {
	return output.Options{
		LevelKeys: cfg.LevelKeys,
		TimeKeys:  cfg.TimeKeys,
		Extract:   cfg.Extract,
		Omit:      cfg.Omit,
	}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLevel, []string{"level"})
	v.SetDefault(KeyTime, []string{"time", "at"})
	v.SetDefault(KeyColor, string(ColorAuto))
	v.SetDefault(KeyOutput, string(OutputText))
	v.SetDefault(KeyLogLevel, zerolog.WarnLevel.String())
}

// BindEnv makes every key readable from its JAXE_ environment variable.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load resolves the Config from v. inputs are the positional arguments; an empty list
// reads standard input. stdoutIsTerminal decides colors for ColorAuto.
//
// A filter that does not parse is reported as InvalidFilterSyntaxError.
func Load(v *viper.Viper, inputs []string, stdoutIsTerminal bool) (*Config, error) {
	cfg := &Config{
		Omit:              keypath.ParseAll(stringList(v.Get(KeyOmit))),
		Extract:           keypath.ParseAll(stringList(v.Get(KeyExtract))),
		LevelKeys:         keypath.ParseAll(stringList(v.Get(KeyLevel))),
		TimeKeys:          keypath.ParseAll(stringList(v.Get(KeyTime))),
		EmitNonStructured: !v.GetBool(KeyJSONOnly),
		Follow:            v.GetBool(KeyFollow),
		Inputs:            inputs,
	}

	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{StdinPath}
	}

	logLevel, err := zerolog.ParseLevel(strings.ToLower(v.GetString(KeyLogLevel)))
	if err != nil {
		return nil, errors.Errorf("invalid --%s %q: %w", KeyLogLevel, v.GetString(KeyLogLevel), err)
	}

	cfg.LogLevel = logLevel

	switch mode := OutputMode(strings.ToLower(v.GetString(KeyOutput))); mode {
	case OutputText, OutputJSON:
		cfg.Output = mode
	default:
		return nil, errors.Errorf("invalid --%s %q: expected %s or %s", KeyOutput, mode, OutputText, OutputJSON)
	}

	colors, err := colorsEnabled(v, stdoutIsTerminal)
	if err != nil {
		return nil, err
	}

	cfg.ColorsEnabled = colors && cfg.Output == OutputText

	cfg.Filters = filterList(v.Get(KeyFilter))

	exprs := make([]filter.Expression, 0, len(cfg.Filters))

	for i, query := range cfg.Filters {
		f, err := filter.Parse(query)
		if err != nil {
			index := i
			if len(cfg.Filters) == 1 {
				index = -1
			}

			return nil, newInvalidFilterSyntaxError(query, index, err)
		}

		exprs = append(exprs, f.Expression())
	}

	cfg.Filter = filter.Combine(exprs...)

	return cfg, nil
}

func colorsEnabled(v *viper.Viper, stdoutIsTerminal bool) (bool, error) {
	if v.GetBool(KeyNoColors) {
		return false, nil
	}

	switch mode := ColorMode(strings.ToLower(v.GetString(KeyColor))); mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case ColorAuto, "":
		return stdoutIsTerminal, nil
	default:
		return false, errors.Errorf("invalid --%s %q: expected %s, %s or %s", KeyColor, mode, ColorAuto, ColorAlways, ColorNever)
	}
}

// stringList coerces a list option. Strings, from the environment or the config file,
// are comma separated; lists may hold comma separated items too. Items are trimmed and
// empty items dropped. The single item "[]" means the empty list.
func stringList(value any) []string {
	if value == nil {
		return nil
	}

	var items []string

	if s, ok := value.(string); ok {
		items = strings.Split(s, ",")
	} else {
		for _, item := range cast.ToStringSlice(value) {
			items = append(items, strings.Split(item, ",")...)
		}
	}

	list := make([]string, 0, len(items))

	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	if len(list) == 1 && list[0] == emptyList {
		return nil
	}

	return list
}

// filterList coerces the filter option. Filters contain commas themselves, so a string
// is always a single filter.
func filterList(value any) []string {
	switch value := value.(type) {
	case nil:
		return nil
	case string:
		return []string{value}
	}

	return cast.ToStringSlice(value)
}
