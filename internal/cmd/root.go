package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/config"
	"github.com/simao/jaxe/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitInvalidFilter is the exit status for a filter that does not parse.
const exitInvalidFilter = 2

// listFlags are bound to viper as they are; filter is handled apart since its values
// must never be comma split.
var listFlags = []string{
	config.KeyExtract,
	config.KeyOmit,
	config.KeyLevel,
	config.KeyTime,
}

var scalarFlags = []string{
	config.KeyNoColors,
	config.KeyColor,
	config.KeyJSONOnly,
	config.KeyOutput,
	config.KeyFollow,
	config.KeyLogLevel,
}

// NewRootCmd creates the jaxe command. Output goes to the command's out and err writers,
// and standard input is read from its in reader.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "jaxe [files...]",
		Short: "jaxe: a filter and pretty printer for JSON logs",
		Long: `jaxe reads JSON log lines from files or standard input and prints them in a
compact, human readable form. Records can be filtered with a small expression
language, and fields can be extracted or omitted. Lines that are not JSON objects
are passed through unless --json-only is given.

Examples:
  kubectl logs app | jaxe
  jaxe -f 'and(level=="ERROR",exists(user.id))' app.log
  jaxe -e msg,http_status -o logger "logs/**/*.log"
  jaxe -F --output json app.log`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.jaxe.yaml or ./.jaxe.yaml)")
	flags.StringSliceP(config.KeyExtract, "e", nil, "keys to print, in this order (comma separated, [] for none)")
	flags.StringSliceP(config.KeyOmit, "o", nil, "keys to leave out (comma separated, [] for none)")
	flags.StringArrayP(config.KeyFilter, "f", nil, "filter expression, e.g. 'and(level==\"ERROR\",exists(user))' (repeatable)")
	flags.StringSliceP(config.KeyLevel, "l", nil, "level keys in priority order (default: level)")
	flags.StringSliceP(config.KeyTime, "t", nil, "time keys in priority order (default: time,at)")
	flags.BoolP(config.KeyNoColors, "n", false, "disable colors")
	flags.String(config.KeyColor, string(config.ColorAuto), "when to use colors: auto, always, never")
	flags.BoolP(config.KeyJSONOnly, "j", false, "drop lines that are not JSON objects")
	flags.String(config.KeyOutput, string(config.OutputText), "output format: text, json")
	flags.BoolP(config.KeyFollow, "F", false, "keep reading lines appended to the given files")
	flags.String(config.KeyLogLevel, zerolog.WarnLevel.String(), "diagnostic log level: trace, debug, info, warn, error")

	return rootCmd
}

// Execute runs the root command and exits with the status its error carries.
func Execute() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var syntaxErr config.InvalidFilterSyntaxError
		if errors.As(err, &syntaxErr) {
			os.Exit(errors.ExitCode(err))
		}

		fmt.Fprintln(rootCmd.ErrOrStderr(), "jaxe:", err)
		os.Exit(errors.ExitCode(err))
	}
}

// initConfig merges flags, environment variables and the config file into v.
func initConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	config.SetDefaults(v)
	config.BindEnv(v)

	flags := cmd.Flags()

	for _, key := range append(listFlags, scalarFlags...) {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return errors.WithStackTrace(err)
		}
	}

	if flags.Changed(config.KeyFilter) {
		filters, err := flags.GetStringArray(config.KeyFilter)
		if err != nil {
			return errors.WithStackTrace(err)
		}

		v.Set(config.KeyFilter, filters)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return errors.Errorf("reading config file %s: %w", cfgFile, err)
		}

		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.AddConfigPath(".")
	v.SetConfigName(".jaxe")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// newLogger builds the diagnostic logger. Diagnostics always go to stderr, never
// mixed with the records.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
