package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/aggregator"
	"github.com/simao/jaxe/internal/config"
	"github.com/simao/jaxe/internal/errors"
	"github.com/simao/jaxe/internal/output"
	"github.com/simao/jaxe/internal/pipeline"
	"github.com/simao/jaxe/internal/tailer"
	"github.com/simao/jaxe/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load(v, args, isTerminal(cmd.OutOrStdout()))
	if err != nil {
		var syntaxErr config.InvalidFilterSyntaxError
		if errors.As(err, &syntaxErr) {
			fmt.Fprint(stderr, syntaxErr.Diagnostic(isTerminal(stderr)))
			return errors.ErrorWithExitCode{Err: err, ExitCode: exitInvalidFilter}
		}

		return err
	}

	log := newLogger(stderr, cfg.LogLevel)

	inputs, err := watcher.Expand(cfg.Inputs)
	if err != nil {
		return err
	}

	var renderer output.Renderer = output.NewTextRenderer(cfg.ColorsEnabled)
	if cfg.Output == config.OutputJSON {
		renderer = output.NewJSONRenderer()
	}

	log.Debug().
		Strs("inputs", inputs).
		Strs("filters", cfg.Filters).
		Str("output", string(cfg.Output)).
		Bool("colors", cfg.ColorsEnabled).
		Bool("follow", cfg.Follow).
		Msg("starting")

	if cfg.Follow {
		return follow(cmd, cfg, inputs, renderer, log)
	}

	stats := aggregator.New(func() int { return countFiles(inputs) })
	p := pipeline.New(cfg, renderer, stats, log)

	err = p.RunInputs(cmd.Context(), inputs, cmd.InOrStdin(), cmd.OutOrStdout())

	logSummary(log, p)

	return err
}

// follow reads the inputs to their end and then every line appended to them, until
// the process is interrupted.
func follow(cmd *cobra.Command, cfg *config.Config, inputs []string, renderer output.Renderer, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(inputs, log)
	if err != nil {
		return err
	}

	log.Info().Strs("paths", w.Paths()).Msg("following files")

	t := tailer.New(w, log)
	p := pipeline.New(cfg, renderer, aggregator.New(t.FileCount), log)

	go w.Start(ctx)
	go t.Start(ctx)

	err = p.RunLines(ctx, t.Lines(), cmd.OutOrStdout())

	log.Info().Msg("shutting down")
	logSummary(log, p)

	return err
}

func logSummary(log zerolog.Logger, p *pipeline.Pipeline) {
	stats := p.Stats()
	log.Debug().EmbedObject(stats).Msg("run summary")
}

func countFiles(inputs []string) int {
	n := 0

	for _, input := range inputs {
		if input != config.StdinPath {
			n++
		}
	}

	return n
}
