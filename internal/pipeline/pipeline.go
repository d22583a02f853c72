// Package pipeline runs every input line through parsing, filtering and formatting.
package pipeline

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/aggregator"
	"github.com/simao/jaxe/internal/config"
	"github.com/simao/jaxe/internal/errors"
	"github.com/simao/jaxe/internal/filter"
	"github.com/simao/jaxe/internal/model"
	"github.com/simao/jaxe/internal/output"
	"github.com/simao/jaxe/internal/parser"
)

// Pipeline turns input lines into output lines. Each line is handled on its own:
// nothing carries over from one line to the next except the counters.
type Pipeline struct {
	parser            parser.Parser
	formatter         *output.Formatter
	filter            filter.Expression
	stats             *aggregator.Aggregator
	log               zerolog.Logger
	emitNonStructured bool
}

// New creates a Pipeline for cfg that renders with renderer and counts into stats.
func New(cfg *config.Config, renderer output.Renderer, stats *aggregator.Aggregator, log zerolog.Logger) *Pipeline {
	if stats == nil {
		stats = aggregator.New(nil)
	}

	return &Pipeline{
		parser:            parser.NewJSONParser(log),
		formatter:         output.NewFormatter(cfg.FormatterOptions(), renderer, log),
		filter:            cfg.Filter,
		stats:             stats,
		log:               log,
		emitNonStructured: cfg.EmitNonStructured,
	}
}

// Process returns the output line for line, or false when the line is dropped.
func (p *Pipeline) Process(line model.RawLine) (string, bool) {
	record := p.parser.Parse(line)

	if !record.IsStructured() {
		p.stats.RecordOpaque(p.emitNonStructured)
		return record.Line, p.emitNonStructured
	}

	if !filter.Evaluate(p.filter, record.Object) {
		p.stats.RecordFiltered()
		p.log.Debug().Str("source", line.Source).Msg("line dropped by filter")

		return "", false
	}

	projection := p.formatter.Project(record.Object)
	p.stats.RecordEmitted(projection.Level)

	return p.formatter.Render(projection), true
}

// RunReader processes every line of r until end of input, in order. Output is flushed
// whenever no more input is immediately available, so interactive pipes see each line
// as soon as it is complete.
func (p *Pipeline) RunReader(ctx context.Context, r io.Reader, source string, w io.Writer) error {
	reader := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return errors.WithStackTrace(out.Flush())
		}

		text, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			_ = out.Flush()
			return errors.Errorf("reading %s: %w", source, readErr)
		}

		if text != "" {
			if err := p.write(out, model.RawLine{Text: strings.TrimSuffix(text, "\n"), Source: source}); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return errors.WithStackTrace(out.Flush())
		}

		if reader.Buffered() == 0 {
			if err := out.Flush(); err != nil {
				return errors.WithStackTrace(err)
			}
		}
	}
}

// RunLines processes lines until the channel is closed or ctx is done.
func (p *Pipeline) RunLines(ctx context.Context, lines <-chan model.RawLine, w io.Writer) error {
	out := bufio.NewWriter(w)

	for {
		select {
		case <-ctx.Done():
			return errors.WithStackTrace(out.Flush())
		case line, ok := <-lines:
			if !ok {
				return errors.WithStackTrace(out.Flush())
			}

			if err := p.write(out, line); err != nil {
				return err
			}

			if len(lines) == 0 {
				if err := out.Flush(); err != nil {
					return errors.WithStackTrace(err)
				}
			}
		}
	}
}

// RunInputs reads the given paths one after another; config.StdinPath reads stdin.
func (p *Pipeline) RunInputs(ctx context.Context, paths []string, stdin io.Reader, w io.Writer) error {
	for _, path := range paths {
		if ctx.Err() != nil {
			return nil
		}

		if path == config.StdinPath {
			if err := p.RunReader(ctx, stdin, path, w); err != nil {
				return err
			}

			continue
		}

		if err := p.runFile(ctx, path, w); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) runFile(ctx context.Context, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	defer f.Close()

	p.log.Debug().Str("path", path).Msg("reading file")

	return p.RunReader(ctx, f, path, w)
}

// Stats returns the counters of the run so far.
func (p *Pipeline) Stats() aggregator.Stats {
	return p.stats.Snapshot()
}

func (p *Pipeline) write(out *bufio.Writer, line model.RawLine) error {
	text, ok := p.Process(line)
	if !ok {
		return nil
	}

	if _, err := out.WriteString(text); err != nil {
		return errors.WithStackTrace(err)
	}

	return errors.WithStackTrace(out.WriteByte('\n'))
}
