package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/aggregator"
	"github.com/simao/jaxe/internal/config"
	"github.com/simao/jaxe/internal/model"
	"github.com/simao/jaxe/internal/output"
	"github.com/simao/jaxe/internal/pipeline"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const httpRecord = `{"logger":"X","http_status":"204","http_method":"PUT","http_path":"/api/v1/user",` +
	`"at":"2022-03-24T08:56:20.576Z","msg":"http request","level":"INFO"}`

const httpLine = "I|2022-03-24T08:56:20.576Z|http_method=PUT http_path=/api/v1/user http_status=204 logger=X msg=http request"

func newPipeline(t *testing.T, values map[string]any) *pipeline.Pipeline {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)

	for key, value := range values {
		v.Set(key, value)
	}

	cfg, err := config.Load(v, nil, false)
	require.NoError(t, err)

	return pipeline.New(cfg, output.NewTextRenderer(cfg.ColorsEnabled), aggregator.New(nil), zerolog.Nop())
}

func run(t *testing.T, p *pipeline.Pipeline, input string) string {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, p.RunReader(context.Background(), strings.NewReader(input), "-", &out))

	return out.String()
}

func TestPipeline_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		values   map[string]any
		name     string
		input    string
		expected string
	}{
		{
			name:     "no filter",
			input:    httpRecord + "\n",
			expected: httpLine + "\n",
		},
		{
			name:     "filter false drops the record",
			values:   map[string]any{config.KeyFilter: "http_status==404"},
			input:    httpRecord + "\n",
			expected: "",
		},
		{
			name:     "filter true emits the record unchanged",
			values:   map[string]any{config.KeyFilter: "http_status==204"},
			input:    httpRecord + "\n",
			expected: httpLine + "\n",
		},
		{
			name:     "extract",
			values:   map[string]any{config.KeyExtract: "http_method,http_status,msg"},
			input:    httpRecord + "\n",
			expected: "I|2022-03-24T08:56:20.576Z|http_method=PUT http_status=204 msg=http request\n",
		},
		{
			name:     "opaque line passes through",
			input:    "plain text line\n",
			expected: "plain text line\n",
		},
		{
			name:     "opaque line dropped with json-only",
			values:   map[string]any{config.KeyJSONOnly: true},
			input:    "plain text line\n",
			expected: "",
		},
		{
			name:     "non-object json is opaque",
			input:    "[1,2]\n\"s\"\n",
			expected: "[1,2]\n\"s\"\n",
		},
		{
			name:     "opaque lines are never filtered",
			values:   map[string]any{config.KeyFilter: "exists(nothing)"},
			input:    "plain\n{\"a\":1}\n",
			expected: "plain\n",
		},
		{
			name:     "last line without newline",
			input:    "first\n{\"msg\":\"last\"}",
			expected: "first\nmsg=last\n",
		},
		{
			name:     "carriage return kept on opaque lines",
			input:    "plain\r\n{\"msg\":\"x\"}\r\n",
			expected: "plain\r\nmsg=x\n",
		},
		{
			name:     "empty lines are opaque",
			input:    "\n\n",
			expected: "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, run(t, newPipeline(t, tt.values), tt.input))
		})
	}
}

func TestPipeline_PreservesOrder(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, map[string]any{config.KeyFilter: "n != 2"})

	var input strings.Builder
	for _, n := range []string{"1", "2", "3"} {
		input.WriteString(`{"n":` + n + "}\nline " + n + "\n")
	}

	got := run(t, p, input.String())
	assert.Equal(t, "n=1\nline 1\nline 2\nn=3\nline 3\n", got)
}

func TestPipeline_LongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 1<<20)
	got := run(t, newPipeline(t, nil), `{"msg":"`+long+`"}`+"\n")

	assert.Equal(t, "msg="+long+"\n", got)
}

func TestPipeline_SlowReader(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)

	var out bytes.Buffer
	err := p.RunReader(context.Background(), iotest.OneByteReader(strings.NewReader(httpRecord+"\nplain\n")), "-", &out)
	require.NoError(t, err)

	assert.Equal(t, httpLine+"\nplain\n", out.String())
}

func TestPipeline_ReadError(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)

	var out bytes.Buffer
	err := p.RunReader(context.Background(), iotest.ErrReader(assert.AnError), "broken", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "broken")
}

func TestPipeline_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, newPipeline(t, nil).RunReader(ctx, strings.NewReader("a\nb\n"), "-", &out))
	assert.Empty(t, out.String())
}

func TestPipeline_Stats(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, map[string]any{config.KeyFilter: "level != DEBUG", config.KeyJSONOnly: true})

	run(t, p, `{"level":"INFO"}`+"\n"+`{"level":"DEBUG"}`+"\nplain\n"+`{"level":"error"}`+"\n{}\n")

	stats := p.Stats()
	assert.Equal(t, int64(5), stats.Lines)
	assert.Equal(t, int64(4), stats.Structured)
	assert.Equal(t, int64(1), stats.Opaque)
	assert.Equal(t, int64(1), stats.OpaqueDropped)
	assert.Equal(t, int64(1), stats.Filtered)
	assert.Equal(t, int64(3), stats.Emitted)
	assert.Equal(t, map[string]int64{"I": 1, "E": 1, aggregator.NoLevel: 1}, stats.LevelCounts)
}

func TestPipeline_RunLines(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, map[string]any{config.KeyExtract: "msg"})

	lines := make(chan model.RawLine, 3)
	lines <- model.RawLine{Text: `{"msg":"one","level":"warn"}`, Source: "a.log"}
	lines <- model.RawLine{Text: "not json", Source: "a.log"}
	lines <- model.RawLine{Text: `{"msg":"two"}`, Source: "b.log"}
	close(lines)

	var out bytes.Buffer
	require.NoError(t, p.RunLines(context.Background(), lines, &out))

	assert.Equal(t, "W|msg=one\nnot json\nmsg=two\n", out.String())
}

func TestPipeline_RunInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	require.NoError(t, os.WriteFile(first, []byte(`{"msg":"from first"}`+"\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("from second\n"), 0o600))

	p := newPipeline(t, nil)

	var out bytes.Buffer
	err := p.RunInputs(context.Background(), []string{first, config.StdinPath, second}, strings.NewReader(`{"msg":"from stdin"}`+"\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "msg=from first\nmsg=from stdin\nfrom second\n", out.String())
}

func TestPipeline_RunInputsMissingFile(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)

	var out bytes.Buffer
	err := p.RunInputs(context.Background(), []string{filepath.Join(t.TempDir(), "missing.log")}, nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_Colors(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, map[string]any{config.KeyColor: "always"})

	got := run(t, p, httpRecord+"\nplain\n")

	assert.Contains(t, got, "\x1b[")
	assert.True(t, strings.HasSuffix(got, "\nplain\n"), "opaque lines are written uncolored: %q", got)
}
