package aggregator

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

func TestCounters(t *testing.T) {
	agg := New(func() int { return 2 })

	agg.RecordOpaque(true)
	agg.RecordOpaque(false)
	agg.RecordFiltered()
	agg.RecordEmitted("I")
	agg.RecordEmitted("I")
	agg.RecordEmitted("E")
	agg.RecordEmitted("")

	stats := agg.Snapshot()
	if stats.Lines != 7 {
		t.Errorf("expected 7 lines, got %d", stats.Lines)
	}
	if stats.Structured != 5 {
		t.Errorf("expected 5 structured, got %d", stats.Structured)
	}
	if stats.Opaque != 2 || stats.OpaqueDropped != 1 {
		t.Errorf("expected 2 opaque with 1 dropped, got %d and %d", stats.Opaque, stats.OpaqueDropped)
	}
	if stats.Filtered != 1 {
		t.Errorf("expected 1 filtered, got %d", stats.Filtered)
	}
	if stats.Emitted != 4 {
		t.Errorf("expected 4 emitted, got %d", stats.Emitted)
	}
	if stats.FilesRead != 2 {
		t.Errorf("expected 2 files read, got %d", stats.FilesRead)
	}
	if stats.LPS <= 0 {
		t.Errorf("expected positive LPS, got %f", stats.LPS)
	}
}

func TestLevelCounts(t *testing.T) {
	agg := New(nil)

	agg.RecordEmitted("I")
	agg.RecordEmitted("I")
	agg.RecordEmitted("E")
	agg.RecordEmitted("W")
	agg.RecordEmitted("E")
	agg.RecordEmitted("")

	stats := agg.Snapshot()
	if stats.LevelCounts["I"] != 2 {
		t.Errorf("expected 2 I, got %d", stats.LevelCounts["I"])
	}
	if stats.LevelCounts["E"] != 2 {
		t.Errorf("expected 2 E, got %d", stats.LevelCounts["E"])
	}
	if stats.LevelCounts["W"] != 1 {
		t.Errorf("expected 1 W, got %d", stats.LevelCounts["W"])
	}
	if stats.LevelCounts[NoLevel] != 1 {
		t.Errorf("expected 1 record without level, got %d", stats.LevelCounts[NoLevel])
	}
	if stats.FilesRead != 0 {
		t.Errorf("expected 0 files read, got %d", stats.FilesRead)
	}

	// The snapshot is a copy.
	stats.LevelCounts["I"] = 100
	if agg.Snapshot().LevelCounts["I"] != 2 {
		t.Errorf("snapshot must not alias the aggregator's counters")
	}
}

func TestConcurrentSnapshot(t *testing.T) {
	agg := New(nil)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			agg.Snapshot()
		}
	}()

	for i := 0; i < 100; i++ {
		agg.RecordEmitted("D")
	}

	wg.Wait()

	if got := agg.Snapshot().Emitted; got != 100 {
		t.Errorf("expected 100 emitted, got %d", got)
	}
}

func TestStatsLogObject(t *testing.T) {
	agg := New(func() int { return 1 })
	agg.RecordEmitted("W")
	agg.RecordFiltered()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().EmbedObject(agg.Snapshot()).Msg("run summary")

	out := buf.String()
	if got := gjson.Get(out, "lines").Int(); got != 2 {
		t.Errorf("expected lines=2 in %s", out)
	}
	if got := gjson.Get(out, "levels.W").Int(); got != 1 {
		t.Errorf("expected levels.W=1 in %s", out)
	}
	if got := gjson.Get(out, "files_read").Int(); got != 1 {
		t.Errorf("expected files_read=1 in %s", out)
	}
}
