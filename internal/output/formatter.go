package output

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/keypath"
	"github.com/simao/jaxe/internal/model"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Options selects what a Formatter keeps from a record.
type Options struct {
	// LevelKeys and TimeKeys are tried in order; the first that resolves is promoted.
	LevelKeys []keypath.Path
	TimeKeys  []keypath.Path
	// Extract, when non-empty, lists the only fields to keep, in output order.
	// Omit is ignored in that case.
	Extract []keypath.Path
	Omit    []keypath.Path
}

// Projection is the part of a record that gets written: the promoted level and time
// followed by the selected fields in output order.
type Projection struct {
	Level      string // level code, see LevelCode
	LevelKey   string
	LevelValue model.Value
	TimeKey    string
	Time       model.Value
	Fields     *orderedmap.OrderedMap[string, model.Value]
}

// HasLevel reports whether one of the level keys resolved.
func (p Projection) HasLevel() bool {
	return p.LevelKey != ""
}

// HasTime reports whether one of the time keys resolved.
func (p Projection) HasTime() bool {
	return p.TimeKey != ""
}

// Formatter projects structured records and renders them as single lines.
type Formatter struct {
	renderer Renderer
	log      zerolog.Logger
	opts     Options
}

// NewFormatter returns a Formatter that renders projections with renderer.
func NewFormatter(opts Options, renderer Renderer, log zerolog.Logger) *Formatter {
	return &Formatter{
		opts:     opts,
		renderer: renderer,
		log:      log,
	}
}

// Format returns the output line for record, without a trailing newline.
func (f *Formatter) Format(record model.Value) string {
	return f.Render(f.Project(record))
}

// Render renders a projection made by Project.
func (f *Formatter) Render(p Projection) string {
	return f.renderer.Render(p)
}

// Project selects the level, time and fields of record.
func (f *Formatter) Project(record model.Value) Projection {
	var p Projection

	var promoted []keypath.Path

	if path, value, ok := firstResolved(record, f.opts.LevelKeys); ok {
		p.Level = LevelCode(value)
		p.LevelKey = path.String()
		p.LevelValue = value
		promoted = append(promoted, path)
	}

	if path, value, ok := firstResolved(record, f.opts.TimeKeys); ok {
		p.TimeKey = path.String()
		p.Time = value
		promoted = append(promoted, path)
	}

	if len(f.opts.Extract) > 0 {
		p.Fields = f.extract(record, promoted)
	} else {
		p.Fields = f.omit(record, promoted)
	}

	return p
}

// extract keeps the configured paths, in configured order, skipping those that do not resolve.
func (f *Formatter) extract(record model.Value, promoted []keypath.Path) *orderedmap.OrderedMap[string, model.Value] {
	fields := orderedmap.New[string, model.Value](len(f.opts.Extract))

	for _, path := range f.opts.Extract {
		if keypath.Contains(promoted, path) {
			continue
		}

		value, ok := keypath.Resolve(record, path)
		if !ok {
			f.log.Debug().Str("key", path.String()).Msg("extracted key not found")
			continue
		}

		if _, present := fields.Get(path.String()); present {
			continue
		}

		fields.Set(path.String(), value)
	}

	return fields
}

// omit keeps every top-level key except the omitted and promoted ones, sorted by key.
// Nested omit paths are removed from inside the kept values.
func (f *Formatter) omit(record model.Value, promoted []keypath.Path) *orderedmap.OrderedMap[string, model.Value] {
	keys := record.Keys()
	slices.Sort(keys)

	fields := orderedmap.New[string, model.Value](len(keys))

	for _, key := range keys {
		path := keypath.Path{key}

		if keypath.Contains(promoted, path) {
			continue
		}

		if keypath.Contains(f.opts.Omit, path) {
			f.log.Debug().Str("key", key).Msg("not writing key due to --omit")
			continue
		}

		value, _ := record.Get(key)
		fields.Set(key, f.omitNested(record, key, value))
	}

	return fields
}

// omitNested removes the nested omit paths under key from value.
func (f *Formatter) omitNested(record model.Value, key string, value model.Value) model.Value {
	if !value.IsObject() {
		return value
	}

	raw := value.Raw()
	changed := false

	for _, path := range f.opts.Omit {
		if len(path) < 2 || path[0] != key {
			continue
		}

		// Only paths that walk through objects, so an array is never indexed.
		if _, ok := keypath.Resolve(record, path); !ok {
			continue
		}

		updated, err := sjson.Delete(raw, escapePath(path[1:]))
		if err != nil {
			f.log.Debug().Err(err).Str("key", path.String()).Msg("could not omit nested key")
			continue
		}

		f.log.Debug().Str("key", path.String()).Msg("not writing key due to --omit")

		raw = updated
		changed = true
	}

	if !changed {
		return value
	}

	trimmed, err := model.Decode(raw)
	if err != nil {
		return value
	}

	return trimmed
}

// firstResolved returns the first of paths that resolves in record.
func firstResolved(record model.Value, paths []keypath.Path) (keypath.Path, model.Value, bool) {
	for _, path := range paths {
		if value, ok := keypath.Resolve(record, path); ok {
			return path, value, true
		}
	}

	return nil, model.Value{}, false
}

// escapePath turns path segments into a gjson path that matches them literally.
func escapePath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = gjson.Escape(segment)
	}

	return strings.Join(escaped, ".")
}

// oldest returns the first field of p, or nil when p has none.
func oldest(p Projection) *orderedmap.Pair[string, model.Value] {
	if p.Fields == nil {
		return nil
	}

	return p.Fields.Oldest()
}
