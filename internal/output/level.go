package output

import (
	"strings"

	"github.com/simao/jaxe/internal/model"
)

// Single-letter level codes written at the start of a formatted line.
const (
	LevelTrace   = "T"
	LevelDebug   = "D"
	LevelInfo    = "I"
	LevelWarn    = "W"
	LevelError   = "E"
	LevelFatal   = "F"
	LevelUnknown = "?"
)

// LevelCodes lists the codes from least to most severe, unknown last.
var LevelCodes = []string{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal, LevelUnknown}

// levelCodes maps upper-cased level names, and the numeric levels used by
// pino and bunyan, to their code.
var levelCodes = map[string]string{
	"TRACE": LevelTrace,
	"10":    LevelTrace,

	"DEBUG": LevelDebug,
	"20":    LevelDebug,

	"INFO": LevelInfo,
	"30":   LevelInfo,

	"WARN":    LevelWarn,
	"WARNING": LevelWarn,
	"40":      LevelWarn,

	"ERROR": LevelError,
	"ERR":   LevelError,
	"50":    LevelError,

	"FATAL":    LevelFatal,
	"PANIC":    LevelFatal,
	"CRITICAL": LevelFatal,
	"CRIT":     LevelFatal,
	"60":       LevelFatal,
}

// LevelCode maps a level value to its code. Matching is case-insensitive;
// anything unrecognised, including values without a string form, is LevelUnknown.
func LevelCode(v model.Value) string {
	text, ok := v.Text()
	if !ok {
		return LevelUnknown
	}

	if code, ok := levelCodes[strings.ToUpper(strings.TrimSpace(text))]; ok {
		return code
	}

	return LevelUnknown
}
