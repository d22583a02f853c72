package config

import (
	"fmt"

	"github.com/simao/jaxe/internal/errors"
	"github.com/simao/jaxe/internal/filter"
)

// InvalidFilterSyntaxError is returned by Load when a filter does not parse.
// No input is read once it has been raised.
type InvalidFilterSyntaxError struct {
	Err    error
	Filter string
	Detail string
	Index  int // position among several filters, -1 when there is only one
	Offset int
}

func newInvalidFilterSyntaxError(query string, index int, err error) error {
	syntaxErr := InvalidFilterSyntaxError{
		Err:    err,
		Filter: query,
		Index:  index,
		Detail: err.Error(),
	}

	if perr, ok := filter.AsParseError(err); ok {
		syntaxErr.Offset = perr.Offset
		syntaxErr.Detail = perr.Detail
	}

	return errors.New(syntaxErr)
}

func (err InvalidFilterSyntaxError) Error() string {
	return fmt.Sprintf("invalid filter syntax in %q at offset %d: %s", err.Filter, err.Offset, err.Detail)
}

func (err InvalidFilterSyntaxError) Unwrap() error {
	return err.Err
}

// Diagnostic renders the error with the filter and a caret under the offending part.
func (err InvalidFilterSyntaxError) Diagnostic(useColor bool) string {
	perr, ok := filter.AsParseError(err.Err)
	if !ok {
		return err.Error() + "\n"
	}

	return filter.FormatDiagnostic(perr, err.Index, useColor)
}
