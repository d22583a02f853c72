// Package filter provides a parser and evaluator for the record filter language.
//
// # Overview
//
// A filter is compiled once at startup and evaluated once per structured record:
//  1. Lexer: tokenizes the query string
//  2. Parser: builds an AST from the tokens, rejecting the whole query on the first error
//  3. Evaluator: applies the AST to a parsed record and yields a boolean
//
// # Filter Syntax
//
//	expr        := comparison | call
//	comparison  := path ('==' | '!=') literal
//	call        := 'and' '(' expr_list ')'
//	             | 'or'  '(' expr_list ')'
//	             | 'not' '(' expr ')'
//	             | 'contains' '(' path ',' literal ')'
//	             | 'exists' '(' path ')'
//	expr_list   := expr (',' expr)*
//	path        := identifier ('.' identifier)*
//	literal     := bare-token | quoted-string
//
// Keywords are case-sensitive. Whitespace around operators and delimiters is ignored.
// A bare literal runs up to the next ',' or ')' and is trimmed, so it may contain
// spaces. A quoted literal may contain ',' and ')'; inside it, \" and \\ are escapes.
//
// ## Examples
//
//	http_status == 204
//	level != DEBUG
//	msg == http request
//	contains(http.path, /api/v1)
//	contains(msg, "a, b")
//	exists(error.stack)
//	and(level == ERROR, not(contains(logger, health)))
//	or(http_status == 500, http_status == 503)
//
// # Semantics
//
// Values are compared through their string form: strings as is, numbers as written in
// the input, booleans as "true"/"false". Null, arrays and objects have no string form,
// so '==' and contains never match them.
//
//   - path == v: the path resolves and its string form equals v
//   - path != v: the negation of path == v, so an absent path is not equal
//   - contains(path, v): the path resolves and its string form contains v
//   - exists(path): the path resolves, even to null
//   - and/or: short-circuit, left to right
//
// # Usage
//
//	f, err := filter.Parse("and(level == ERROR, exists(trace_id))")
//	if err != nil {
//	    if perr, ok := filter.AsParseError(err); ok {
//	        fmt.Fprint(os.Stderr, filter.FormatDiagnostic(perr, -1, false))
//	    }
//	    os.Exit(2)
//	}
//
//	if f.Match(record) {
//	    // emit
//	}
package filter
