package filter

import "strings"

// GetHint returns a single hint for a parse error, or "" when the message says it all.
func GetHint(err ParseError) string {
	switch err.Kind {
	case ErrorKindUnknownFunction:
		return "Available functions: and(...), or(...), not(...), contains(path, value), exists(path)"
	case ErrorKindUnexpectedEOF:
		if strings.Count(err.Query, "(") > strings.Count(err.Query, ")") {
			return "The filter ends before every '(' is closed."
		}

		if strings.Count(err.Query, `"`)%2 == 1 {
			return `Quoted values must end with '"'. Use \" for a quote inside a value.`
		}

		return "The expression is incomplete. A comparison looks like 'key == value'."
	case ErrorKindUnexpectedToken:
		return getUnexpectedTokenHint(err.Token)
	}

	return ""
}

func getUnexpectedTokenHint(token string) string {
	switch token {
	case "=":
		return "Equality is written with two equals signs: 'key == value'."
	case "!":
		return "Negate a comparison with '!=' or wrap an expression in not(...)."
	case ")":
		return "Unexpected ')' without a matching '('."
	case ",":
		return "Commas separate the arguments of and(...), or(...) and contains(...)."
	}

	if strings.HasPrefix(token, ".") || strings.HasSuffix(token, ".") || strings.Contains(token, "..") {
		return "Path segments are separated by single dots, e.g. 'http.status'."
	}

	return ""
}
