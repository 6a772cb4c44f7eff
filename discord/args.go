package discord

import (
	"errors"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New(`Missing closing quote. Wrap arguments containing spaces in "double quotes".`)

// splitArgs splits on whitespace, keeping "quoted text" together. An empty
// pair of quotes yields an empty argument. Discord clients on phones send
// curly quotes, so those count too.
func splitArgs(input string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuotes, hasArg := false, false

	for _, r := range input {
		switch {
		case isQuote(r):
			inQuotes = !inQuotes
			hasArg = true
		case unicode.IsSpace(r) && !inQuotes:
			if hasArg {
				args = append(args, current.String())
				current.Reset()
				hasArg = false
			}
		default:
			current.WriteRune(r)
			hasArg = true
		}
	}
	if inQuotes {
		return nil, errUnterminatedQuote
	}
	if hasArg {
		args = append(args, current.String())
	}
	return args, nil
}

func isQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”'
}
