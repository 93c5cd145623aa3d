package cli

import (
	"net/url"
	"strings"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// parseQueryArg accepts a bare query ("p0x=0&..."), one with a leading "?",
// or a full URL, and returns its values.
func parseQueryArg(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse query")
	}
	return q, nil
}

// stateFromArgs reads the state given on the command line, or returns
// defaults when there is none. Unlike page loads, a malformed query is an
// error here rather than a silent fallback.
func stateFromArgs(args []string, defaults state.State) (state.State, error) {
	if len(args) == 0 {
		return defaults, nil
	}
	q, err := parseQueryArg(args[0])
	if err != nil {
		return state.State{}, err
	}
	return state.DecodeQuery(q)
}
