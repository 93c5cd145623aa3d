package state

import (
	"net/url"
	"strconv"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
)

// DecodeQuery reads a State from URL query parameters. Every one of the ten
// keys must be present and parse as a finite decimal number; otherwise the
// whole query is rejected. Unrelated keys are ignored.
func DecodeQuery(q url.Values) (State, error) {
	var v [10]float64
	for i, k := range Keys {
		raw, ok := q[k]
		if !ok || len(raw) == 0 {
			return State{}, errs.New(errs.ErrCodeIncompleteState, "query is missing %q", k)
		}
		f, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return State{}, errs.Wrap(errs.ErrCodeInvalidState, err, "query field %q", k)
		}
		if err := errs.ValidateFinite(k, f); err != nil {
			return State{}, err
		}
		v[i] = f
	}
	return fromValues(v), nil
}

// Query returns s as URL query values.
func (s State) Query() url.Values {
	v := s.values()
	q := make(url.Values, len(Keys))
	for i, k := range Keys {
		q.Set(k, formatFloat(v[i]))
	}
	return q
}

// MergeQuery writes the state keys of s into q, keeping any other keys.
func MergeQuery(q url.Values, s State) url.Values {
	out := StripQuery(q)
	for k, v := range s.Query() {
		out[k] = v
	}
	return out
}

// StripQuery returns a copy of q without the ten state keys.
func StripQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	for _, k := range Keys {
		out.Del(k)
	}
	return out
}

// formatFloat produces the shortest decimal that parses back to v exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
