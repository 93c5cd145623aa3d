package state

import (
	"net/url"
)

// Source identifies where a resolved state came from.
type Source int

const (
	SourceDefaults Source = iota
	SourceQuery
	SourceStorage
)

func (s Source) String() string {
	switch s {
	case SourceQuery:
		return "url"
	case SourceStorage:
		return "storage"
	default:
		return "defaults"
	}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	State  State
	Source Source
	// Rejected holds why each present but invalid source was skipped.
	Rejected []error
}

// Resolve picks the initial state: the query if it holds a complete state,
// else the storage blob, else defaults. Sources are never merged.
//
// A query without any state key, or an empty blob, counts as absent rather
// than rejected.
func Resolve(query url.Values, blob []byte, codec Codec, defaults State) Resolution {
	var r Resolution
	if hasStateKey(query) {
		s, err := DecodeQuery(query)
		if err == nil {
			r.State, r.Source = s, SourceQuery
			return r
		}
		r.Rejected = append(r.Rejected, err)
	}
	if len(blob) > 0 {
		s, err := DecodeBlob(codec, blob)
		if err == nil {
			r.State, r.Source = s, SourceStorage
			return r
		}
		r.Rejected = append(r.Rejected, err)
	}
	r.State, r.Source = defaults, SourceDefaults
	return r
}

func hasStateKey(q url.Values) bool {
	for _, k := range Keys {
		if _, ok := q[k]; ok {
			return true
		}
	}
	return false
}

// Encode produces both persisted forms of s: the canonical query string and
// the storage blob.
func Encode(codec Codec, s State) (query string, blob []byte, err error) {
	if err := s.Validate(); err != nil {
		return "", nil, err
	}
	blob, err = EncodeBlob(codec, s)
	if err != nil {
		return "", nil, err
	}
	return s.Query().Encode(), blob, nil
}
