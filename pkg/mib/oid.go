package mib

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidOID indicates a string that is not a numeric OID.
var ErrInvalidOID = errors.New("invalid OID")

// Lookup resolves an object name such as "sysDescr" to its OID.
// Names are matched case-insensitively.
func Lookup(name string) (string, bool) {
	oid, ok := names[strings.ToLower(name)]
	return oid, ok
}

// Names returns the known object names, sorted.
func Names() []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve accepts either an object name or a numeric OID and returns the
// numeric OID in leading-dot form.
func Resolve(s string) (string, error) {
	if oid, ok := Lookup(s); ok {
		return oid, nil
	}
	return Normalize(s)
}

// Normalize validates a numeric OID and adds the leading dot if missing.
func Normalize(s string) (string, error) {
	if _, err := Parse(s); err != nil {
		return "", err
	}
	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}
	return s, nil
}

// Parse splits a numeric OID into its sub-identifiers.
func Parse(s string) ([]uint32, error) {
	trimmed := strings.TrimPrefix(s, ".")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
	}

	parts := strings.Split(trimmed, ".")
	ids := make([]uint32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
		}
		ids[i] = uint32(n)
	}
	return ids, nil
}

// Compare orders two parsed OIDs lexicographically by sub-identifier, so
// .1.3.6.1.2 sorts before .1.3.6.1.10 and a prefix sorts before its
// children.
func Compare(a, b []uint32) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
