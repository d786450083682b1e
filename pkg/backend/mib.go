package backend

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/printpipe/sidechannel-go/pkg/mib"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// MIB is an in-memory SNMP table kept in numeric OID order.
// It is safe for concurrent use.
type MIB struct {
	mu      sync.RWMutex
	entries []mibEntry
}

type mibEntry struct {
	oid   string
	ids   []uint32
	value []byte
}

// NewMIB creates an empty table.
func NewMIB() *MIB {
	return &MIB{}
}

// Set stores value under oid, replacing any previous value.
// The OID is stored in leading-dot form.
func (m *MIB) Set(oid string, value []byte) error {
	canonical, err := mib.Normalize(oid)
	if err != nil {
		return err
	}
	if len(canonical)+1+len(value) > wire.MaxData {
		return fmt.Errorf("%w: value for %s does not fit a reply", wire.ErrTooBig, canonical)
	}
	ids, _ := mib.Parse(canonical)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.search(ids)
	e := mibEntry{oid: canonical, ids: ids, value: append([]byte(nil), value...)}
	if i < len(m.entries) && mib.Compare(m.entries[i].ids, ids) == 0 {
		m.entries[i] = e
		return nil
	}
	m.entries = append(m.entries, mibEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	return nil
}

// Get returns the value stored exactly at oid.
func (m *MIB) Get(oid string) ([]byte, bool) {
	ids, err := mib.Parse(oid)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.search(ids)
	if i < len(m.entries) && mib.Compare(m.entries[i].ids, ids) == 0 {
		return m.entries[i].value, true
	}
	return nil, false
}

// Next returns the first entry that sorts after oid.
func (m *MIB) Next(oid string) (string, []byte, bool) {
	ids, err := mib.Parse(oid)
	if err != nil {
		return "", nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := sort.Search(len(m.entries), func(i int) bool {
		return mib.Compare(m.entries[i].ids, ids) > 0
	})
	if i == len(m.entries) {
		return "", nil, false
	}
	return m.entries[i].oid, m.entries[i].value, true
}

// Len returns the number of entries.
func (m *MIB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Range calls fn for each entry in order.
func (m *MIB) Range(fn func(oid string, value []byte)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		fn(e.oid, e.value)
	}
}

// search returns the index of the first entry not less than ids.
func (m *MIB) search(ids []uint32) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return mib.Compare(m.entries[i].ids, ids) >= 0
	})
}

// HandleGet answers snmp-get with "oid\0value" or StatusNoResponse.
func (m *MIB) HandleGet(_ context.Context, req Request) Response {
	oid, ok := requestOID(req.Data)
	if !ok {
		return Fail(wire.StatusBadMessage)
	}
	value, found := m.Get(oid)
	if !found {
		return Fail(wire.StatusNoResponse)
	}
	canonical, _ := mib.Normalize(oid)
	return OK(snmpPayload(canonical, value))
}

// HandleGetNext answers snmp-get-next with the following entry or
// StatusNoResponse past the end of the table.
func (m *MIB) HandleGetNext(_ context.Context, req Request) Response {
	oid, ok := requestOID(req.Data)
	if !ok {
		return Fail(wire.StatusBadMessage)
	}
	if _, err := mib.Parse(oid); err != nil {
		return Fail(wire.StatusBadMessage)
	}
	next, value, found := m.Next(oid)
	if !found {
		return Fail(wire.StatusNoResponse)
	}
	return OK(snmpPayload(next, value))
}

// requestOID extracts the NUL-terminated OID of an SNMP request.
func requestOID(data []byte) (string, bool) {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func snmpPayload(oid string, value []byte) []byte {
	out := make([]byte, 0, len(oid)+1+len(value))
	out = append(out, oid...)
	out = append(out, 0)
	return append(out, value...)
}
