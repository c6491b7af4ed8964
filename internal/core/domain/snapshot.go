package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultSnapshotKey is the storage key the session snapshot lives under.
const DefaultSnapshotKey = "ec_setu_auth_state"

// Snapshot is the persisted copy of the session state.
type Snapshot struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	CurrentUser     *User `json:"currentUser,omitempty"`
	CurrentRole     Role  `json:"currentRole,omitempty"`
}

// Encode serializes s in the snapshot wire format.
func (s Snapshot) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a stored snapshot. Missing fields decode to their
// zero values; malformed JSON is an error.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// PatchSnapshotRole rewrites only the currentRole field of a stored snapshot,
// leaving every other key untouched.
func PatchSnapshotRole(raw []byte, role Role) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("patch snapshot role: %w", err)
	}
	encoded, err := json.Marshal(role)
	if err != nil {
		return nil, fmt.Errorf("patch snapshot role: %w", err)
	}
	fields["currentRole"] = encoded
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("patch snapshot role: %w", err)
	}
	return out, nil
}
