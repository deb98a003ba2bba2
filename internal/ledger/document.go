package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// StorageKey is the fixed key the group collection is persisted under.
const StorageKey = "group-storage"

// documentVersion is written into every persisted document.
const documentVersion = 0

// document is the persisted layout: {"state":{"groups":[...]},"version":0}.
type document struct {
	State   documentState `json:"state"`
	Version int           `json:"version"`
}

type documentState struct {
	Groups []models.Group `json:"groups"`
}

// encodeGroups serializes the group collection for storage.
func encodeGroups(groups []models.Group) ([]byte, error) {
	if groups == nil {
		groups = []models.Group{}
	}
	data, err := json.Marshal(document{
		State:   documentState{Groups: groups},
		Version: documentVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode groups: %w", err)
	}
	return data, nil
}

// decodeGroups parses a persisted document. A bare JSON array of groups is
// accepted as well as the wrapped layout.
func decodeGroups(data []byte) ([]models.Group, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Group{}, nil
	}

	var groups []models.Group
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &groups); err != nil {
			return nil, fmt.Errorf("failed to decode groups: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode groups document: %w", err)
		}
		groups = doc.State.Groups
	}

	for i := range groups {
		if groups[i].Members == nil {
			groups[i].Members = []models.Member{}
		}
		if groups[i].Expenses == nil {
			groups[i].Expenses = []models.Expense{}
		}
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}
