package storage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"mediaranker/internal/board"
	"mediaranker/internal/media"
)

// ItemID is a catalog identifier. It is written as a JSON number when it is
// an integer.
type ItemID string

func (id ItemID) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(id))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// Year is always written as a string.
type Year string

func looseString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// looseField reads a string or number; any other JSON value reads as "".
func looseField(raw json.RawMessage) string {
	s, err := looseString(raw)
	if err != nil {
		return ""
	}
	return s
}

// ItemRecord is one stored card.
type ItemRecord struct {
	ID     ItemID `json:"id"`
	Title  string `json:"title"`
	Year   Year   `json:"year"`
	Poster string `json:"poster"`
	Type   string `json:"type"`
}

// UnmarshalJSON accepts strings or numbers for every field. A record that is
// not an object, or a field of any other type, decodes as blank.
func (r *ItemRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*r = ItemRecord{}
		return nil
	}
	*r = ItemRecord{
		ID:     ItemID(looseField(fields["id"])),
		Title:  looseField(fields["title"]),
		Year:   Year(looseField(fields["year"])),
		Poster: looseField(fields["poster"]),
		Type:   looseField(fields["type"]),
	}
	return nil
}

// RecordList decodes any non-array value as empty.
type RecordList []ItemRecord

func (l *RecordList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(RecordList, 0, len(raw))
	for _, value := range raw {
		var rec ItemRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		out = append(out, rec)
	}
	*l = out
	return nil
}

// TierMap decodes any non-object value as empty.
type TierMap map[string]RecordList

func (m *TierMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = TierMap{}
		return nil
	}
	out := make(TierMap, len(raw))
	for name, value := range raw {
		var list RecordList
		if err := json.Unmarshal(value, &list); err != nil {
			return err
		}
		out[name] = list
	}
	*m = out
	return nil
}

// State is the durable record stored under BoardKey.
type State struct {
	Tiers        TierMap    `json:"tiers"`
	PendingItems RecordList `json:"pendingItems"`
}

// Export is the interchange file envelope.
type Export struct {
	Tiers        TierMap    `json:"tiers"`
	PendingItems RecordList `json:"pendingItems"`
	Version      string     `json:"version"`
	ExportedAt   string     `json:"exportedAt"`
}

func recordFromItem(item media.Item) ItemRecord {
	return ItemRecord{
		ID:     ItemID(item.ID),
		Title:  item.Title,
		Year:   Year(item.Year),
		Poster: item.Poster,
		Type:   string(item.Kind),
	}
}

func (r ItemRecord) item() media.Item {
	kind := media.KindMovie
	if strings.TrimSpace(r.Type) != "" {
		kind = media.ParseKind(r.Type)
	}
	return media.Item{
		ID:     strings.TrimSpace(string(r.ID)),
		Title:  strings.TrimSpace(r.Title),
		Year:   strings.TrimSpace(string(r.Year)),
		Poster: strings.TrimSpace(r.Poster),
		Kind:   kind,
	}
}

func recordsFromItems(items []media.Item) []ItemRecord {
	out := make([]ItemRecord, 0, len(items))
	for _, item := range items {
		out = append(out, recordFromItem(item))
	}
	return out
}

func itemsFromRecords(records []ItemRecord) []media.Item {
	out := make([]media.Item, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.item())
	}
	return out
}

// StateFromSnapshot converts a board snapshot to its stored form. Tiers are
// always written, empty or not.
func StateFromSnapshot(snap board.Snapshot) State {
	state := State{
		Tiers:        make(TierMap, len(board.Tiers())),
		PendingItems: recordsFromItems(snap.Pending),
	}
	for _, tier := range board.Tiers() {
		state.Tiers[string(tier)] = recordsFromItems(snap.Tiers[string(tier)])
	}
	return state
}

// Snapshot converts a stored state to a board snapshot. Unknown tier names
// are carried through; the board drops them.
func (s State) Snapshot() board.Snapshot {
	snap := board.Snapshot{
		Pending: itemsFromRecords(s.PendingItems),
		Tiers:   make(map[string][]media.Item, len(s.Tiers)),
	}
	for name, records := range s.Tiers {
		snap.Tiers[name] = itemsFromRecords(records)
	}
	return snap
}
