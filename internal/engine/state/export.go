package state

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{"id", "type", "value_type", "value", "ack", "updated_at"}

// FormatValue renders a state value for tables and CSV. Arrays and objects
// are emitted as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// Row flattens an entry into CSVHeader order.
func (e Entry) Row() []string {
	row := []string{e.ID, e.Object.Type, e.Object.Common.Type, "", "", ""}
	if e.State != nil {
		row[3] = FormatValue(e.State.Val)
		row[4] = strconv.FormatBool(e.State.Ack)
		row[5] = e.State.Ts.UTC().Format(time.RFC3339)
	}
	return row
}

// WriteCSV writes entries with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(e.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonEntry struct {
	ID     string `json:"id"`
	Object Object `json:"object"`
	State  *State `json:"state,omitempty"`
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{ID: e.ID, Object: e.Object, State: e.State}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
