package eventdetails

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingType     = errors.New("action has no type")
	ErrUnknownFileType = errors.New("unknown event details file type")
)

var jsonNull = []byte("null")

// MarshalJSON writes unbounded as null - JSON has no infinity
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.IsUnbounded() {
		return jsonNull, nil
	}
	return json.Marshal(float64(b))
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*b = Unbounded
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("bad donation bound %q: %w", data, err)
	}
	*b = Bound(f)
	return nil
}

// DecodeEventDetails parses a JSON payload. An omitted or null maximumDonation means unbounded.
// Nothing else is filled in or checked.
func DecodeEventDetails(data []byte) (EventDetails, error) {
	ed := EventDetails{MaximumDonation: Unbounded}
	if err := json.Unmarshal(data, &ed); err != nil {
		return EventDetails{}, err
	}
	return ed, nil
}

type envelope struct {
	Type         Type            `json:"type"`
	EventDetails json.RawMessage `json:"eventDetails"`
}

// DecodeAction parses a dispatched action in the {"type": ..., ...} form used by the web client
func DecodeAction(data []byte) (Action, error) {
	env := envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case "":
		return nil, ErrMissingType
	case TypeLoadEventDetails:
		raw := []byte(env.EventDetails)
		if len(raw) == 0 {
			raw = []byte("{}")
		}
		ed, err := DecodeEventDetails(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding eventDetails: %w", err)
		}
		return LoadEventDetails{EventDetails: ed}, nil
	default:
		return Unrecognized{Kind: env.Type}, nil
	}
}

// EncodeAction is the inverse of DecodeAction
func EncodeAction(a Action) ([]byte, error) {
	switch act := a.(type) {
	case LoadEventDetails:
		return json.Marshal(struct {
			Type         Type         `json:"type"`
			EventDetails EventDetails `json:"eventDetails"`
		}{act.Type(), act.EventDetails})
	default:
		return json.Marshal(struct {
			Type Type `json:"type"`
		}{a.Type()})
	}
}

// DecodeEventDetailsYAML parses YAML. .inf, null or leaving maximumDonation out all mean unbounded.
func DecodeEventDetailsYAML(data []byte) (EventDetails, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return EventDetails{}, err
	}

	ed := EventDetails{MaximumDonation: Unbounded}
	if len(doc.Content) == 0 {
		return ed, nil
	}
	root := doc.Content[0]
	dropNullKey(root, "maximumDonation") // yaml.v3 zeroes on null, we want it left unbounded

	if err := root.Decode(&ed); err != nil {
		return EventDetails{}, err
	}
	return ed, nil
}

func dropNullKey(m *yaml.Node, key string) {
	if m.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].ShortTag() == "!!null" {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

// LoadFile reads event details from a .json, .yaml or .yml file
func LoadFile(path string) (EventDetails, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EventDetails{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeEventDetails(data)
	case ".yaml", ".yml":
		return DecodeEventDetailsYAML(data)
	default:
		return EventDetails{}, fmt.Errorf("%w: %s", ErrUnknownFileType, path)
	}
}
