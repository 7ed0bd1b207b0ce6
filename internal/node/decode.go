package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalJSON decodes raw wire-format bytes (spec §6: "@id", "@ref",
// "@type", "@keys", "@items", plus arbitrary record field names) into n,
// preserving field order and the int/float distinction a real tokenizer
// would have already resolved.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return n.decodeValue(dec, tok)
}

func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	n := &Node{}
	if err := n.decodeValue(dec, tok); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) decodeValue(dec *json.Decoder, tok json.Token) error {
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return n.decodeObject(dec)
		case '[':
			items, err := decodeArrayItems(dec)
			if err != nil {
				return err
			}
			n.Items = items
			return nil
		default:
			return fmt.Errorf("node: unexpected delimiter %q", delim)
		}
	}
	n.Value = normalizeScalar(tok)
	return nil
}

func decodeArrayItems(dec *json.Decoder) ([]*Node, error) {
	items := []*Node{}
	for dec.More() {
		child, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, child)
	}
	if _, err := dec.Token(); err != nil { // consume closing ]
		return nil, err
	}
	return items, nil
}

func (n *Node) decodeObject(dec *json.Decoder) error {
	fields := NewFieldMap()
	hasKeys, hasItems := false, false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		switch key {
		case "@ref":
			v, err := decodeInt64(dec)
			if err != nil {
				return fmt.Errorf("node: @ref: %w", err)
			}
			n.RefID = &v
		case "@id":
			v, err := decodeInt64(dec)
			if err != nil {
				return fmt.Errorf("node: @id: %w", err)
			}
			n.ID = &v
		case "@type":
			v, err := decodeStringTok(dec)
			if err != nil {
				return fmt.Errorf("node: @type: %w", err)
			}
			n.Type = v
		case "@keys":
			items, err := decodeArrayField(dec)
			if err != nil {
				return fmt.Errorf("node: @keys: %w", err)
			}
			n.Keys = items
			hasKeys = true
		case "@items":
			items, err := decodeArrayField(dec)
			if err != nil {
				return fmt.Errorf("node: @items: %w", err)
			}
			n.Items = items
			hasItems = true
		default:
			child, err := decodeNode(dec)
			if err != nil {
				return err
			}
			fields.Set(key, child)
		}
	}
	if _, err := dec.Token(); err != nil { // consume closing }
		return err
	}

	if hasKeys && !hasItems {
		return fmt.Errorf("%w: @keys present but @items missing", ErrCorruptNode)
	}
	if n.RefID != nil && (fields.Len() > 0 || n.ID != nil || n.Type != "" || hasItems) {
		return fmt.Errorf("%w: @ref node carries other content", ErrCorruptNode)
	}
	if fields.Len() > 0 {
		n.Fields = fields
	}
	return nil
}

func decodeArrayField(dec *json.Decoder) ([]*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return nil, fmt.Errorf("expected array, got %v", tok)
	}
	return decodeArrayItems(dec)
}

func decodeInt64(dec *json.Decoder) (int64, error) {
	tok, err := dec.Token()
	if err != nil {
		return 0, err
	}
	switch v := tok.(type) {
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", tok)
	}
}

func decodeStringTok(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", tok)
	}
	return s, nil
}

// normalizeScalar converts a decoder token into the plain Go value a real
// tokenizer would have produced: int64 for integral numbers, float64
// otherwise, and string/bool/nil as-is.
func normalizeScalar(tok json.Token) any {
	num, ok := tok.(json.Number)
	if !ok {
		return tok
	}
	s := string(num)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := num.Int64(); err == nil {
			return i
		}
	}
	f, _ := num.Float64()
	return f
}
