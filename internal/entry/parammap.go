package entry

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/lennon-c/de-wiktio/internal/wikicode"
)

// ParamMap is an insertion-ordered string-to-string mapping holding the
// parameters of one template. Positional parameters keep their literal
// positional keys ("1", "2", ...).
type ParamMap struct {
	keys   []string
	values map[string]string
}

// TemplateParams converts a template's parameter list into a ParamMap.
// Names and values are trimmed; nested constructs in values keep their
// literal markup form.
func TemplateParams(tpl *wikicode.Template) ParamMap {
	m := ParamMap{}
	for _, p := range tpl.Params {
		m.Set(strings.TrimSpace(p.Name), strings.TrimSpace(p.Value))
	}
	return m
}

// Set stores a value. Re-setting an existing key overwrites the value but
// keeps the key's original position.
func (m *ParamMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key; the second result reports presence.
func (m ParamMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m ParamMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m ParamMap) Len() int { return len(m.keys) }

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (m ParamMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
