package procurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TagInput is tags as received from a client: either a list or a
// JSON-encoded string holding a list. The zero value means "not supplied".
type TagInput struct {
	List    []string
	Encoded *string
}

// TagsFromList builds a TagInput from a native list
func TagsFromList(tags []string) TagInput {
	if tags == nil {
		tags = []string{}
	}
	return TagInput{List: tags}
}

// TagsFromEncoded builds a TagInput from JSON-encoded text
func TagsFromEncoded(raw string) TagInput {
	return TagInput{Encoded: &raw}
}

// IsSet reports whether tags were supplied at all
func (t TagInput) IsSet() bool {
	return t.List != nil || t.Encoded != nil
}

// UnmarshalJSON accepts either `["a","b"]` or `"[\"a\",\"b\"]"`
func (t *TagInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TagInput{List: []string{}}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*t = TagsFromEncoded(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a list of strings or a JSON-encoded list: %w", err)
	}
	*t = TagsFromList(list)
	return nil
}

// TagsDecodeWarning is returned alongside an empty tag list when encoded tags could not be decoded
type TagsDecodeWarning struct {
	Raw    string
	Reason string
}

// Message renders the warning for API responses and logs
func (w TagsDecodeWarning) Message() string {
	return fmt.Sprintf("tags could not be decoded and were ignored: %s", w.Reason)
}

// NormalizeTags decodes a TagInput into a canonical list: trimmed, without
// blanks or duplicates, first occurrence order kept. Encoded text that fails to
// decode yields an empty list and a warning instead of an error.
func NormalizeTags(in TagInput) ([]string, *TagsDecodeWarning) {
	list := in.List
	if in.Encoded != nil {
		raw := strings.TrimSpace(*in.Encoded)
		if raw == "" {
			return []string{}, nil
		}
		var decoded []string
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return []string{}, &TagsDecodeWarning{Raw: raw, Reason: err.Error()}
		}
		list = decoded
	}

	seen := make(map[string]struct{}, len(list))
	tags := make([]string, 0, len(list))
	for _, tag := range list {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags, nil
}
