package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeyConflictError records two mapping keys of different YAML types that
// render to the same string (for example 7 and "7")
type KeyConflictError struct {
	Path string
	Key  string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("duplicate key %q at %s", e.Key, e.Path)
}

// Document converts a tree decoded by yaml.v3 into the JSON data model:
// mappings become map[string]interface{}, integers and floats become
// json.Number, timestamps become strings. The input is never modified.
//
// Keys that collide after conversion do not stop the walk: the first key in
// sorted order keeps its entry and every other one is returned as a conflict,
// ordered by path.
func Document(raw interface{}) (interface{}, []*KeyConflictError, error) {
	c := &converter{}
	doc, err := c.value(raw, "")
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(c.conflicts, func(i, j int) bool {
		if c.conflicts[i].Path != c.conflicts[j].Path {
			return c.conflicts[i].Path < c.conflicts[j].Path
		}
		return c.conflicts[i].Key < c.conflicts[j].Key
	})
	return doc, c.conflicts, nil
}

type converter struct {
	conflicts []*KeyConflictError
}

type mapEntry struct {
	key  string
	kind string
	item interface{}
}

func (c *converter) value(raw interface{}, path string) (interface{}, error) {
	switch v := raw.(type) {
	case nil, bool, string, json.Number:
		return v, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			// Not representable as a JSON number; leave it to type checks to reject.
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		}
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case time.Time:
		return formatTime(v), nil
	case []byte:
		return string(v), nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			n, err := c.value(item, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			n, err := c.value(item, path+"/"+escape(k))
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		entries := make([]mapEntry, 0, len(v))
		for k, item := range v {
			key, err := mapKey(k, path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, mapEntry{key: key, kind: fmt.Sprintf("%T", k), item: item})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].key != entries[j].key {
				return entries[i].key < entries[j].key
			}
			return entries[i].kind < entries[j].kind
		})

		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			if _, exists := out[e.key]; exists {
				c.conflicts = append(c.conflicts, &KeyConflictError{Path: pathOrRoot(path), Key: e.key})
				continue
			}
			n, err := c.value(e.item, path+"/"+escape(e.key))
			if err != nil {
				return nil, err
			}
			out[e.key] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T at %s", raw, pathOrRoot(path))
}

func mapKey(k interface{}, path string) (string, error) {
	switch key := k.(type) {
	case string:
		return key, nil
	case int, int64, uint64, bool:
		return fmt.Sprint(key), nil
	case float64:
		return strconv.FormatFloat(key, 'g', -1, 64), nil
	case time.Time:
		return formatTime(key), nil
	case nil:
		return "null", nil
	}
	return "", fmt.Errorf("unsupported mapping key of type %T at %s", k, pathOrRoot(path))
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339Nano)
}

// escape encodes a mapping key as a JSON pointer reference token
func escape(key string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(key)
}

func pathOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// Pointer joins reference tokens into a JSON pointer
func Pointer(tokens ...string) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteByte('/')
		sb.WriteString(escape(t))
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}
