package sender

import (
	jsonlib "encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// EncodeArgs serializes the argument mapping into percent-encoded
// "key=value" pairs joined by "&", in the mapping iteration order,
// with no trailing separator. Encoding is UTF-8 form encoding, a space
// becomes "+" and reserved characters are escaped. A nil or empty
// mapping yields an empty string.
//
// The same output serves both as a query string and as a request body,
// the two call sites differ only in where the string is placed.
func EncodeArgs(args *orderedmap.OrderedMap) (string, error) {
	if args == nil || len(args.Keys()) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, key := range args.Keys() {
		raw, _ := args.Get(key)
		value, err := castToString(raw)
		if err != nil {
			return "", &EncodingError{Key: key, Err: err}
		}
		if !utf8.ValidString(key) || !utf8.ValidString(value) {
			return "", &EncodingError{Key: key}
		}
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(value))
	}
	return b.String(), nil
}

func castToString(v any) (string, error) {
	// Ordered map argument is sent as its JSON representation.
	// Standard json encoding library is used.
	// JsonIter lib returns non-compact JSON,
	// if custom OrderedMap.MarshalJSON method is used.
	if orderedMap, ok := v.(*orderedmap.OrderedMap); ok {
		bytes, err := jsonlib.Marshal(orderedMap)
		if err != nil {
			return "", fmt.Errorf(`cannot cast %T to string: %w`, v, err)
		}
		return string(bytes), nil
	}

	// Other types
	out, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf(`cannot cast %T to string: %w`, v, err)
	}
	return out, nil
}
