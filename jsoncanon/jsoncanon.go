// Package jsoncanon implements RFC 8785, the JSON Canonicalization Scheme
// (JCS): a deterministic serialization of a JSON value such that two
// semantically equal values always produce byte-identical output.
//
// No library in this module's reference corpus implements RFC 8785 (the
// nearest artifact found there deep-sorts maps and slices but does not
// follow RFC 8785's JSON-Number canonical form or minimal-escaping rules),
// so this package is written directly against the RFC rather than adapted
// from a dependency; see this module's DESIGN.md for why that is the one
// ambient concern built without a third-party library.
package jsoncanon

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SignatureMember is the JSON property name the detached JWS (§4.4) and
// hybrid digest (§4.5) strategies reserve in AppHdr for signature material.
// Canonicalize, called in signing mode, removes a member with this name at
// every level of the tree before serializing.
const SignatureMember = "Signature"

// Canonicalize serializes v (the output of encoding/json.Unmarshal into
// interface{}, ideally decoded with a Decoder that has UseNumber enabled so
// that numeric literals survive intact) into RFC 8785 canonical bytes.
//
// When signingMode is true, any object member named SignatureMember is
// removed at every level before serialization, so a signature carried in a
// header slot can never be part of its own signed payload.
func Canonicalize(v interface{}, signingMode bool) ([]byte, error) {
	if signingMode {
		return CanonicalizeExcluding(v, SignatureMember)
	}
	return CanonicalizeExcluding(v)
}

// CanonicalizeExcluding serializes v into RFC 8785 canonical bytes after
// removing every object member whose name appears in exclude, at any depth.
// The hybrid detached-hash strategy (§4.5) uses this to compute a content
// digest over a message with both its MsgDgst and Signature slots removed,
// since neither exists yet (or must not contribute to) the digest it
// computes.
func CanonicalizeExcluding(v interface{}, exclude ...string) ([]byte, error) {
	for _, key := range exclude {
		v = stripMember(v, key)
	}
	var buf strings.Builder
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// CanonicalizeBytes decodes raw JSON data and canonicalizes it in one step.
func CanonicalizeBytes(data []byte, signingMode bool) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("jsoncanon: invalid JSON: %w", err)
	}
	return Canonicalize(v, signingMode)
}

// stripMember returns a copy of v with every object member named key removed
// at any depth. Arrays and scalars are copied through unchanged (scalars
// need no copy, but a fresh slice/map keeps the caller's tree untouched).
func stripMember(v interface{}, key string) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if k == key {
				continue
			}
			out[k] = stripMember(val, key)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = stripMember(item, key)
		}
		return out
	default:
		return v
	}
}

func encode(buf *strings.Builder, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		encodeString(buf, t)
		return nil
	case json.Number:
		return encodeNumber(buf, t)
	case float64:
		return encodeNumber(buf, json.Number(strconv.FormatFloat(t, 'g', -1, 64)))
	case map[string]interface{}:
		return encodeObject(buf, t)
	case []interface{}:
		return encodeArray(buf, t)
	default:
		return fmt.Errorf("jsoncanon: unsupported value type %T", v)
	}
}

func encodeObject(buf *strings.Builder, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// RFC 8785 §3.2.3: members in lexicographic order of their UTF-16 code
	// units. For the BMP-only key names this module's messages use, sorting
	// UTF-8 bytes agrees with sorting UTF-16 code units.
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeString(buf, k)
		buf.WriteByte(':')
		if err := encode(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *strings.Builder, arr []interface{}) error {
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// encodeString applies RFC 8785 §3.2.2.2's minimal escaping: only the
// characters JSON requires (", \, and control characters) are escaped;
// everything else, including non-ASCII code points, is emitted verbatim.
func encodeString(buf *strings.Builder, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// encodeNumber formats n per RFC 8785 §3.2.2.3, following the ECMAScript
// Number::toString algorithm: the shortest round-tripping digits, written in
// plain decimal notation for magnitudes from 1e-6 up to (not including) 1e21
// and in exponent notation (1e-7, 1.5e+21) outside that range. Negative zero
// renders as 0.
func encodeNumber(buf *strings.Builder, n json.Number) error {
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("jsoncanon: invalid number %q: %w", n.String(), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("jsoncanon: non-finite number %q is not representable in JSON", n.String())
	}

	if f == 0 {
		buf.WriteString("0")
		return nil
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}

	// Go's 'e' verb pads the exponent to two digits; ECMAScript does not.
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	buf.WriteString(mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0"))
	return nil
}
