// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/bitmark-inc/nftledger/fault"
)

// JSON forms, one key naming the kind:
//   {"Nat":"123"} {"Int":"-5"} {"Nat64":"7"} {"Blob":"0a0b"} {"Text":"x"}
//   {"Array":[...]} {"Map":[["key",{...}],...]}

func kindJSON(kind string, v interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{kind: v})
}

// MarshalJSON - JSON form of a Nat
func (v Nat) MarshalJSON() ([]byte, error) { return kindJSON("Nat", v.Big().String()) }

// MarshalJSON - JSON form of an Int
func (v Int) MarshalJSON() ([]byte, error) { return kindJSON("Int", v.Big().String()) }

// MarshalJSON - JSON form of a Nat64
func (v Nat64) MarshalJSON() ([]byte, error) {
	return kindJSON("Nat64", strconv.FormatUint(uint64(v), 10))
}

// MarshalJSON - JSON form of a Blob
func (v Blob) MarshalJSON() ([]byte, error) { return kindJSON("Blob", hex.EncodeToString(v)) }

// MarshalJSON - JSON form of a Text
func (v Text) MarshalJSON() ([]byte, error) { return kindJSON("Text", string(v)) }

// MarshalJSON - JSON form of an Array
func (v Array) MarshalJSON() ([]byte, error) {
	items := []Value(v)
	if nil == items {
		items = []Value{}
	}
	return kindJSON("Array", items)
}

// MarshalJSON - JSON form of a Map, entries in canonical order
func (m Map) MarshalJSON() ([]byte, error) {
	pairs := make([][2]interface{}, 0, len(m.entries))
	for _, e := range m.sorted() {
		pairs = append(pairs, [2]interface{}{e.Key, e.Value})
	}
	return kindJSON("Map", pairs)
}

// Holder - carries any Value through encoding/json
type Holder struct {
	Value Value
}

// MarshalJSON - delegate to the held value
func (h Holder) MarshalJSON() ([]byte, error) {
	if nil == h.Value {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

// UnmarshalJSON - parse any kind
func (h *Holder) UnmarshalJSON(data []byte) error {
	if "null" == string(data) {
		h.Value = nil
		return nil
	}
	v, err := FromJSON(data)
	if nil != err {
		return err
	}
	h.Value = v
	return nil
}

// FromJSON - parse the JSON form of a value
func FromJSON(data []byte) (Value, error) {
	return fromJSON(data, 0)
}

func fromJSON(data []byte, depth int) (Value, error) {
	if depth > MaximumDepth {
		return nil, fault.ErrValueTooLarge
	}

	var kinds map[string]json.RawMessage
	if err := json.Unmarshal(data, &kinds); nil != err {
		return nil, err
	}
	if 1 != len(kinds) {
		return nil, fault.ErrInvalidValueTag
	}

	for kind, raw := range kinds {
		switch kind {

		case "Nat", "Int":
			var s string
			if err := json.Unmarshal(raw, &s); nil != err {
				return nil, err
			}
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, fault.ErrCannotDecodeValue
			}
			if "Int" == kind {
				return NewInt(n), nil
			}
			nat, err := NewNat(n)
			if nil != err {
				return nil, err
			}
			return nat, nil

		case "Nat64":
			var s string
			if err := json.Unmarshal(raw, &s); nil != err {
				return nil, err
			}
			n, err := strconv.ParseUint(s, 10, 64)
			if nil != err {
				return nil, err
			}
			return Nat64(n), nil

		case "Blob":
			var s string
			if err := json.Unmarshal(raw, &s); nil != err {
				return nil, err
			}
			b, err := hex.DecodeString(s)
			if nil != err {
				return nil, err
			}
			return Blob(b), nil

		case "Text":
			var s string
			if err := json.Unmarshal(raw, &s); nil != err {
				return nil, err
			}
			return Text(s), nil

		case "Array":
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); nil != err {
				return nil, err
			}
			result := make(Array, 0, len(items))
			for _, item := range items {
				v, err := fromJSON(item, depth+1)
				if nil != err {
					return nil, err
				}
				result = append(result, v)
			}
			return result, nil

		case "Map":
			var pairs [][2]json.RawMessage
			if err := json.Unmarshal(raw, &pairs); nil != err {
				return nil, err
			}
			entries := make([]Entry, 0, len(pairs))
			for _, pair := range pairs {
				var key string
				if err := json.Unmarshal(pair[0], &key); nil != err {
					return nil, err
				}
				v, err := fromJSON(pair[1], depth+1)
				if nil != err {
					return nil, err
				}
				entries = append(entries, Entry{Key: key, Value: v})
			}
			m, err := NewMap(entries...)
			if nil != err {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fault.ErrInvalidValueTag
}
