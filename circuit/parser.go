//
// parser.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// file is the top-level shape of a circuit file: a named array of
// circuits, so that one file can hold every circuit a deployment
// needs (today just the 32 bit equality circuit).
type file struct {
	Circuits []Circuit `json:"circuits"`
}

// UnmarshalJSON resolves Gate.OpName into Gate.Op after the default
// decoding fills in the rest of the struct.
func (g *Gate) UnmarshalJSON(data []byte) error {
	type alias Gate
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	op, err := ParseOperation(a.OpName)
	if err != nil {
		return err
	}
	a.Op = op
	*g = Gate(a)
	return nil
}

// MarshalJSON renders Gate.Op back into the OpName field so a parsed
// circuit can be dumped and reloaded unchanged.
func (g Gate) MarshalJSON() ([]byte, error) {
	type alias Gate
	a := alias(g)
	a.OpName = g.Op.String()
	return json.Marshal(a)
}

// Parse loads every circuit defined in file and returns the one whose
// ID matches id.
func Parse(path string, id string) (*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f, id)
}

// ParseReader is the io.Reader counterpart of Parse.
func ParseReader(r io.Reader, id string) (*Circuit, error) {
	circuits, err := ParseAll(r)
	if err != nil {
		return nil, err
	}
	for i := range circuits {
		if circuits[i].ID == id {
			return &circuits[i], nil
		}
	}
	return nil, fmt.Errorf("circuit: no circuit named %q", id)
}

// ParseAll loads every circuit from r's JSON document and validates
// each one.
func ParseAll(r io.Reader) ([]Circuit, error) {
	var f file
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("circuit: invalid circuit file: %w", err)
	}
	for i := range f.Circuits {
		if err := f.Circuits[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Circuits, nil
}
