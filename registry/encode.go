package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"gopkg.in/yaml.v3"

	"github.com/teranos/cruxgen/errors"
)

// Encoding selects the on-disk representation of a registry.
type Encoding string

const (
	YAML    Encoding = "yaml"
	JSON    Encoding = "json"
	MsgPack Encoding = "msgpack"
)

// ParseEncoding validates an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(s)); e {
	case YAML, JSON, MsgPack:
		return e, nil
	case "yml":
		return YAML, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidConfig, "unknown registry format %q", s),
		"use one of yaml, json or msgpack",
	)
}

// EncodingForPath guesses the encoding from a file extension, defaulting to YAML.
func EncodingForPath(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".msgpack", ".mpk":
		return MsgPack
	}
	return YAML
}

// Encode writes r to w. All encodings list containers in name order and
// enum variants in index order, so equal registries encode to equal bytes.
func Encode(w io.Writer, r *Registry, enc Encoding) error {
	doc := registryTree(r)
	switch enc {
	case YAML:
		return encodeYAML(w, doc)
	case JSON:
		return encodeJSON(w, doc)
	case MsgPack:
		return encodeMsgPack(w, doc)
	}
	return errors.Wrapf(errors.ErrInvalidConfig, "unknown registry format %q", enc)
}

// Marshal is Encode into a byte slice.
func Marshal(r *Registry, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, r, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a registry written by Encode.
func Decode(rd io.Reader, enc Encoding) (*Registry, error) {
	switch enc {
	case YAML, JSON:
		return DecodeYAML(rd)
	case MsgPack:
		doc, err := readMsgPack(msgpack.NewDecoder(bufio.NewReader(rd)))
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to decode msgpack registry"), errors.ErrDeserialize)
		}
		return readRegistry(doc)
	}
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown registry format %q", enc)
}

// DecodeYAML reads the YAML layout. JSON input is accepted as well.
func DecodeYAML(rd io.Reader) (*Registry, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(rd).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil), nil
		}
		return nil, errors.Mark(errors.Wrap(err, "failed to parse registry"), errors.ErrDeserialize)
	}
	doc, err := fromYAML(&node)
	if err != nil {
		return nil, err
	}
	return readRegistry(doc)
}

func encodeYAML(w io.Writer, doc tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(doc)); err != nil {
		return errors.Wrap(err, "failed to encode registry as YAML")
	}
	return errors.Wrap(enc.Close(), "failed to flush YAML encoder")
}

func toYAML(t tree) *yaml.Node {
	switch t.kind {
	case numberTree:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: t.text()}
	case mapTree:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i := range t.keys {
			n.Content = append(n.Content, toYAML(t.keys[i]), toYAML(t.values[i]))
		}
		return n
	case seqTree:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range t.values {
			n.Content = append(n.Content, toYAML(v))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.str}
}

func fromYAML(n *yaml.Node) (tree, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return scalar(""), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		return scalar(n.Value), nil
	case yaml.MappingNode:
		t := tree{kind: mapTree}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := fromYAML(n.Content[i])
			if err != nil {
				return tree{}, err
			}
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return tree{}, err
			}
			t.set(k, v)
		}
		return t, nil
	case yaml.SequenceNode:
		t := seq()
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return tree{}, err
			}
			t.values = append(t.values, v)
		}
		return t, nil
	}
	return tree{}, malformed("unexpected YAML node at line %d", n.Line)
}

// encodeJSON writes the tree by hand: encoding/json sorts map keys, which
// would put enum variant 10 before 2 and STRUCT fields out of order.
func encodeJSON(w io.Writer, doc tree) error {
	var compact bytes.Buffer
	if err := writeJSON(&compact, doc); err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return errors.Wrap(err, "failed to indent registry JSON")
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return errors.Wrap(err, "failed to write registry JSON")
}

func writeJSON(buf *bytes.Buffer, t tree) error {
	switch t.kind {
	case numberTree:
		buf.WriteString(t.text())
	case scalarTree:
		b, err := json.Marshal(t.str)
		if err != nil {
			return errors.Wrap(err, "failed to encode string")
		}
		buf.Write(b)
	case mapTree:
		buf.WriteByte('{')
		for i := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(t.keys[i].text())
			if err != nil {
				return errors.Wrap(err, "failed to encode key")
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := writeJSON(buf, t.values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case seqTree:
		buf.WriteByte('[')
		for i, v := range t.values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

func encodeMsgPack(w io.Writer, doc tree) error {
	enc := msgpack.NewEncoder(w)
	if err := writeMsgPack(enc, doc); err != nil {
		return errors.Wrap(err, "failed to encode registry as msgpack")
	}
	return nil
}

func writeMsgPack(enc *msgpack.Encoder, t tree) error {
	switch t.kind {
	case numberTree:
		return enc.EncodeUint(t.num)
	case mapTree:
		if err := enc.EncodeMapLen(len(t.keys)); err != nil {
			return err
		}
		for i := range t.keys {
			if err := writeMsgPack(enc, t.keys[i]); err != nil {
				return err
			}
			if err := writeMsgPack(enc, t.values[i]); err != nil {
				return err
			}
		}
		return nil
	case seqTree:
		if err := enc.EncodeArrayLen(len(t.values)); err != nil {
			return err
		}
		for _, v := range t.values {
			if err := writeMsgPack(enc, v); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.EncodeString(t.str)
}

func readMsgPack(dec *msgpack.Decoder) (tree, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return tree{}, err
	}

	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return tree{}, err
		}
		t := tree{kind: mapTree}
		for range n {
			k, err := readMsgPack(dec)
			if err != nil {
				return tree{}, err
			}
			v, err := readMsgPack(dec)
			if err != nil {
				return tree{}, err
			}
			t.set(k, v)
		}
		return t, nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return tree{}, err
		}
		t := seq()
		for range n {
			v, err := readMsgPack(dec)
			if err != nil {
				return tree{}, err
			}
			t.values = append(t.values, v)
		}
		return t, nil

	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return tree{}, err
		}
		return scalar(s), nil
	}

	n, err := dec.DecodeUint64()
	if err != nil {
		return tree{}, err
	}
	return number(n), nil
}
