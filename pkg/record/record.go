// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record implements the wire encoding for the single-sample Record
// and batch Envelope messages carried through the bounded queue and out over
// the WebSocket egress connection.
//
// The encoding is the protocol-buffers wire format (varint tag/wire-type
// headers, length-prefixed submessages), hand-marshaled with
// google.golang.org/protobuf/encoding/protowire rather than generated by
// protoc. This mirrors the original implementation's prost-encoded
// Historical/Universal messages field for field; see SPEC_FULL.md section 3
// for the field number assignments.
package record

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Fixed field numbers for the Record message: {batch_id, sensor, values}.
const (
	fieldRecordBatchID = protowire.Number(1)
	fieldRecordSensor  = protowire.Number(2)
	fieldRecordValues  = protowire.Number(3)
)

// Fixed field numbers for the embedded SampleValue message: {t, v}.
const (
	fieldValueT = protowire.Number(1)
	fieldValueV = protowire.Number(2)
)

// Fixed field numbers for the Envelope message: {types, messages}.
const (
	fieldEnvelopeTypes    = protowire.Number(1)
	fieldEnvelopeMessages = protowire.Number(2)
)

// EnvelopeType is the fixed type constant every record in an Envelope is
// tagged with.
const EnvelopeType int32 = 7201

// FixedBatchID is the constant batch identifier stamped onto every Record.
const FixedBatchID int64 = 1000

// SampleValue is one (timestamp, value) pair. A Record today always carries
// exactly one.
type SampleValue struct {
	T int64
	V float64
}

// Record is the decoded form of one encoded historical-sample message.
type Record struct {
	BatchID int64
	Sensor  string
	Values  []SampleValue
}

// NewRecord builds a Record from a single sample, using the fixed batch id
// and exactly one SampleValue, matching spec.md's Record shape.
func NewRecord(sensor string, t int64, v float64) Record {
	return Record{
		BatchID: FixedBatchID,
		Sensor:  sensor,
		Values:  []SampleValue{{T: t, V: v}},
	}
}

// Encode marshals r into its wire form.
func (r Record) Encode() []byte {
	var b []byte

	b = protowire.AppendTag(b, fieldRecordBatchID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.BatchID))

	b = protowire.AppendTag(b, fieldRecordSensor, protowire.BytesType)
	b = protowire.AppendString(b, r.Sensor)

	for _, v := range r.Values {
		var vb []byte
		vb = protowire.AppendTag(vb, fieldValueT, protowire.VarintType)
		vb = protowire.AppendVarint(vb, uint64(v.T))
		vb = protowire.AppendTag(vb, fieldValueV, protowire.Fixed64Type)
		vb = protowire.AppendFixed64(vb, math.Float64bits(v.V))

		b = protowire.AppendTag(b, fieldRecordValues, protowire.BytesType)
		b = protowire.AppendBytes(b, vb)
	}

	return b
}

// DecodeRecord unmarshals a wire-encoded Record.
func DecodeRecord(b []byte) (Record, error) {
	var r Record

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Record{}, fmt.Errorf("record: consuming tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldRecordBatchID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Record{}, fmt.Errorf("record: consuming batch_id: %w", protowire.ParseError(n))
			}
			r.BatchID = int64(v)
			b = b[n:]

		case num == fieldRecordSensor && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Record{}, fmt.Errorf("record: consuming sensor: %w", protowire.ParseError(n))
			}
			r.Sensor = v
			b = b[n:]

		case num == fieldRecordValues && typ == protowire.BytesType:
			vb, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Record{}, fmt.Errorf("record: consuming values: %w", protowire.ParseError(n))
			}
			b = b[n:]

			sv, err := decodeSampleValue(vb)
			if err != nil {
				return Record{}, err
			}
			r.Values = append(r.Values, sv)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Record{}, fmt.Errorf("record: skipping unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	return r, nil
}

func decodeSampleValue(b []byte) (SampleValue, error) {
	var sv SampleValue

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return SampleValue{}, fmt.Errorf("record: consuming value tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldValueT && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return SampleValue{}, fmt.Errorf("record: consuming t: %w", protowire.ParseError(n))
			}
			sv.T = int64(v)
			b = b[n:]

		case num == fieldValueV && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return SampleValue{}, fmt.Errorf("record: consuming v: %w", protowire.ParseError(n))
			}
			sv.V = math.Float64frombits(v)
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return SampleValue{}, fmt.Errorf("record: skipping unknown value field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	return sv, nil
}

// Envelope batches N records, tagging each with the fixed type constant
// 7201. len(Types) always equals len(Messages).
type Envelope struct {
	Types    []int32
	Messages [][]byte
}

// NewEnvelope wraps already-encoded records into a well-formed Envelope.
func NewEnvelope(records [][]byte) Envelope {
	types := make([]int32, len(records))
	for i := range types {
		types[i] = EnvelopeType
	}
	return Envelope{Types: types, Messages: records}
}

// ErrMalformedEnvelope is returned when an Envelope fails the well-formedness
// invariant (equal-length types/messages, every type == 7201).
var ErrMalformedEnvelope = errors.New("record: malformed envelope")

// Encode marshals e into its wire form. Returns ErrMalformedEnvelope if e
// violates the envelope invariants (this is a programmer error, per spec.md
// §7's "Envelope encode failure: fatal").
func (e Envelope) Encode() ([]byte, error) {
	if len(e.Types) != len(e.Messages) {
		return nil, fmt.Errorf("%w: %d types, %d messages", ErrMalformedEnvelope, len(e.Types), len(e.Messages))
	}
	for _, t := range e.Types {
		if t != EnvelopeType {
			return nil, fmt.Errorf("%w: type %d != %d", ErrMalformedEnvelope, t, EnvelopeType)
		}
	}

	var b []byte

	if len(e.Types) > 0 {
		var packed []byte
		for _, t := range e.Types {
			packed = protowire.AppendVarint(packed, uint64(t))
		}
		b = protowire.AppendTag(b, fieldEnvelopeTypes, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	for _, m := range e.Messages {
		b = protowire.AppendTag(b, fieldEnvelopeMessages, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}

	return b, nil
}

// DecodeEnvelope unmarshals a wire-encoded Envelope.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var e Envelope

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Envelope{}, fmt.Errorf("record: consuming tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldEnvelopeTypes && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("record: consuming types: %w", protowire.ParseError(n))
			}
			b = b[n:]

			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return Envelope{}, fmt.Errorf("record: consuming packed type: %w", protowire.ParseError(n))
				}
				e.Types = append(e.Types, int32(v))
				packed = packed[n:]
			}

		case num == fieldEnvelopeMessages && typ == protowire.BytesType:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("record: consuming message: %w", protowire.ParseError(n))
			}
			e.Messages = append(e.Messages, append([]byte(nil), m...))
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("record: skipping unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	return e, nil
}
