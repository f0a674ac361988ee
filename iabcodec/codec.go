/*
NAME
  codec.go

DESCRIPTION
  codec.go implements spec.md §4.D: the top-level Pack/Parse entry
  points for an ST 2098-2 frame, including the preamble and IA
  sub-frame wrapper, version handling, and the optional trailing
  frame-integrity word (spec.md SUPPLEMENTED FEATURES item 1).

  Grounded on container/mts/psi.go's PSI{SyntaxSection{...}}.Bytes()
  layering and mpegts.go's packet framing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package iabcodec implements the ST 2098-2 frame packer/parser:
// spec.md §4.D's preamble + IA sub-frame wire framing and the
// Plex8(id)·Plex8(len)·payload element encoding used throughout.
package iabcodec

import (
	"github.com/ausocean/iab/bitio"
	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/plex"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// SupportedVersions is the closed set of Frame.Version values this
// codec recognises without InvalidVersion handling.
var SupportedVersions = map[uint8]bool{1: true}

// Codec holds the parse/pack options of spec.md §4.D. The zero value
// is usable, but has strict version handling off and no frame CRC;
// NewCodec turns strict version handling on.
type Codec struct {
	// StrictVersion mirrors spec.md §4.D's fail_on_version_error flag.
	// When true (the default, set via NewCodec), an unrecognised
	// Frame.Version fails the parse with InvalidVersion; when false,
	// the parser warns and continues with the current layout.
	StrictVersion bool

	// EmitFrameCRC gates the optional trailing sub-frame integrity
	// word (spec.md SUPPLEMENTED FEATURES item 1). Default off,
	// matching "not universally present".
	EmitFrameCRC bool

	// StrictCRC, when true, turns a CRC mismatch on parse into a fatal
	// CRCMismatch error rather than a warning (spec.md §4.D).
	StrictCRC bool

	Logger logging.Logger
}

// NewCodec returns a Codec with spec.md §4.D's defaults: strict
// version handling, no frame CRC.
func NewCodec(l logging.Logger) *Codec {
	return &Codec{StrictVersion: true, Logger: l}
}

func (c *Codec) debug(msg string, args ...interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Debug(msg, args...)
}

func (c *Codec) warn(msg string, args ...interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warning(msg, args...)
}

// Pack serialises f into its wire form: preamble block, IA sub-frame
// block (Frame element followed by its sub-elements), and an optional
// trailing CRC word.
func (c *Codec) Pack(f *frame.Frame) ([]byte, error) {
	body, err := c.packSubFrameBody(f)
	if err != nil {
		return nil, errors.Wrap(err, "iabcodec: pack")
	}

	var out []byte
	out = appendElement(out, idPreamble, f.Preamble)
	out = appendElement(out, idIAFrame, body)

	if c.EmitFrameCRC {
		out = AddCRC(out)
	}
	return out, nil
}

// packSubFrameBody serialises the Frame element and its sub-elements,
// the payload of the IA sub-frame block.
func (c *Codec) packSubFrameBody(f *frame.Frame) ([]byte, error) {
	frameElem, err := packFrameHeader(f)
	if err != nil {
		return nil, err
	}
	var body []byte
	body = appendElement(body, idFrame, frameElem)

	for _, e := range f.Elements {
		id, payload, err := c.packElement(e)
		if err != nil {
			return nil, err
		}
		body = appendElement(body, id, payload)
	}
	return body, nil
}

func (c *Codec) packElement(e frame.Element) (elementID, []byte, error) {
	switch v := e.(type) {
	case *frame.BedDefinition:
		b, err := packBedDefinition(v)
		return idBedDefinition, b, err
	case frame.BedDefinition:
		b, err := packBedDefinition(&v)
		return idBedDefinition, b, err
	case *frame.ObjectDefinition:
		b, err := packObjectDefinition(v)
		return idObjectDefinition, b, err
	case frame.ObjectDefinition:
		b, err := packObjectDefinition(&v)
		return idObjectDefinition, b, err
	case frame.AudioDataDLC:
		return idAudioDataDLC, packAudioDataDLC(&v), nil
	case *frame.AudioDataDLC:
		return idAudioDataDLC, packAudioDataDLC(v), nil
	case frame.AudioDataPCM:
		return idAudioDataPCM, packAudioDataPCM(&v), nil
	case *frame.AudioDataPCM:
		return idAudioDataPCM, packAudioDataPCM(v), nil
	case frame.AuthoringToolInfo:
		return idAuthoringToolInfo, packAuthoringToolInfo(&v), nil
	case *frame.AuthoringToolInfo:
		return idAuthoringToolInfo, packAuthoringToolInfo(v), nil
	case frame.UserData:
		return idUserData, packUserData(&v), nil
	case *frame.UserData:
		return idUserData, packUserData(v), nil
	case frame.Unknown:
		return elementID(v.ID), v.Payload, nil
	default:
		return 0, nil, errors.Errorf("iabcodec: pack: unhandled element type %T", e)
	}
}

// Parse deserialises b into a Frame, returning a Warnings accumulator
// of every non-fatal condition spec.md §7 names.
func (c *Codec) Parse(b []byte) (*frame.Frame, *iaberr.Warnings, error) {
	warnings := &iaberr.Warnings{}
	r := bitio.NewReader(b)

	preID, preamble, err := readElement(r)
	if err != nil {
		return nil, warnings, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: parse: preamble")
	}
	if preID != idPreamble {
		return nil, warnings, iaberr.New(iaberr.KindFrameStructure, "iabcodec: parse: expected preamble block first")
	}

	subID, body, err := readElement(r)
	if err != nil {
		return nil, warnings, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: parse: ia sub-frame")
	}
	if subID != idIAFrame {
		return nil, warnings, iaberr.New(iaberr.KindFrameStructure, "iabcodec: parse: expected IA sub-frame block second")
	}

	if c.EmitFrameCRC {
		if err := c.checkCRC(b); err != nil {
			if c.StrictCRC {
				return nil, warnings, err
			}
			warnings.Add(iaberr.KindCRCMismatch)
		}
	}

	f, err := c.parseSubFrameBody(body, preamble, warnings)
	if err != nil {
		return nil, warnings, err
	}
	return f, warnings, nil
}

func (c *Codec) checkCRC(b []byte) error {
	if len(b) < 4 {
		return iaberr.New(iaberr.KindCRCMismatch, "iabcodec: frame too short for trailing CRC")
	}
	if !VerifyCRC(b) {
		return iaberr.New(iaberr.KindCRCMismatch, "iabcodec: frame CRC mismatch")
	}
	return nil
}

func (c *Codec) parseSubFrameBody(body, preamble []byte, warnings *iaberr.Warnings) (*frame.Frame, error) {
	br := bitio.NewReader(body)

	id, hdr, err := readElement(br)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: parse: frame header")
	}
	if id != idFrame {
		return nil, iaberr.New(iaberr.KindFrameStructure, "iabcodec: parse: first IA sub-frame element must be Frame")
	}

	f, declaredCount, err := c.unpackFrameHeader(hdr, warnings)
	if err != nil {
		return nil, err
	}
	f.Preamble = preamble

	recognised := 0
	for br.Remaining() > 0 {
		elemID, payload, err := readElement(br)
		if err != nil {
			return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: parse: sub-element")
		}
		e, ok, err := c.parseElement(elemID, payload, warnings)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.debug("skipping unknown element", "id", elemID, "len", len(payload))
			f.Add(frame.Unknown{ID: frame.ElementID(elemID), Payload: payload})
			continue
		}
		recognised++
		f.Add(e)
	}

	if recognised > declaredCount {
		c.warn("more recognised sub-elements than declared", "declared", declaredCount, "recognised", recognised)
		warnings.Add(iaberr.KindFrameStructure)
	}
	return f, nil
}

// parseElement dispatches a recognised element ID to its unmarshaller.
// ok is false for any ID outside the closed table, the spec.md §4.D
// "unknown element" case.
func (c *Codec) parseElement(id elementID, payload []byte, warnings *iaberr.Warnings) (frame.Element, bool, error) {
	switch id {
	case idBedDefinition:
		b, err := unpackBedDefinition(payload, warnings)
		return b, true, err
	case idObjectDefinition:
		o, err := unpackObjectDefinition(payload, warnings)
		return o, true, err
	case idAudioDataDLC:
		a, err := unpackAudioDataDLC(payload)
		if err != nil {
			return nil, true, err
		}
		return *a, true, nil
	case idAudioDataPCM:
		a, err := unpackAudioDataPCM(payload)
		if err != nil {
			return nil, true, err
		}
		return *a, true, nil
	case idAuthoringToolInfo:
		return unpackAuthoringToolInfo(payload, warnings), true, nil
	case idUserData:
		u, err := unpackUserData(payload)
		if err != nil {
			return nil, true, err
		}
		return *u, true, nil
	default:
		warnings.AddUnknownElement()
		return nil, false, nil
	}
}

// appendElement appends one Plex8(id)·Plex8(len)·payload element to
// out (spec.md §4.D: "Every element on the wire is
// Plex8(element_id)·Plex8(payload_length_bytes)·payload_bytes").
func appendElement(out []byte, id elementID, payload []byte) []byte {
	w := bitio.NewWriter(nil)
	_ = plex.Write8(w, uint32(id))
	_ = plex.Write8(w, uint32(len(payload)))
	out = append(out, w.Bytes()...)
	out = append(out, payload...)
	return out
}

type elementID uint32

const (
	idPreamble          elementID = elementID(frame.IDPreamble)
	idIAFrame           elementID = elementID(frame.IDIAFrame)
	idFrame             elementID = elementID(frame.IDFrame)
	idBedDefinition     elementID = elementID(frame.IDBedDefinition)
	idBedRemap          elementID = elementID(frame.IDBedRemap)
	idObjectDefinition  elementID = elementID(frame.IDObjectDefinition)
	idAudioDataDLC      elementID = elementID(frame.IDAudioDataDLC)
	idAudioDataPCM      elementID = elementID(frame.IDAudioDataPCM)
	idAuthoringToolInfo elementID = elementID(frame.IDAuthoringToolInfo)
	idUserData          elementID = elementID(frame.IDUserData)
)

// checkSizeMismatch compares r's position against the declared end of
// the payload it was constructed over, recording a SizeMismatch
// warning (spec.md line 108) when an unpack* function stopped short of
// that end by a whole byte or more. Fewer than 8 unread bits are the
// zero padding the writer adds to byte-align the element body. r can
// never run past the end: bitio.Reader itself refuses any read beyond
// its declared length.
func checkSizeMismatch(r *bitio.Reader, warnings *iaberr.Warnings) {
	if r.Remaining() >= 8 {
		warnings.Add(iaberr.KindSizeMismatch)
	}
}

// readElement reads one Plex8(id)·Plex8(len)·payload element from r,
// enforcing that payload does not run past r's declared bound (spec.md
// §4.D: "never reads beyond the IA sub-frame byte bound").
func readElement(r *bitio.Reader) (elementID, []byte, error) {
	if !r.Aligned() {
		return 0, nil, errors.New("iabcodec: readElement: reader not byte-aligned")
	}
	id, err := plex.Read8(r)
	if err != nil {
		return 0, nil, err
	}
	length, err := plex.Read8(r)
	if err != nil {
		return 0, nil, err
	}
	if int64(length) > r.Remaining()/8 {
		return 0, nil, errors.Errorf("iabcodec: readElement: declared length %d exceeds remaining bytes", length)
	}
	payload, err := r.ReadBytes(int(length))
	if err != nil {
		return 0, nil, err
	}
	return elementID(id), payload, nil
}
