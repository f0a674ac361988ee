/*
NAME
  marshal_unknown.go

DESCRIPTION
  marshal_unknown.go implements the Authoring Tool Info and User Data
  element payloads of spec.md §3: a null-terminated ASCII string, and
  a 16-byte universal label plus an arbitrary byte block respectively.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package iabcodec

import (
	"bytes"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
)

func packAuthoringToolInfo(a *frame.AuthoringToolInfo) []byte {
	out := make([]byte, 0, len(a.URI)+1)
	out = append(out, a.URI...)
	out = append(out, 0)
	return out
}

func unpackAuthoringToolInfo(payload []byte, warnings *iaberr.Warnings) frame.AuthoringToolInfo {
	uri := payload
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		if i+1 < len(payload) {
			// Bytes survive past the terminator: the declared payload
			// ran past where this element actually ends (spec.md line 108).
			warnings.Add(iaberr.KindSizeMismatch)
		}
		uri = payload[:i]
	}
	return frame.AuthoringToolInfo{URI: string(uri)}
}

func packUserData(u *frame.UserData) []byte {
	out := make([]byte, 16+len(u.Data))
	copy(out, u.Label[:])
	copy(out[16:], u.Data)
	return out
}

// unpackUserData always consumes the whole payload (the label plus
// "everything else"), so it can never stop short of the declared
// length and needs no SizeMismatch check.
func unpackUserData(payload []byte) (*frame.UserData, error) {
	if len(payload) < 16 {
		return nil, iaberr.New(iaberr.KindFrameStructure, "iabcodec: user data: payload shorter than 16-byte label")
	}
	var u frame.UserData
	copy(u.Label[:], payload[:16])
	if len(payload) > 16 {
		u.Data = append([]byte(nil), payload[16:]...)
	}
	return &u, nil
}
