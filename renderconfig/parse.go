/*
NAME
  parse.go

DESCRIPTION
  parse.go implements spec.md §4.F's declarative text grammar: a
  two-pass line-oriented format (speakers, flags and soundfield first;
  downmix and VBAP patches, which reference speakers by name, second).

  Grounded on original_source/src/lib/renderutils/
  RendererConfigurationFile.cpp's InitFromCfgFile two-pass loop and its
  per-directive process* functions (processS_Speaker, processP_Patch,
  processM_MixMap, processW_LFE, processV_Version, processC_*,
  processK_*), transcribed into Go idiom rather than the C++ original.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package renderconfig

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse builds a Config from a renderer configuration text block
// (spec.md §4.F). Parsing proceeds in two passes: version, flags,
// soundfield and speakers first; LFE, downmix and VBAP patches
// (which reference speakers by name) second.
func Parse(text string) (*Config, error) {
	lines := strings.Split(text, "\n")
	b := NewBuilder()

	for lineNo, line := range lines {
		cmds := tokenize(line)
		if len(cmds) == 0 {
			continue
		}
		switch strings.ToUpper(cmds[0]) {
		case "V":
			if err := parseVersion(b, cmds); err != nil {
				return nil, errors.Wrapf(err, "renderconfig: line %d", lineNo+1)
			}
		case "C":
			if err := parseFlag(b, cmds); err != nil {
				return nil, errors.Wrapf(err, "renderconfig: line %d", lineNo+1)
			}
		case "E":
			if len(cmds) != 2 {
				return nil, errors.Errorf("renderconfig: line %d: malformed E directive", lineNo+1)
			}
			b.SetSoundfield(cmds[1])
		case "S":
			if err := parseSpeaker(b, cmds); err != nil {
				return nil, errors.Wrapf(err, "renderconfig: line %d", lineNo+1)
			}
		case "K":
			if err := parseAuthoring(b, cmds); err != nil {
				return nil, errors.Wrapf(err, "renderconfig: line %d", lineNo+1)
			}
		case "W", "M", "P":
			// Second-pass directives; skipped here, handled below.
		default:
			return nil, errors.Errorf("renderconfig: line %d: unknown directive %q", lineNo+1, cmds[0])
		}
	}
	if b.err != nil {
		return nil, b.err
	}

	for lineNo, line := range lines {
		cmds := tokenize(line)
		if len(cmds) == 0 {
			continue
		}
		switch strings.ToUpper(cmds[0]) {
		case "W":
			if len(cmds) != 2 {
				return nil, errors.Errorf("renderconfig: line %d: malformed W directive", lineNo+1)
			}
			if ch, err := strconv.ParseInt(cmds[1], 10, 32); err == nil {
				b.SetLFEByChannel(int32(ch))
			} else {
				b.SetLFEByName(cmds[1])
			}
		case "M":
			if err := parseMixMap(b, cmds); err != nil {
				return nil, errors.Wrapf(err, "renderconfig: line %d", lineNo+1)
			}
		case "P":
			if len(cmds) != 4 {
				return nil, errors.Errorf("renderconfig: line %d: malformed P directive", lineNo+1)
			}
			b.AddPatch(cmds[1], cmds[2], cmds[3])
		case "V", "C", "E", "S", "K":
			// First-pass directives; already handled above.
		default:
			return nil, errors.Errorf("renderconfig: line %d: unknown directive %q", lineNo+1, cmds[0])
		}
	}

	return b.Build()
}

// tokenize splits one configuration line into whitespace-separated
// tokens, dropping a trailing "#" comment.
func tokenize(line string) []string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}

func parseVersion(b *Builder, cmds []string) error {
	if len(cmds) != 2 {
		return errors.New("malformed V directive")
	}
	v, err := strconv.ParseInt(cmds[1], 10, 32)
	if err != nil {
		return errors.Wrap(err, "V directive version")
	}
	b.SetVersion(int32(v))
	return nil
}

func parseFlag(b *Builder, cmds []string) error {
	if len(cmds) != 3 {
		return errors.New("malformed C directive")
	}
	v, err := strconv.ParseInt(cmds[2], 10, 32)
	if err != nil {
		return errors.Wrap(err, "C directive value")
	}
	on := v > 0
	switch strings.ToUpper(cmds[1]) {
	case "SMOOTH":
		b.cfg.Smooth = on
	case "DECORR":
		b.cfg.Decorr = on
	case "IABDECORR":
		b.cfg.IABDecorrEnable = on
	case "DEBUG":
		b.cfg.Debug = on
	default:
		return errors.Errorf("unknown C directive %q", cmds[1])
	}
	return nil
}

func parseAuthoring(b *Builder, cmds []string) error {
	if len(cmds) != 3 {
		return errors.New("malformed K directive")
	}
	switch strings.ToUpper(cmds[1]) {
	case "AUTHTOOL":
		b.SetAuthoringTool(cmds[2])
	case "AUTHTOOLVERSION":
		b.SetAuthoringToolVersion(cmds[2])
	case "RPVERSION":
		b.SetRecommendedPracticeVersion(cmds[2])
	default:
		return errors.Errorf("unknown K directive %q", cmds[1])
	}
	return nil
}

func parseSpeaker(b *Builder, cmds []string) error {
	if len(cmds) != 5 && len(cmds) != 6 {
		return errors.New("malformed S directive")
	}
	name := cmds[1]
	var channel int32
	if cmds[2] == "*" {
		channel = VirtualChannel
	} else {
		ch, err := strconv.ParseInt(cmds[2], 10, 32)
		if err != nil {
			return errors.Wrap(err, "S directive channel")
		}
		if ch < 0 {
			return errors.Errorf("S directive channel %d must be >= 0 or '*'", ch)
		}
		channel = int32(ch)
	}
	azimuth, err := strconv.ParseFloat(cmds[3], 64)
	if err != nil {
		return errors.Wrap(err, "S directive azimuth")
	}
	elevation, err := strconv.ParseFloat(cmds[4], 64)
	if err != nil {
		return errors.Wrap(err, "S directive elevation")
	}
	uri := ""
	if len(cmds) == 6 {
		uri = cmds[5]
	}
	b.AddSpeaker(name, channel, azimuth, elevation, uri)
	return nil
}

func parseMixMap(b *Builder, cmds []string) error {
	if len(cmds) < 4 || len(cmds)%2 != 0 {
		return errors.New("malformed M directive")
	}
	source := cmds[1]
	var targets []DownmixTarget
	for i := 2; i+1 < len(cmds); i += 2 {
		coef, err := strconv.ParseFloat(cmds[i+1], 64)
		if err != nil {
			return errors.Wrap(err, "M directive coefficient")
		}
		targets = append(targets, DownmixTarget{TargetName: cmds[i], Coefficient: coef})
	}
	b.AddDownmix(source, targets)
	return nil
}
