// Package share converts presets to and from self-contained share links.
//
// Wire format, version 1:
//
//	intervaltimer://share?preset=<token>
//	token = base64url-without-padding(JSON document)
//
// The token alphabet [A-Za-z0-9_-] is unreserved in URIs, so the token is never
// percent-encoded by Encode and a carrier that percent-decodes the query once
// hands Decode the token unchanged. Encode and Decode each apply the base64
// transform exactly once.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"intervaltimer/internal/core/model"
)

const (
	Scheme        = "intervaltimer"
	Host          = "share"
	PresetParam   = "preset"
	FormatVersion = 1
)

type wirePhase struct {
	ID              *string `json:"id"`
	Name            *string `json:"name"`
	DurationSeconds *int    `json:"duration_seconds"`
}

type wirePreset struct {
	Version              *int         `json:"version"`
	ID                   *string      `json:"id"`
	Name                 *string      `json:"name"`
	Phases               *[]wirePhase `json:"phases"`
	TotalDurationSeconds *int         `json:"total_duration_seconds"`
}

// Handles reports whether raw belongs to the share namespace.
func Handles(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return inNamespace(parsed)
}

// Encode returns the share link for preset.
func Encode(preset model.Preset) (string, error) {
	token, err := EncodeToken(preset)
	if err != nil {
		return "", err
	}
	link := url.URL{
		Scheme:   Scheme,
		Host:     Host,
		RawQuery: PresetParam + "=" + token,
	}
	return link.String(), nil
}

// EncodeToken serializes preset into the URI-safe token carried by a share link.
func EncodeToken(preset model.Preset) (string, error) {
	if err := preset.Validate(); err != nil {
		return "", fmt.Errorf("encode preset: %w", err)
	}

	version := FormatVersion
	phases := make([]wirePhase, 0, len(preset.Phases))
	for i := range preset.Phases {
		phase := preset.Phases[i]
		phases = append(phases, wirePhase{
			ID:              &phase.ID,
			Name:            &phase.Name,
			DurationSeconds: &phase.DurationSeconds,
		})
	}
	document := wirePreset{
		Version:              &version,
		ID:                   &preset.ID,
		Name:                 &preset.Name,
		Phases:               &phases,
		TotalDurationSeconds: &preset.TotalDurationSeconds,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(document); err != nil {
		return "", fmt.Errorf("marshal preset: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSpace(buf.Bytes())), nil
}

// Decode reconstructs the preset carried by a share link. A URI outside the
// namespace yields ErrNotMyScheme. The preset id is taken from the payload.
func Decode(raw string) (model.Preset, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !inNamespace(parsed) {
		return model.Preset{}, notMine("scheme or host does not match " + Scheme + "://" + Host)
	}

	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return model.Preset{}, malformedPayload("invalid query string", err)
	}
	token := query.Get(PresetParam)
	if token == "" {
		return model.Preset{}, malformedPayload("missing "+PresetParam+" parameter", nil)
	}
	return DecodeToken(token)
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (model.Preset, error) {
	text, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return model.Preset{}, malformedPayload("invalid base64url token", err)
	}

	var document wirePreset
	if err := json.Unmarshal(text, &document); err != nil {
		return model.Preset{}, malformedStructure("invalid JSON document", err)
	}
	return document.toPreset()
}

func (document wirePreset) toPreset() (model.Preset, error) {
	switch {
	case document.Version == nil:
		return model.Preset{}, malformedStructure("missing version", nil)
	case *document.Version != FormatVersion:
		return model.Preset{}, malformedStructure(fmt.Sprintf("unsupported version %d", *document.Version), nil)
	case document.ID == nil || *document.ID == "":
		return model.Preset{}, malformedStructure("missing id", nil)
	case document.Name == nil:
		return model.Preset{}, malformedStructure("missing name", nil)
	case document.Phases == nil:
		return model.Preset{}, malformedStructure("missing phases", nil)
	case document.TotalDurationSeconds == nil:
		return model.Preset{}, malformedStructure("missing total_duration_seconds", nil)
	}

	phases := make([]model.Phase, 0, len(*document.Phases))
	for index, wire := range *document.Phases {
		switch {
		case wire.ID == nil || *wire.ID == "":
			return model.Preset{}, malformedStructure(fmt.Sprintf("phase %d: missing id", index), nil)
		case wire.Name == nil:
			return model.Preset{}, malformedStructure(fmt.Sprintf("phase %d: missing name", index), nil)
		case wire.DurationSeconds == nil:
			return model.Preset{}, malformedStructure(fmt.Sprintf("phase %d: missing duration_seconds", index), nil)
		}
		phases = append(phases, model.Phase{
			ID:              *wire.ID,
			Name:            *wire.Name,
			DurationSeconds: *wire.DurationSeconds,
		})
	}

	preset := model.Preset{
		ID:                   *document.ID,
		Name:                 *document.Name,
		Phases:               phases,
		TotalDurationSeconds: *document.TotalDurationSeconds,
	}
	if err := preset.Validate(); err != nil {
		return model.Preset{}, malformedStructure("invalid preset", err)
	}
	return preset, nil
}

func inNamespace(link *url.URL) bool {
	return strings.EqualFold(link.Scheme, Scheme) && strings.EqualFold(link.Host, Host)
}
