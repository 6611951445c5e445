package share

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"

	"intervaltimer/internal/core/model"
)

func samplePreset() model.Preset {
	return model.NewPreset("A & B 50% é", []model.Phase{
		model.NewPhase("Warm-up", 300),
		model.NewPhase("Sprint/Run?", 30),
		model.NewPhase("", 0),
		model.NewPhase("Cool down", model.MaxPhaseSeconds),
	})
}

func tokenOf(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return parsed.Query().Get(PresetParam)
}

func TestRoundTrip(t *testing.T) {
	preset := samplePreset()

	link, err := Encode(preset)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(link, "intervaltimer://share?preset=") {
		t.Fatalf("unexpected link %q", link)
	}

	decoded, err := Decode(link)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.ID != preset.ID || decoded.Name != preset.Name {
		t.Fatalf("identity mismatch: got %q/%q want %q/%q", decoded.ID, decoded.Name, preset.ID, preset.Name)
	}
	if decoded.TotalDurationSeconds != preset.TotalDurationSeconds {
		t.Fatalf("total mismatch: got %d want %d", decoded.TotalDurationSeconds, preset.TotalDurationSeconds)
	}
	if len(decoded.Phases) != len(preset.Phases) {
		t.Fatalf("phase count mismatch: got %d want %d", len(decoded.Phases), len(preset.Phases))
	}
	for i := range preset.Phases {
		if decoded.Phases[i] != preset.Phases[i] {
			t.Fatalf("phase %d mismatch: got %+v want %+v", i, decoded.Phases[i], preset.Phases[i])
		}
	}
}

func TestTokenIsURISafe(t *testing.T) {
	link, err := Encode(samplePreset())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	token := tokenOf(t, link)
	if token == "" {
		t.Fatal("empty token")
	}
	if escaped := url.QueryEscape(token); escaped != token {
		t.Fatalf("token changes under percent-encoding: %q", token)
	}
	if strings.ContainsAny(token, "+/=%") {
		t.Fatalf("token contains reserved characters: %q", token)
	}
}

func TestDecodeAfterCarrierDecoding(t *testing.T) {
	preset := samplePreset()
	link, err := Encode(preset)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// A carrier that percent-decodes the link once before handing it over.
	unescaped, err := url.QueryUnescape(link)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	decoded, err := Decode(unescaped)
	if err != nil {
		t.Fatalf("Decode after carrier decoding failed: %v", err)
	}
	if decoded.Name != preset.Name {
		t.Fatalf("got name %q want %q", decoded.Name, preset.Name)
	}
}

func TestDecodeAcceptsPaddedToken(t *testing.T) {
	preset := samplePreset()
	link, err := Encode(preset)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(tokenOf(t, link))
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	padded := base64.URLEncoding.EncodeToString(raw)

	decoded, err := DecodeToken(padded)
	if err != nil {
		t.Fatalf("DecodeToken(padded) failed: %v", err)
	}
	if decoded.ID != preset.ID {
		t.Fatalf("got id %q want %q", decoded.ID, preset.ID)
	}
}

func TestEncodeRejectsInvalidPreset(t *testing.T) {
	preset := model.Preset{ID: "x", Name: "empty"}
	if _, err := Encode(preset); err == nil {
		t.Fatal("expected error for preset without phases")
	}
}

func tokenFor(json string) string {
	return "intervaltimer://share?preset=" + base64.RawURLEncoding.EncodeToString([]byte(json))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want error
	}{
		{"foreign scheme", "https://example.com/share?preset=abc", ErrNotMyScheme},
		{"foreign host", "intervaltimer://other?preset=abc", ErrNotMyScheme},
		{"not a uri", "::::", ErrNotMyScheme},
		{"missing parameter", "intervaltimer://share", ErrMalformedPayload},
		{"empty parameter", "intervaltimer://share?preset=", ErrMalformedPayload},
		{"bad alphabet", "intervaltimer://share?preset=@@@@", ErrMalformedPayload},
		{"not json", tokenFor("hello"), ErrMalformedStructure},
		{"truncated json", tokenFor(`{"version":1,"id":"a","name":"x","phases":[`), ErrMalformedStructure},
		{"missing version", tokenFor(`{"id":"a","name":"x","phases":[{"id":"p","name":"w","duration_seconds":5}],"total_duration_seconds":5}`), ErrMalformedStructure},
		{"future version", tokenFor(`{"version":2,"id":"a","name":"x","phases":[{"id":"p","name":"w","duration_seconds":5}],"total_duration_seconds":5}`), ErrMalformedStructure},
		{"missing id", tokenFor(`{"version":1,"name":"x","phases":[{"id":"p","name":"w","duration_seconds":5}],"total_duration_seconds":5}`), ErrMalformedStructure},
		{"missing phases", tokenFor(`{"version":1,"id":"a","name":"x","total_duration_seconds":5}`), ErrMalformedStructure},
		{"empty phases", tokenFor(`{"version":1,"id":"a","name":"x","phases":[],"total_duration_seconds":0}`), ErrMalformedStructure},
		{"phase without duration", tokenFor(`{"version":1,"id":"a","name":"x","phases":[{"id":"p","name":"w"}],"total_duration_seconds":5}`), ErrMalformedStructure},
		{"phase without id", tokenFor(`{"version":1,"id":"a","name":"x","phases":[{"name":"w","duration_seconds":5}],"total_duration_seconds":5}`), ErrMalformedStructure},
		{"negative duration", tokenFor(`{"version":1,"id":"a","name":"x","phases":[{"id":"p","name":"w","duration_seconds":-1}],"total_duration_seconds":-1}`), ErrMalformedStructure},
		{"total mismatch", tokenFor(`{"version":1,"id":"a","name":"x","phases":[{"id":"p","name":"w","duration_seconds":5}],"total_duration_seconds":9}`), ErrMalformedStructure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			preset, err := Decode(tc.uri)
			if err == nil {
				t.Fatalf("expected error, got preset %+v", preset)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if preset.ID != "" || len(preset.Phases) != 0 {
				t.Fatalf("partial preset returned: %+v", preset)
			}
		})
	}
}

func TestTruncatedTokenFails(t *testing.T) {
	link, err := Encode(samplePreset())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	token := tokenOf(t, link)
	_, err = DecodeToken(token[:len(token)/2])
	if err == nil {
		t.Fatal("expected error for truncated token")
	}
	if !errors.Is(err, ErrMalformedPayload) && !errors.Is(err, ErrMalformedStructure) {
		t.Fatalf("unexpected error kind: %v", err)
	}
}

func TestHandles(t *testing.T) {
	if !Handles("intervaltimer://share?preset=abc") {
		t.Fatal("expected share link to be handled")
	}
	if !Handles("IntervalTimer://Share?preset=abc") {
		t.Fatal("scheme match should be case-insensitive")
	}
	if Handles("https://share?preset=abc") {
		t.Fatal("foreign scheme should not be handled")
	}
}
