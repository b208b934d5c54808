package record

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// GiftNameCount is the number of gift labels the settings carry.
const GiftNameCount = 3

// DefaultConsegnatari is the deliverer list used when none is stored.
var DefaultConsegnatari = []string{"Ufficio", "Marco", "Paolo", "Giulia"}

// DefaultGiftNames labels the three gift categories.
var DefaultGiftNames = []string{"Grappa", "Extra/Altro", "Spedizione GLS"}

// Settings holds the campaign-wide preferences.
type Settings struct {
	RegaloCorrente string   `json:"regaloCorrente"`
	AnnoCorrente   int      `json:"annoCorrente"`
	Consegnatari   []string `json:"consegnatari"`
	GiftNames      []string `json:"giftNames"`
}

// DefaultSettings returns the settings used when nothing is stored yet.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		RegaloCorrente: DefaultGiftNames[0],
		AnnoCorrente:   now.Year(),
		Consegnatari:   append([]string(nil), DefaultConsegnatari...),
		GiftNames:      append([]string(nil), DefaultGiftNames...),
	}
}

// Normalize replaces missing or malformed fields with their defaults.
// GiftNames is only kept when it has exactly GiftNameCount entries.
func (s Settings) Normalize(now time.Time) Settings {
	def := DefaultSettings(now)

	if strings.TrimSpace(s.RegaloCorrente) == "" {
		s.RegaloCorrente = def.RegaloCorrente
	}
	if s.AnnoCorrente <= 0 {
		s.AnnoCorrente = def.AnnoCorrente
	}

	names := cleanList(s.Consegnatari)
	if len(names) == 0 {
		names = def.Consegnatari
	}
	s.Consegnatari = names

	if len(s.GiftNames) != GiftNameCount {
		s.GiftNames = def.GiftNames
	} else {
		s.GiftNames = append([]string(nil), s.GiftNames...)
	}
	return s
}

// DecodeSettings parses a stored settings document field by field so that
// one malformed value does not discard the others. Empty or unparseable
// input yields the defaults.
func DecodeSettings(data []byte, now time.Time) Settings {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return DefaultSettings(now)
	}

	var s Settings
	if v, ok := raw["regaloCorrente"]; ok {
		_ = json.Unmarshal(v, &s.RegaloCorrente)
	}
	if v, ok := raw["annoCorrente"]; ok {
		s.AnnoCorrente = decodeYear(v)
	}
	if v, ok := raw["consegnatari"]; ok {
		_ = json.Unmarshal(v, &s.Consegnatari)
	}
	if v, ok := raw["giftNames"]; ok {
		if err := json.Unmarshal(v, &s.GiftNames); err != nil {
			s.GiftNames = nil
		}
	}
	return s.Normalize(now)
}

// decodeYear accepts a JSON number or a numeric string.
func decodeYear(v json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if y, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return y
		}
	}
	return 0
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
