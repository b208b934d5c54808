// Package record defines the canonical client/partner record shared by the
// import pipeline, the exporter, the stores and the HTTP layer.
//
// The persisted JSON layout predates this package: gift flags are written as
// the strings "1" and "" and ids are bare numbers (millisecond timestamps).
// [Flag] and [ID] keep that layout on the wire while the Go side works with
// real booleans and a single id type.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownKind is returned when a collection name is not recognised.
var ErrUnknownKind = errors.New("unknown record kind")

// Kind names a record collection.
type Kind string

const (
	KindClients  Kind = "clienti"
	KindPartners Kind = "partner"
	KindDeleted  Kind = "eliminati"
)

// Kinds lists the collections that hold live records, in export order.
var Kinds = []Kind{KindClients, KindPartners}

// ParseKind validates a collection name coming from a caller.
// Only live collections are accepted; the deleted side-table is internal.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindClients, KindPartners:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Field names as they appear in the persisted JSON.
const (
	FieldID                 = "id"
	FieldTipo               = "tipo"
	FieldNome               = "nome"
	FieldAzienda            = "azienda"
	FieldIndirizzo          = "indirizzo"
	FieldCivico             = "civico"
	FieldCap                = "cap"
	FieldLocalita           = "localita"
	FieldProvincia          = "provincia"
	FieldTelefono           = "telefono"
	FieldEmail              = "email"
	FieldNote               = "note"
	FieldTipologia          = "tipologia"
	FieldGrappa             = "grappa"
	FieldExtraAltro         = "extraAltro"
	FieldConsegnaSpedizione = "consegnaSpedizione"
	FieldGLS                = "gls"
	FieldEliminato          = "eliminato"
	FieldEliminatoIl        = "eliminatoIl"
	FieldCreatedAt          = "createdAt"
	FieldLastUpdate         = "lastUpdate"
)

// ColumnOrder is the positional layout used when a sheet has no usable
// header row: column A is nome, B is azienda, and so on.
var ColumnOrder = []string{
	FieldNome,
	FieldAzienda,
	FieldIndirizzo,
	FieldCivico,
	FieldCap,
	FieldLocalita,
	FieldProvincia,
	FieldTelefono,
	FieldEmail,
	FieldNote,
	FieldGrappa,
	FieldExtraAltro,
	FieldConsegnaSpedizione,
	FieldGLS,
}

// knownKeys are the JSON keys owned by Record's struct fields.
var knownKeys = map[string]bool{
	FieldID: true, FieldTipo: true, FieldNome: true, FieldAzienda: true,
	FieldIndirizzo: true, FieldCivico: true, FieldCap: true, FieldLocalita: true,
	FieldProvincia: true, FieldTelefono: true, FieldEmail: true, FieldNote: true,
	FieldTipologia: true, FieldGrappa: true, FieldExtraAltro: true,
	FieldConsegnaSpedizione: true, FieldGLS: true, FieldEliminato: true,
	FieldEliminatoIl: true, FieldCreatedAt: true, FieldLastUpdate: true,
}

// IsFlagField reports whether field holds one of the boolean gift flags.
func IsFlagField(field string) bool {
	switch field {
	case FieldGrappa, FieldExtraAltro, FieldGLS:
		return true
	}
	return false
}

// Record is a client or partner entry.
type Record struct {
	ID                 ID     `json:"id"`
	Tipo               Kind   `json:"tipo"`
	Nome               string `json:"nome"`
	Azienda            string `json:"azienda"`
	Indirizzo          string `json:"indirizzo"`
	Civico             string `json:"civico"`
	Cap                string `json:"cap"`
	Localita           string `json:"localita"`
	Provincia          string `json:"provincia"`
	Telefono           string `json:"telefono"`
	Email              string `json:"email"`
	Note               string `json:"note"`
	Tipologia          string `json:"tipologia"`
	Grappa             Flag   `json:"grappa"`
	ExtraAltro         Flag   `json:"extraAltro"`
	GLS                Flag   `json:"gls"`
	ConsegnaSpedizione string `json:"consegnaSpedizione"`
	Eliminato          bool   `json:"eliminato"`
	EliminatoIl        int64  `json:"eliminatoIl,omitempty"`
	CreatedAt          int64  `json:"createdAt,omitempty"`
	LastUpdate         int64  `json:"lastUpdate,omitempty"`

	// Extra holds columns that did not resolve to a canonical field.
	// They are persisted inline next to the canonical keys.
	Extra map[string]string `json:"-"`

	// Imported lists the data fields an import read from the sheet, in
	// column order. It is nil for records that did not come from a sheet.
	Imported []string `json:"-"`
}

// Get returns the string form of a data field. Flags read as "1" or "".
func (r *Record) Get(field string) string {
	switch field {
	case FieldID:
		return string(r.ID)
	case FieldTipo:
		return string(r.Tipo)
	case FieldNome:
		return r.Nome
	case FieldAzienda:
		return r.Azienda
	case FieldIndirizzo:
		return r.Indirizzo
	case FieldCivico:
		return r.Civico
	case FieldCap:
		return r.Cap
	case FieldLocalita:
		return r.Localita
	case FieldProvincia:
		return r.Provincia
	case FieldTelefono:
		return r.Telefono
	case FieldEmail:
		return r.Email
	case FieldNote:
		return r.Note
	case FieldTipologia:
		return r.Tipologia
	case FieldGrappa:
		return r.Grappa.String()
	case FieldExtraAltro:
		return r.ExtraAltro.String()
	case FieldGLS:
		return r.GLS.String()
	case FieldConsegnaSpedizione:
		return r.ConsegnaSpedizione
	}
	return r.Extra[field]
}

// Set assigns a data field from its string form. Unknown names land in
// Extra. Lifecycle fields are not settable this way.
func (r *Record) Set(field, value string) {
	switch field {
	case FieldID:
		r.ID = ID(value)
	case FieldTipo:
		r.Tipo = Kind(value)
	case FieldNome:
		r.Nome = value
	case FieldAzienda:
		r.Azienda = value
	case FieldIndirizzo:
		r.Indirizzo = value
	case FieldCivico:
		r.Civico = value
	case FieldCap:
		r.Cap = value
	case FieldLocalita:
		r.Localita = value
	case FieldProvincia:
		r.Provincia = value
	case FieldTelefono:
		r.Telefono = value
	case FieldEmail:
		r.Email = value
	case FieldNote:
		r.Note = value
	case FieldTipologia:
		r.Tipologia = value
	case FieldGrappa:
		r.Grappa = ParseFlag(value)
	case FieldExtraAltro:
		r.ExtraAltro = ParseFlag(value)
	case FieldGLS:
		r.GLS = ParseFlag(value)
	case FieldConsegnaSpedizione:
		r.ConsegnaSpedizione = value
	case FieldEliminato, FieldEliminatoIl, FieldCreatedAt, FieldLastUpdate:
		return
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[field] = value
	}
}

// Clone returns a copy that shares no maps with r.
func (r Record) Clone() Record {
	if r.Extra != nil {
		extra := make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	if r.Imported != nil {
		r.Imported = append([]string(nil), r.Imported...)
	}
	return r
}

// DataFields returns every data field of r: the positional columns, then
// tipologia, then the extra keys in sorted order.
func (r *Record) DataFields() []string {
	fields := make([]string, 0, len(ColumnOrder)+1+len(r.Extra))
	fields = append(fields, ColumnOrder...)
	fields = append(fields, FieldTipologia)
	extra := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !knownKeys[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}

// DisplayName is the company name when present, otherwise the person name.
func (r *Record) DisplayName() string {
	if r.Azienda != "" {
		return r.Azienda
	}
	return r.Nome
}

// recordJSON breaks the MarshalJSON recursion.
type recordJSON Record

// MarshalJSON writes the canonical keys followed by any Extra keys that do
// not collide with them.
func (r Record) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(recordJSON(r))
	if err != nil || len(r.Extra) == 0 {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(knownKeys)+len(r.Extra))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if knownKeys[k] {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the canonical keys and keeps the rest in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var base recordJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, raw := range all {
		if knownKeys[k] {
			continue
		}
		if base.Extra == nil {
			base.Extra = make(map[string]string)
		}
		base.Extra[k] = rawString(raw)
	}

	*r = Record(base)
	return nil
}

// rawString renders a JSON value as text: strings lose their quotes,
// null becomes empty, everything else keeps its literal form.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// ID identifies a record within a collection. Numeric ids (the usual
// millisecond timestamps) round-trip as JSON numbers, anything else as a
// string.
type ID string

// NewID returns the id for a numeric value.
func NewID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Int64 returns the numeric value of a numeric id.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, ok := id.Int64(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*id = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = ID(v)
	default:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			*id = NewID(n)
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("record id %s: %w", s, err)
		}
		if f == float64(int64(f)) {
			*id = NewID(int64(f))
		} else {
			*id = ID(s)
		}
	}
	return nil
}
