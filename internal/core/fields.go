package core

import (
	"regexp"
	"strings"
	"sync"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

// fieldSynonyms maps each canonical field to the header spellings seen in
// real files, already in normalized form. Order matters: exact lookups take
// the first field that lists a key, and the substring pass walks fields in
// this order.
var fieldSynonyms = []struct {
	field    string
	synonyms []string
}{
	{record.FieldNome, []string{
		"nome", "nominativo", "nome e cognome", "nome cognome", "cognome e nome",
		"cognome nome", "cognome", "persona", "contatto", "referente",
		"riferimento", "riferimento mittente", "name", "full name", "first name",
	}},
	{record.FieldAzienda, []string{
		"azienda", "ragione sociale", "rag soc", "societa", "società", "ditta",
		"impresa", "company", "nome azienda", "denominazione",
		"nome destinatario", "destinatario",
	}},
	{record.FieldIndirizzo, []string{
		"indirizzo", "via", "indirizzo completo", "indirizzo spedizione",
		"indirizzo di spedizione", "address", "street", "strada", "piazza",
		"sede", "recapito", "domicilio", "residenza",
	}},
	{record.FieldCivico, []string{
		"civico", "numero civico", "n civico", "num civico", "nr civico",
		"n", "nr", "num", "numero", "n°", "no", "house number", "street number",
	}},
	{record.FieldCap, []string{
		"cap", "c a p", "codice postale", "cod postale", "postal code",
		"zip", "zip code", "postcode", "cap spedizione",
	}},
	{record.FieldLocalita, []string{
		"localita", "località", "localita'", "citta", "città", "comune",
		"paese", "city", "town", "luogo", "frazione",
	}},
	{record.FieldProvincia, []string{
		"provincia", "prov", "pr", "sigla provincia", "sigla prov", "province",
	}},
	{record.FieldTelefono, []string{
		"telefono", "tel", "telefono fisso", "cellulare", "cell", "mobile",
		"phone", "telephone", "numero telefono", "numero di telefono",
		"n telefono", "numero cellulare", "recapito telefonico", "tel cell", "fisso",
	}},
	{record.FieldEmail, []string{
		"email", "e mail", "mail", "posta elettronica", "indirizzo email",
		"indirizzo e mail", "pec", "email address", "e mail address", "posta",
	}},
	{record.FieldNote, []string{
		"note", "nota", "annotazioni", "osservazioni", "commenti", "commento",
		"notes", "memo", "descrizione", "note spedizione", "info",
	}},
	{record.FieldGrappa, []string{
		"grappa", "grappe", "regalo grappa", "omaggio grappa", "bottiglia", "bottiglie",
	}},
	{record.FieldExtraAltro, []string{
		"extraaltro", "extra altro", "extra", "altro", "altri regali",
		"regalo extra", "omaggio extra",
	}},
	{record.FieldConsegnaSpedizione, []string{
		"consegnaspedizione", "consegna spedizione", "consegna", "consegnatario",
		"consegnato da", "chi consegna", "incaricato", "incaricato consegna",
		"addetto consegna", "a mano", "delivered by",
	}},
	{record.FieldGLS, []string{
		"gls", "spedizione gls", "invio gls", "corriere", "spedizione corriere",
		"spedizione", "spedire", "da spedire", "spedito", "courier", "shipping",
	}},
	{record.FieldTipologia, []string{
		"tipologia", "categoria", "tipo cliente", "tipo partner", "classe",
		"segmento", "settore", "category", "type",
	}},
}

// minFuzzyLen keeps very short keys and synonyms out of the substring pass.
const minFuzzyLen = 3

var (
	exactSynonyms = buildExactSynonyms()

	separatorRun = regexp.MustCompile(`[\s/\-_.]+`)
)

func buildExactSynonyms() map[string]string {
	m := make(map[string]string)
	for _, group := range fieldSynonyms {
		for _, syn := range group.synonyms {
			if _, taken := m[syn]; !taken {
				m[syn] = group.field
			}
		}
	}
	return m
}

// NormalizeKey folds a header to its lookup form: NFC, lower case, with
// separators ('/', '-', '_', '.') and whitespace collapsed to one space.
func NormalizeKey(header string) string {
	s := norm.NFC.String(header)
	s = strings.ToLower(strings.TrimSpace(s))
	s = separatorRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ResolveField maps a header to a canonical field. The second result is
// false when no synonym matched and the header is kept as an extra field
// named after its normalized form with spaces turned into underscores.
func ResolveField(header string) (string, bool) {
	key := NormalizeKey(header)
	if field, ok := exactSynonyms[key]; ok {
		return field, true
	}

	if len([]rune(key)) >= minFuzzyLen {
		for _, group := range fieldSynonyms {
			for _, syn := range group.synonyms {
				if len([]rune(syn)) < minFuzzyLen {
					continue
				}
				if strings.Contains(key, syn) || strings.Contains(syn, key) {
					return group.field, true
				}
			}
		}
	}

	return strings.ReplaceAll(key, " ", "_"), false
}

var (
	suggestOnce  sync.Once
	suggester    *closestmatch.ClosestMatch
	synonymField map[string]string
)

// SuggestField proposes the canonical field an unmapped header most likely
// meant. It returns "" when nothing is close.
func SuggestField(header string) string {
	suggestOnce.Do(func() {
		words := make([]string, 0, len(exactSynonyms))
		synonymField = make(map[string]string, len(exactSynonyms))
		for _, group := range fieldSynonyms {
			for _, syn := range group.synonyms {
				if exactSynonyms[syn] == group.field {
					words = append(words, syn)
					synonymField[syn] = group.field
				}
			}
		}
		suggester = closestmatch.New(words, []int{2, 3})
	})

	key := NormalizeKey(header)
	if key == "" {
		return ""
	}
	return synonymField[suggester.Closest(key)]
}
