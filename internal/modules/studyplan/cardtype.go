package studyplan

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CardType is the canonical stage category of a card.
type CardType string

const (
	CardFundamento CardType = "fundamento"
	CardPratica    CardType = "pratica"
	CardRevisao    CardType = "revisao"
	CardAplicacao  CardType = "aplicacao"
	CardEntrega    CardType = "entrega"
)

var cardTypeSynonyms = map[string]CardType{
	"teoria":       CardFundamento,
	"teorico":      CardFundamento,
	"fundamento":   CardFundamento,
	"pratica":      CardPratica,
	"pratico":      CardPratica,
	"exercicio":    CardPratica,
	"revisao":      CardRevisao,
	"simulado":     CardRevisao,
	"avaliacao":    CardRevisao,
	"projeto":      CardAplicacao,
	"aplicacao":    CardAplicacao,
	"entrega":      CardEntrega,
	"apresentacao": CardEntrega,
}

var stageLabels = map[CardType]string{
	CardFundamento: "Explorar",
	CardPratica:    "Praticar",
	CardRevisao:    "Revisar",
	CardAplicacao:  "Aplicar",
	CardEntrega:    "Entregar",
}

// ClassifyCardType maps a free-text task type to its canonical CardType.
// Accents and case are ignored; unknown or empty input is fundamento.
func ClassifyCardType(raw string) CardType {
	key := foldKey(raw)
	if ct, ok := cardTypeSynonyms[key]; ok {
		return ct
	}
	return CardFundamento
}

// Stage returns the board column suggested for the card type.
func (c CardType) Stage() string {
	if s, ok := stageLabels[c]; ok {
		return s
	}
	return stageLabels[CardFundamento]
}

// foldKey lowercases s and strips combining marks ("Avaliação" -> "avaliacao").
func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
