// Package phone normaliza telefones usados como chave de identidade dos leads.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// Sufixos usados pelos gateways de WhatsApp nos endereços (ex: 5511999990000@c.us)
var addressSuffixes = []string{"@c.us", "@s.whatsapp.net", "@g.us"}

// Digits remove tudo que não for dígito
func Digits(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
}

// Normalize converte um endereço de WhatsApp ou telefone livre para somente
// dígitos no formato E.164 sem o "+". Só é tratado como internacional o que vem
// com "+" ou com sufixo de gateway; o resto é interpretado na região padrão.
// Quando o número não é reconhecido, devolve apenas os dígitos da entrada.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)

	international := strings.HasPrefix(trimmed, "+")
	for _, suffix := range addressSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			trimmed = strings.TrimSuffix(trimmed, suffix)
			international = true
		}
	}

	digits := Digits(trimmed)
	if digits == "" {
		return ""
	}

	number, region := digits, defaultRegion
	if international {
		number, region = "+"+digits, ""
	}

	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return digits
	}
	if !phonenumbers.IsValidNumber(parsed) && !phonenumbers.IsPossibleNumber(parsed) {
		return digits
	}

	return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+")
}

// LastDigits retorna os últimos n dígitos do telefone
func LastDigits(input string, n int) string {
	digits := Digits(input)
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
