// Package fieldmap resolve campos lógicos a partir de payloads com chaves
// variáveis (formulários, cabeçalhos de planilha).
package fieldmap

import (
	"sort"
	"strings"
)

// Field é um campo lógico e suas chaves candidatas em ordem de prioridade
type Field struct {
	Name string
	Keys []string
}

type Normalizer struct {
	fields []Field
}

func New(fields ...Field) *Normalizer {
	return &Normalizer{fields: fields}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Normalize retorna, para cada campo, o primeiro valor não vazio entre as
// chaves candidatas. A comparação de chaves ignora maiúsculas e espaços; se
// duas chaves do payload coincidirem, vence a primeira não vazia em ordem
// lexicográfica das chaves originais.
func (n *Normalizer) Normalize(values map[string]string) map[string]string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(values))
	for _, k := range keys {
		key := normalizeKey(k)
		if current, exists := folded[key]; exists && strings.TrimSpace(current) != "" {
			continue
		}
		folded[key] = values[k]
	}

	result := make(map[string]string, len(n.fields))
	for _, field := range n.fields {
		for _, key := range field.Keys {
			if v := strings.TrimSpace(folded[normalizeKey(key)]); v != "" {
				result[field.Name] = v
				break
			}
		}
	}

	return result
}

// MatchHeaders associa cada campo ao primeiro cabeçalho que corresponde a
// uma de suas chaves. Campos sem correspondência ficam fora do resultado.
func (n *Normalizer) MatchHeaders(headers []string) map[string]string {
	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeKey(h)
		if _, exists := byKey[key]; !exists {
			byKey[key] = h
		}
	}

	result := make(map[string]string, len(n.fields))
	for _, field := range n.fields {
		for _, key := range field.Keys {
			if header, ok := byKey[normalizeKey(key)]; ok {
				result[field.Name] = header
				break
			}
		}
	}

	return result
}
