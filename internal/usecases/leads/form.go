package leads

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/fieldmap"
)

// FormSource é a origem usada quando o formulário não informa nenhuma
const FormSource = "formulario"

// Construtores de formulário enviam os campos com nomes próprios
// (fields[name][value], form_fields[email]) ou numerados (field_1, field_2).
var formNormalizer = fieldmap.New(
	fieldmap.Field{Name: "name", Keys: []string{
		"name", "nome", "full_name",
		"fields[name][value]", "form_fields[name]", "fields[nome][value]", "form_fields[nome]",
		"field_1",
	}},
	fieldmap.Field{Name: "email", Keys: []string{
		"email", "e-mail",
		"fields[email][value]", "form_fields[email]",
		"field_2",
	}},
	fieldmap.Field{Name: "phone", Keys: []string{
		"phone", "telefone", "whatsapp", "celular",
		"fields[phone][value]", "form_fields[phone]", "fields[telefone][value]", "form_fields[telefone]",
		"field_3",
	}},
	fieldmap.Field{Name: "source", Keys: []string{
		"source", "origem", "utm_source",
		"fields[source][value]", "form_fields[source]",
		"form_name", "form[name]",
	}},
)

func NormalizeForm(payload map[string]string) domain.LeadFields {
	values := formNormalizer.Normalize(payload)

	fields := domain.LeadFields{
		Name:   values["name"],
		Email:  values["email"],
		Phone:  values["phone"],
		Source: values["source"],
	}
	if fields.Source == "" {
		fields.Source = FormSource
	}

	return fields
}

// FlattenJSON converte um payload JSON aninhado nas chaves com colchetes
// usadas por formulários url-encoded ({"fields":{"name":{"value":"x"}}}
// vira "fields[name][value]").
func FlattenJSON(payload map[string]interface{}) map[string]string {
	result := make(map[string]string)
	flatten("", payload, result)
	return result
}

func flatten(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(joinKey(prefix, k), v[k], out)
		}
	case []interface{}:
		for i, item := range v {
			flatten(joinKey(prefix, fmt.Sprint(i)), item, out)
		}
	case nil:
		out[prefix] = ""
	case float64:
		out[prefix] = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "[" + key + "]"
}
