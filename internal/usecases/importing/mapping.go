package importing

import (
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/fieldmap"
)

// Cabeçalhos reconhecidos automaticamente quando o operador não informa o mapeamento
var headerNormalizer = fieldmap.New(
	fieldmap.Field{Name: "name", Keys: []string{"name", "nome", "nome completo", "full name", "cliente"}},
	fieldmap.Field{Name: "email", Keys: []string{"email", "e-mail", "e_mail", "mail"}},
	fieldmap.Field{Name: "phone", Keys: []string{"phone", "telefone", "celular", "whatsapp", "fone", "phone number"}},
	fieldmap.Field{Name: "source", Keys: []string{"source", "origem", "fonte", "canal", "utm_source"}},
)

func SuggestMapping(headers []string) domain.ColumnMapping {
	matched := headerNormalizer.MatchHeaders(headers)
	return domain.ColumnMapping{
		Name:   matched["name"],
		Email:  matched["email"],
		Phone:  matched["phone"],
		Source: matched["source"],
	}
}

// MapRecords converte os registros do arquivo em linhas de importação.
// A origem vem de overrideSource quando informado, senão da coluna mapeada.
// Sem coluna de origem mapeada, fallbackSource é usado.
func MapRecords(document *domain.SpreadsheetDocument, mapping *domain.ColumnMapping, overrideSource, fallbackSource string) []domain.ImportRow {
	effective := SuggestMapping(document.Headers)
	if mapping != nil {
		effective = *mapping
	}

	rows := make([]domain.ImportRow, 0, len(document.Records))
	for _, record := range document.Records {
		row := domain.ImportRow{
			Name:  valueOf(record, effective.Name),
			Email: valueOf(record, effective.Email),
			Phone: valueOf(record, effective.Phone),
		}

		switch {
		case overrideSource != "":
			row.Source = overrideSource
		case effective.Source != "":
			row.Source = valueOf(record, effective.Source)
		default:
			row.Source = fallbackSource
		}

		rows = append(rows, row)
	}

	return rows
}

func valueOf(record map[string]string, header string) string {
	if header == "" {
		return ""
	}
	return record[header]
}
