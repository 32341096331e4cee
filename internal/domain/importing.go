package domain

type ImportRow struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

type ImportRequest struct {
	Leads []ImportRow `json:"leads"`
}

type ImportResult struct {
	Success int      `json:"success"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ColumnMapping relaciona cada campo do lead a um cabeçalho do arquivo importado
type ColumnMapping struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// SpreadsheetDocument é o conteúdo ordenado de um CSV/XLSX enviado pelo operador
type SpreadsheetDocument struct {
	Headers []string            `json:"headers"`
	Records []map[string]string `json:"records"`
}

type ImportPreview struct {
	Headers   []string            `json:"headers"`
	Sample    []map[string]string `json:"sample"`
	TotalRows int                 `json:"totalRows"`
	Suggested ColumnMapping       `json:"suggestedMapping"`
}
