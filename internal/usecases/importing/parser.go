package importing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// ParseSpreadsheet lê um CSV ou XLSX preservando a ordem das linhas.
// Linhas totalmente vazias são ignoradas.
func ParseSpreadsheet(filename string, file io.Reader) (*domain.SpreadsheetDocument, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return parseCSV(file)
	case ".xlsx":
		return parseXLSX(file)
	default:
		return nil, domain.NewValidationError("file", fmt.Sprintf("formato não suportado: %s", filename))
	}
}

func parseCSV(file io.Reader) (*domain.SpreadsheetDocument, error) {
	buffered := bufio.NewReader(file)

	// Planilhas exportadas em pt-BR costumam usar ";" como separador
	firstLine, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, domain.NewValidationError("file", fmt.Sprintf("erro ao ler CSV: %v", err))
	}
	if idx := bytes.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	reader := csv.NewReader(buffered)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewValidationError("file", fmt.Sprintf("CSV inválido: %v", err))
	}

	return buildDocument(records)
}

func parseXLSX(file io.Reader) (*domain.SpreadsheetDocument, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, domain.NewValidationError("file", fmt.Sprintf("XLSX inválido: %v", err))
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("file", "planilha sem abas")
	}

	sheet := workbook.GetSheetName(workbook.GetActiveSheetIndex())
	if sheet == "" {
		sheet = sheets[0]
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, domain.NewValidationError("file", fmt.Sprintf("erro ao ler a aba %s: %v", sheet, err))
	}

	return buildDocument(rows)
}

// buildDocument usa a primeira linha não vazia como cabeçalho
func buildDocument(rows [][]string) (*domain.SpreadsheetDocument, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, domain.NewValidationError("file", "arquivo sem cabeçalho")
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if h == "" {
			h = fmt.Sprintf("coluna_%d", i+1)
		}
		headers[i] = h
	}

	document := &domain.SpreadsheetDocument{
		Headers: headers,
		Records: make([]map[string]string, 0, len(rows)-start-1),
	}

	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}

		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		document.Records = append(document.Records, record)
	}

	return document, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
