// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

// psql é o builder padrão com placeholders do Postgres
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// storeError marca o erro como falha de armazenamento mantendo a causa original
func storeError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, operation, err)
}
