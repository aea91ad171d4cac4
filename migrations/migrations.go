// Package migrations ships the table definitions for each supported SQL
// driver.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var files embed.FS

// Schema returns the DDL for driver ("postgres" or "sqlite3").
func Schema(driver string) (string, error) {
	name := fmt.Sprintf("001_checkers.%s.sql", driver)
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("no schema for driver %s: %w", driver, err)
	}
	return string(data), nil
}
