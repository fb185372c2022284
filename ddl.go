package gotds

import (
	"fmt"
	"strings"
)

// getTableCreationSQL synthesizes a CREATE TABLE statement from a bulk
// load's configured columns, for callers that need to stand up a matching
// #temp table before streaming rows.
func getTableCreationSQL(tableName string, cols []ColumnDef) string {
	defs := make([]string, len(cols))
	for i, col := range cols {
		decl := col.Type.Declaration(col)
		null := "NOT NULL"
		if col.Nullable {
			null = "NULL"
		}
		defs[i] = fmt.Sprintf("[%s] %s %s", col.Name, decl, null)
	}
	return fmt.Sprintf("CREATE TABLE [%s] (\n\t%s\n)", tableName, strings.Join(defs, ",\n\t"))
}
