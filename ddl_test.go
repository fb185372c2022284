package gotds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableCreationSQL(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	strType, _ := LookupTypeByName("NVarChar")

	cols := []ColumnDef{
		{Name: "id", Type: intType, Nullable: false},
		{Name: "name", Type: strType, Nullable: true, Length: 100},
	}

	sql := getTableCreationSQL("people", cols)
	assert.Contains(t, sql, "CREATE TABLE [people]")
	assert.Contains(t, sql, "[id] int NOT NULL")
	assert.Contains(t, sql, "[name] nvarchar(100) NULL")
}
