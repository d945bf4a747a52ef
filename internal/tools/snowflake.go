package tools

import "github.com/loomworks/loom/internal/block"

// snowflakeConnParams are the connection parameters shared by every
// Snowflake tool.
func snowflakeConnParams() []ParamDef {
	return []ParamDef{
		{Name: "account", Type: "string", Required: true, Description: "Snowflake account identifier"},
		{Name: "warehouse", Type: "string", Description: "Virtual warehouse to run against"},
		{Name: "database", Type: "string", Description: "Default database"},
		{Name: "schema", Type: "string", Description: "Default schema"},
		{Name: "apiKey", Type: "string", Required: true, Secret: true, Description: "Key-pair or OAuth token"},
	}
}

// SnowflakeTools returns the Snowflake tool descriptors.
func SnowflakeTools() []*Descriptor {
	withSQL := func(d *Descriptor) *Descriptor {
		d.Params = append(snowflakeConnParams(), ParamDef{
			Name: "query", Type: "string", Required: true, Description: "SQL statement",
		})
		return d
	}

	return []*Descriptor{
		withSQL(&Descriptor{
			ID:          "snowflake_query",
			Name:        "Snowflake Query",
			Description: "Run a read-only SQL query and return the result rows",
			BlockKind:   block.KindSnowflake,
			Method:      "POST",
			Outputs: map[string]string{
				"rows":      "data",
				"row_count": "resultSetMetaData.numRows",
				"handle":    "statementHandle",
			},
		}),
		withSQL(&Descriptor{
			ID:          "snowflake_execute",
			Name:        "Snowflake Execute",
			Description: "Execute an arbitrary SQL statement (DDL or stored procedure)",
			BlockKind:   block.KindSnowflake,
			Method:      "POST",
			Outputs: map[string]string{
				"status": "message",
				"handle": "statementHandle",
			},
		}),
		withSQL(&Descriptor{
			ID:          "snowflake_insert",
			Name:        "Snowflake Insert",
			Description: "Insert rows into a table",
			BlockKind:   block.KindSnowflake,
			Method:      "POST",
			Outputs: map[string]string{
				"rows_affected": "data.0.0",
				"handle":        "statementHandle",
			},
		}),
		withSQL(&Descriptor{
			ID:          "snowflake_update",
			Name:        "Snowflake Update",
			Description: "Update rows in a table",
			BlockKind:   block.KindSnowflake,
			Method:      "POST",
			Outputs: map[string]string{
				"rows_affected": "data.0.0",
				"handle":        "statementHandle",
			},
		}),
		withSQL(&Descriptor{
			ID:          "snowflake_delete",
			Name:        "Snowflake Delete",
			Description: "Delete rows from a table",
			BlockKind:   block.KindSnowflake,
			Method:      "POST",
			Outputs: map[string]string{
				"rows_affected": "data.0.0",
				"handle":        "statementHandle",
			},
		}),
	}
}
