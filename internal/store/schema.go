package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const eventsTableName = "llm_request_events"

var (
	// eventsColumns holds the columns for the llm_request_events table.
	eventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString, Default: ""},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "purpose", Type: field.TypeString, Default: ""},
		{Name: "run_id", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Default: "", Size: 2147483647},
		{Name: "request_body", Type: field.TypeString, Default: "", Size: 2147483647},
		{Name: "response_body", Type: field.TypeString, Default: "", Size: 2147483647},
	}
	// eventsTable holds the schema information for the llm_request_events table.
	eventsTable = &schema.Table{
		Name:       eventsTableName,
		Columns:    eventsColumns,
		PrimaryKey: []*schema.Column{eventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "idx_llm_events_purpose",
				Unique:  false,
				Columns: []*schema.Column{eventsColumns[5]},
			},
			{
				Name:    "idx_llm_events_run",
				Unique:  false,
				Columns: []*schema.Column{eventsColumns[6]},
			},
		},
	}
	// tables holds every table the store migrates.
	tables = []*schema.Table{
		eventsTable,
	}
)

// columnNames returns the names of cols in declaration order.
func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
