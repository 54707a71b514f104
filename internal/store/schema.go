package store

import (
	"errors"
	"reflect"

	stgpsr "github.com/yuin/stagparser"
)

// ErrSchemaTag is raised when a struct field used as a table row is missing
// the `db` struct tags the DDL generator needs.
var ErrSchemaTag = errors.New("store: missing db struct tag")

// column is one generated table column: its Postgres name and type.
type column struct {
	name    string
	pgType  string
	primary bool
}

// columnsFor walks t's exported fields and reads their `db` struct tags
// (`db:"col=name,type=PGTYPE"`, optionally `,primary`) into a column list,
// the same tag-driven reflection pattern used elsewhere to build schemas
// from struct tags, retargeted at Postgres DDL.
func columnsFor(t any) ([]column, error) {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	defs, err := stgpsr.ParseStruct(t, "db")
	if err != nil {
		return nil, errors.Join(ErrSchemaTag, err)
	}

	cols := make([]column, 0, values.NumField())

	for i := 0; i < values.NumField(); i++ {
		fieldName := types.Field(i).Name
		if !types.Field(i).IsExported() {
			continue
		}

		fieldDefs := make(map[string]stgpsr.Definition)
		for _, d := range defs[fieldName] {
			fieldDefs[d.Name()] = d
		}

		colDef, ok := fieldDefs["col"]
		if !ok {
			return nil, errors.Join(ErrSchemaTag, errors.New(fieldName+": col tag not found"))
		}
		colAttr, _ := colDef.Attribute("col")
		colName, ok := colAttr.(string)
		if !ok {
			return nil, errors.Join(ErrSchemaTag, errors.New(fieldName+": col tag is not a string"))
		}

		typeDef, ok := fieldDefs["type"]
		if !ok {
			return nil, errors.Join(ErrSchemaTag, errors.New(fieldName+": type tag not found"))
		}
		typeAttr, _ := typeDef.Attribute("type")
		pgType, ok := typeAttr.(string)
		if !ok {
			return nil, errors.Join(ErrSchemaTag, errors.New(fieldName+": type tag is not a string"))
		}

		_, primary := fieldDefs["primary"]

		cols = append(cols, column{name: colName, pgType: pgType, primary: primary})
	}

	return cols, nil
}

// createTableSQL builds a CREATE TABLE IF NOT EXISTS statement for t's
// columns under tableName.
func createTableSQL(tableName string, t any) (string, error) {
	cols, err := columnsFor(t)
	if err != nil {
		return "", err
	}

	sql := "CREATE TABLE IF NOT EXISTS " + tableName + " (\n"
	for i, c := range cols {
		sql += "\t" + c.name + " " + c.pgType
		if c.primary {
			sql += " PRIMARY KEY"
		}
		if i < len(cols)-1 {
			sql += ","
		}
		sql += "\n"
	}
	sql += ")"

	return sql, nil
}
