package gdb

import (
	"strings"

	"figure-sync/core/database"
	"figure-sync/core/reconcile"
)

// FieldTypeFromColumn maps a SQL column definition onto a field type.
// geomColumn names the WKT shape column of feature tables.
func FieldTypeFromColumn(col database.ColumnInfo, geomColumn string) reconcile.FieldType {
	if geomColumn != "" && strings.EqualFold(col.Field, geomColumn) {
		return reconcile.FieldGeometry
	}

	t := strings.ToLower(col.Type)
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}

	switch t {
	case "tinyint", "smallint", "int2", "bool", "boolean":
		return reconcile.FieldSmallInteger
	case "int", "integer", "mediumint", "bigint", "int4", "int8":
		if col.IsPrimary() {
			return reconcile.FieldOID
		}
		return reconcile.FieldInteger
	case "float", "float4":
		return reconcile.FieldSingle
	case "real", "double", "decimal", "numeric", "float8":
		return reconcile.FieldDouble
	case "date", "datetime", "timestamp":
		return reconcile.FieldDate
	case "guid", "uuid", "uniqueidentifier":
		return reconcile.FieldGUID
	case "geometry", "point", "polygon", "multipolygon", "linestring", "blob":
		return reconcile.FieldGeometry
	default:
		return reconcile.FieldString
	}
}
