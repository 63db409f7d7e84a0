package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field shown by the inspector.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
}

// fieldCache memoizes the exported fields of component types.
type fieldCache struct {
	fields sync.Map // reflect.Type -> []FieldInfo
}

func (c *fieldCache) get(t reflect.Type) []FieldInfo {
	if cached, ok := c.fields.Load(t); ok {
		return cached.([]FieldInfo)
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}
			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
			})
		}
	}

	actual, _ := c.fields.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}

var inspectorFields fieldCache
