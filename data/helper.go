package data

import (
	"fmt"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
)

var NotFoundError = errors.New("not found")

func newEntity[T any]() T {
	entityType := reflect.TypeOf((*T)(nil)).Elem()
	if entityType.Kind() != reflect.Pointer || entityType.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("entity type '%s' is not a pointer to struct", entityType))
	}
	return reflect.New(entityType.Elem()).Interface().(T)
}

func structValue(entity any) reflect.Value {
	valueOfEntity := reflect.ValueOf(entity)
	if valueOfEntity.Kind() != reflect.Pointer || valueOfEntity.IsNil() {
		panic(fmt.Sprintf("entity '%T' is not a non-nil pointer", entity))
	}
	valueOfEntity = reflect.Indirect(valueOfEntity)
	if valueOfEntity.Kind() != reflect.Struct {
		panic(fmt.Sprintf("entity '%s' is not struct type", valueOfEntity.Type()))
	}
	return valueOfEntity
}

func idField(entity any) reflect.Value {
	valueOfEntity := structValue(entity)
	value := valueOfEntity.FieldByName("ID")
	if !value.IsValid() {
		panic(fmt.Sprintf("Entity '%s' has not ID field", valueOfEntity.Type()))
	}
	if value.Kind() != reflect.Uint {
		panic(fmt.Sprintf("ID field type '%s' of '%s' is not uint", value.Type(), valueOfEntity.Type()))
	}
	return value
}

// findID returns the entity's ID and whether it is still zero.
func findID(entity any) (uint, bool) {
	value := idField(entity)
	return uint(value.Uint()), value.IsZero()
}

func setID(entity any, id uint) {
	idField(entity).SetUint(uint64(id))
}

// cloneEntity copies a pointer to struct together with what its pointer,
// slice and map fields reach, so a stored entity shares nothing with the
// caller. Related entities are copied as they are at call time. The entity
// graph must be acyclic.
func cloneEntity(entity any) any {
	structValue(entity)
	return cloneValue(reflect.ValueOf(entity)).Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		clone := reflect.New(v.Elem().Type())
		clone.Elem().Set(v.Elem())
		if clone.Elem().Kind() == reflect.Struct {
			cloneFields(clone.Elem())
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), iter.Value())
		}
		return clone
	}
	return v
}

func cloneFields(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map:
			field.Set(cloneValue(field))
		}
	}
}

var timeType = reflect.TypeOf(time.Time{})

// touchTimestamps sets UpdatedAt, and CreatedAt when it is still zero, as
// gorm does on save.
func touchTimestamps(entity any, now time.Time) {
	valueOfEntity := structValue(entity)
	if field := valueOfEntity.FieldByName("CreatedAt"); field.IsValid() && field.Type() == timeType && field.IsZero() {
		field.Set(reflect.ValueOf(now))
	}
	if field := valueOfEntity.FieldByName("UpdatedAt"); field.IsValid() && field.Type() == timeType {
		field.Set(reflect.ValueOf(now))
	}
}

// sliceElementType returns the element type of a pointer to slice, e.g.
// *Task for *[]*Task.
func sliceElementType(ptrToSlice any) reflect.Type {
	ptrToSliceType := reflect.TypeOf(ptrToSlice)
	if ptrToSliceType == nil || ptrToSliceType.Kind() != reflect.Pointer || ptrToSliceType.Elem().Kind() != reflect.Slice {
		panic(fmt.Sprintf("%v is not pointer to slice", ptrToSliceType))
	}
	return ptrToSliceType.Elem().Elem()
}

func entityTypeName(entity any) string {
	entityType := reflect.TypeOf(entity)
	if entityType == nil {
		return "<nil>"
	}
	for entityType.Kind() == reflect.Pointer || entityType.Kind() == reflect.Slice {
		entityType = entityType.Elem()
	}
	return entityType.Name()
}
