package mongoclient

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"golang.org/x/xerrors"
)

// ErrNotStruct is returned by MakeBsonM for anything but a struct or a pointer to one
var ErrNotStruct = xerrors.New("mongoclient: filter must be a struct")

// MakeBsonM turns an options or patch struct into a bson.M, following its bson tags.
// Nil pointers and zero values are left out so that only the fields a caller
// set end up in the query. Pointers are dereferenced, a set pointer to a zero
// value is kept.
func MakeBsonM(v interface{}) (bson.M, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, ErrNotStruct
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	typ := val.Type()
	res := bson.M{}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(typ.Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}
		if field.Kind() == reflect.Ptr {
			res[tag.Name] = field.Elem().Interface()
			continue
		}
		res[tag.Name] = field.Interface()
	}
	return res, nil
}
