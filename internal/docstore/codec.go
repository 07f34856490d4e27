package docstore

import (
	"errors"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

const idField = "_id"

var errNotSlicePointer = errors.New("docstore: dst must be a pointer to a slice")

// toDocument encodes doc through its bson tags and strips any "_id" so the driver can assign one.
func toDocument(doc any) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	out := d[:0]
	for _, e := range d {
		if e.Key != idField {
			out = append(out, e)
		}
	}

	return out, nil
}

func withID(d bson.D, id string) bson.D {
	return append(bson.D{{Key: idField, Value: id}}, d...)
}

// setField replaces the value of key in d or appends it when missing.
func setField(d bson.D, key string, value any) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func getField(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func appendValue(d bson.D, field, value string) bson.D {
	current, _ := getField(d, field)
	arr, _ := current.(bson.A)
	next := make(bson.A, 0, len(arr)+1)
	next = append(next, arr...)
	next = append(next, value)
	return setField(d, field, next)
}

func removeValue(d bson.D, field, value string) bson.D {
	current, _ := getField(d, field)
	arr, _ := current.(bson.A)
	next := make(bson.A, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok && s == value {
			continue
		}
		next = append(next, v)
	}
	return setField(d, field, next)
}

func decodeOne(raw bson.Raw, dst any) error {
	if dst == nil {
		return nil
	}
	return bson.Unmarshal(raw, dst)
}

// decodeAll unmarshals raws into a freshly allocated slice behind dst.
func decodeAll(dst any, raws []bson.Raw) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return errNotSlicePointer
	}

	slice := rv.Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(raws))
	for _, raw := range raws {
		elem := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	slice.Set(out)

	return nil
}
