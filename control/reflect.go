package control

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
)

// newGraphqlType builds an object type, a matching input type and a json tag to field
// index map from the JSON tags of the struct @val points to.
func newGraphqlType(name string, val interface{}) (*graphql.Object, *graphql.InputObject, map[string]int) {
	fields := graphql.Fields{}
	inputFields := graphql.InputObjectConfigFieldMap{}

	elem := reflect.ValueOf(val).Elem()
	tagMap := newJSONTagFieldMap(elem)
	ref := elem.Type()

	resolver := func(field int) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			v := reflect.ValueOf(p.Source)
			if v.Kind() != reflect.Ptr || v.Elem().Type() != ref {
				return nil, fmt.Errorf("unexpected source %#v", p.Source)
			}
			return v.Elem().Field(field).Interface(), nil
		}
	}

	for tag, i := range tagMap {
		if tag == "" || tag == "-" {
			continue
		}
		f := ref.Field(i)
		var typ graphql.Output
		switch f.Type.Kind() {
		case reflect.Bool:
			typ = graphql.Boolean
		case reflect.Float32, reflect.Float64:
			typ = graphql.Float
		case reflect.String:
			typ = graphql.String
		case reflect.Int, reflect.Int8, reflect.Int32, reflect.Int64:
			typ = graphql.Int
		default:
			panic(fmt.Sprint("unsupported type ", f.Type))
		}
		fields[tag] = &graphql.Field{Type: typ, Resolve: resolver(i)}
		inputFields[tag] = &graphql.InputObjectFieldConfig{Type: typ.(graphql.Input)}
	}

	obj := graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
	input := graphql.NewInputObject(graphql.InputObjectConfig{Name: "input" + name, Fields: inputFields})
	return obj, input, tagMap
}

// assign copies the values of a decoded input object onto the struct @dst points to.
func assign(dst interface{}, tagMap map[string]int, args map[string]interface{}) error {
	elem := reflect.ValueOf(dst).Elem()
	for tag, val := range args {
		i, ok := tagMap[tag]
		if !ok {
			return fmt.Errorf("unknown field %s", tag)
		}
		f := elem.Field(i)
		v := reflect.ValueOf(val)
		if !v.Type().ConvertibleTo(f.Type()) {
			return fmt.Errorf("field %s: cannot use %T", tag, val)
		}
		f.Set(v.Convert(f.Type()))
	}
	return nil
}

func jsonTag(f *reflect.StructField) string {
	t := f.Tag.Get("json")
	return strings.Split(t, ",")[0]
}

func newJSONTagFieldMap(ref reflect.Value) map[string]int {
	m := make(map[string]int)
	for i := 0; i < ref.NumField(); i++ {
		f := ref.Type().Field(i)
		m[jsonTag(&f)] = i
	}
	return m
}
