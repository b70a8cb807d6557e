package config

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// ConfigureListByName returns the value of the configuration field of
// sargs tagged with cfgname, rendered the same way the terminal
// "config -list" command renders it. sargs must be a pointer to a
// struct; an unknown or empty cfgname yields the empty string.
func ConfigureListByName(sargs interface{}, cfgname, tag string) string {
	if sargs == nil || cfgname == "" {
		return ""
	}
	buf := bytes.NewBuffer([]byte{})
	val := reflect.ValueOf(sargs).Elem()
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		fieldName := typ.Field(i).Tag.Get(tag)
		if comma := strings.Index(fieldName, ","); comma >= 0 {
			fieldName = fieldName[:comma]
		}
		if fieldName == cfgname {
			writeField(buf, val.Field(i), fieldName)
			break
		}
	}
	return buf.String()
}

func writeField(w io.Writer, field reflect.Value, fieldName string) {
	if field.Kind() == reflect.Ptr {
		if !field.IsNil() {
			fmt.Fprintf(w, "%s\t%v\n", fieldName, field.Elem())
		} else {
			fmt.Fprintf(w, "%s\t<not defined>\n", fieldName)
		}
		return
	}
	fmt.Fprintf(w, "%s\t%v\n", fieldName, field)
}
