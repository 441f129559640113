package rendering

import (
	"fmt"
	"net"
	"reflect"
	"strings"
	"text/template"
)

var funcMap = template.FuncMap{
	// cidr formats an address with a prefix length.
	"cidr": func(ip net.IP, bits int) string {
		return fmt.Sprintf("%s/%d", ip, bits)
	},

	// join renders a list of stringable values with a separator.
	"join": func(sep string, val interface{}) (string, error) {
		v := reflect.ValueOf(val)
		if v.Kind() != reflect.Slice {
			return "", fmt.Errorf("join: expected a list, got %T", val)
		}
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = fmt.Sprintf("%v", v.Index(i).Interface())
		}
		return strings.Join(parts, sep), nil
	},

	// last reports whether index i addresses the final element, for
	// separator suppression in override templates.
	"last": func(i int, val interface{}) (bool, error) {
		v := reflect.ValueOf(val)
		if v.Kind() != reflect.Slice {
			return false, fmt.Errorf("last: expected a list, got %T", val)
		}
		return i == v.Len()-1, nil
	},
}
