// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
)

// writeTable renders a non-empty list of structs as one row per element,
// columns in field order. Anything else becomes sorted FIELD/VALUE rows with
// dotted keys.
func writeTable(out io.Writer, v any) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rv := indirect(reflect.ValueOf(v))

	if header, rows, ok := tabulate(rv); ok {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}

	pairs := map[string]string{}
	flatten(pairs, rv, "")
	if len(pairs) == 0 {
		_, err := fmt.Fprintln(out, "<empty>")
		return err
	}

	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, k := range slices.Sorted(maps.Keys(pairs)) {
		fmt.Fprintf(tw, "%s\t%s\n", k, pairs[k])
	}
	return tw.Flush()
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func tabulate(list reflect.Value) ([]string, [][]string, bool) {
	if !list.IsValid() || (list.Kind() != reflect.Slice && list.Kind() != reflect.Array) || list.Len() == 0 {
		return nil, nil, false
	}
	first := indirect(list.Index(0))
	if !first.IsValid() || first.Kind() != reflect.Struct {
		return nil, nil, false
	}

	typ := first.Type()
	var (
		header []string
		fields []int
	)
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		header = append(header, strings.ToUpper(fieldName(f)))
		fields = append(fields, i)
	}

	rows := make([][]string, 0, list.Len())
	for i := range list.Len() {
		e := indirect(list.Index(i))
		if !e.IsValid() || e.Type() != typ {
			return nil, nil, false
		}
		row := make([]string, len(fields))
		for j, fi := range fields {
			row[j] = cell(e.Field(fi))
		}
		rows = append(rows, row)
	}
	return header, rows, true
}

// fieldName prefers the JSON name so table columns match structured output.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}

// cell renders scalars with %v and lists space-separated.
func cell(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = cell(v.Index(i))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v.Interface())
}

func flatten(out map[string]string, v reflect.Value, key string) {
	v = indirect(v)
	if !v.IsValid() {
		if key != "" {
			out[key] = ""
		}
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				flatten(out, v.Field(i), join(key, fieldName(f)))
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			flatten(out, iter.Value(), join(key, fmt.Sprint(iter.Key().Interface())))
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			flatten(out, v.Index(i), fmt.Sprintf("%s[%d]", key, i))
		}
	default:
		if key == "" {
			key = "value"
		}
		out[key] = fmt.Sprint(v.Interface())
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
