// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"strconv"

	"github.com/selfdiscovery/selfdiscovery/internal/lineproto"
)

const (
	// FieldString holds a single string.
	FieldString FieldKind = iota
	// FieldBool holds a boolean.
	FieldBool
	// FieldInt holds an integer.
	FieldInt
	// FieldList holds a list of strings.
	FieldList
)

type (
	// FieldKind identifies the type of a response field.
	FieldKind int

	// Field is one named result value.
	Field struct {
		Name string
		Kind FieldKind
		Str  string
		Bool bool
		Int  int64
		List []string
	}

	// Response is the ordered set of fields a provider returns. A nil
	// *Response means an optional lookup found nothing.
	Response struct {
		fields []Field
	}
)

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// SetString sets a string field.
func (r *Response) SetString(name, value string) *Response {
	return r.set(Field{Name: name, Kind: FieldString, Str: value})
}

// SetBool sets a boolean field.
func (r *Response) SetBool(name string, value bool) *Response {
	return r.set(Field{Name: name, Kind: FieldBool, Bool: value})
}

// SetInt sets an integer field.
func (r *Response) SetInt(name string, value int64) *Response {
	return r.set(Field{Name: name, Kind: FieldInt, Int: value})
}

// SetList sets a list field. The list is copied.
func (r *Response) SetList(name string, values []string) *Response {
	return r.set(Field{Name: name, Kind: FieldList, List: append([]string{}, values...)})
}

func (r *Response) set(f Field) *Response {
	for i := range r.fields {
		if r.fields[i].Name == f.Name {
			r.fields[i] = f
			return r
		}
	}
	r.fields = append(r.fields, f)
	return r
}

// Fields returns the fields in insertion order.
func (r *Response) Fields() []Field {
	if r == nil {
		return nil
	}
	return append([]Field(nil), r.fields...)
}

// Get returns the field called name.
func (r *Response) Get(name string) (Field, bool) {
	if r == nil {
		return Field{}, false
	}
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Values returns the field's values as strings.
func (f Field) Values() []string {
	switch f.Kind {
	case FieldBool:
		return []string{strconv.FormatBool(f.Bool)}
	case FieldInt:
		return []string{strconv.FormatInt(f.Int, 10)}
	case FieldList:
		return append([]string(nil), f.List...)
	default:
		return []string{f.Str}
	}
}

// Lines renders the response for the pipe transport: one line per field,
// the field name followed by its quoted values. A nil response renders no
// lines.
func (r *Response) Lines() []string {
	if r == nil {
		return nil
	}
	lines := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		lines = append(lines, lineproto.Join(append([]string{f.Name}, f.Values()...)...))
	}
	return lines
}
