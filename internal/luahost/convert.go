// SPDX-License-Identifier: MPL-2.0

package luahost

import (
	"strconv"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"

	lua "github.com/yuin/gopher-lua"
)

// argsFromTable converts a request table. The array part becomes
// positional arguments; string keys become named arguments, with array
// values expanding to several values.
func argsFromTable(t *lua.LTable) (*discovery.Args, error) {
	if t == nil {
		return discovery.NewArgs(nil), nil
	}

	var positional []string
	n := t.Len()
	for i := 1; i <= n; i++ {
		value, err := scalar(t.RawGetInt(i))
		if err != nil {
			return nil, discovery.Controllerf("argument %d", i).Wrap(err)
		}
		positional = append(positional, value)
	}

	named := make(map[string][]string)
	var convErr error
	t.ForEach(func(k, v lua.LValue) {
		if convErr != nil {
			return
		}
		if num, ok := k.(lua.LNumber); ok {
			if i := int(num); float64(i) == float64(num) && i >= 1 && i <= n {
				return
			}
		}
		key, ok := k.(lua.LString)
		if !ok {
			convErr = discovery.Controllerf("argument key %s is not a string", k.String())
			return
		}
		vals, err := toValues(v)
		if err != nil {
			convErr = discovery.Controllerf("argument %s", string(key)).Wrap(err)
			return
		}
		named[string(key)] = vals
	})
	if convErr != nil {
		return nil, convErr
	}
	return discovery.NewNamedArgs(named, positional...), nil
}

func toValues(v lua.LValue) ([]string, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		s, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		s, err := scalar(t.RawGetInt(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func scalar(v lua.LValue) (string, error) {
	switch val := v.(type) {
	case lua.LString:
		return string(val), nil
	case lua.LBool:
		return strconv.FormatBool(bool(val)), nil
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return "", discovery.Controllerf("unsupported value of type %s", v.Type().String())
	}
}

// responseTable converts a response to a Lua table; a nil response becomes
// nil.
func responseTable(L *lua.LState, resp *discovery.Response) lua.LValue {
	if resp == nil {
		return lua.LNil
	}
	t := L.NewTable()
	for _, f := range resp.Fields() {
		switch f.Kind {
		case discovery.FieldBool:
			t.RawSetString(f.Name, lua.LBool(f.Bool))
		case discovery.FieldInt:
			t.RawSetString(f.Name, lua.LNumber(f.Int))
		case discovery.FieldList:
			list := L.NewTable()
			for i, s := range f.List {
				list.RawSetInt(i+1, lua.LString(s))
			}
			t.RawSetString(f.Name, list)
		default:
			t.RawSetString(f.Name, lua.LString(f.Str))
		}
	}
	return t
}
