package stage

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// LuaMap evaluates a Lua expression or chunk per record and stores the
// result in Record.Mapped. The script sees `locator` (string) and
// `meta` (table) as globals. Scripts without an explicit return are
// wrapped as expressions.
type LuaMap struct {
	Script string `yaml:"script"`
}

func (*LuaMap) StageName() string { return "lua-map" }

func (s *LuaMap) Run(env *Envelope) error {
	if s.Script == "" {
		return fmt.Errorf("lua-map: missing script")
	}
	code := wrapReturn(s.Script)
	for i, rec := range env.Records {
		v, err := evalRecord(code, rec)
		if err != nil {
			return fmt.Errorf("lua-map %s: %v", rec.Locator, err)
		}
		env.Records[i].Mapped = v
	}
	return nil
}

// LuaFilter keeps only the records for which the script evaluates to a
// truthy value. Same sandbox and globals as lua-map.
type LuaFilter struct {
	Script string `yaml:"script"`
}

func (*LuaFilter) StageName() string { return "lua-filter" }

func (s *LuaFilter) Run(env *Envelope) error {
	if s.Script == "" {
		return fmt.Errorf("lua-filter: missing script")
	}
	code := wrapReturn(s.Script)
	kept := env.Records[:0]
	for _, rec := range env.Records {
		v, err := evalRecord(code, rec)
		if err != nil {
			return fmt.Errorf("lua-filter %s: %v", rec.Locator, err)
		}
		if truthy(v) {
			kept = append(kept, rec)
		}
	}
	env.Records = kept
	return nil
}

// wrapReturn allows bare expressions without an explicit return.
func wrapReturn(code string) string {
	if strings.Contains(code, "return") {
		return code
	}
	return "return (" + code + ")"
}

func evalRecord(code string, rec Record) (any, error) {
	L := newSandboxState()
	defer L.Close()
	L.SetGlobal("locator", lua.LString(rec.Locator))
	L.SetGlobal("meta", goToLua(L, rec.Meta))
	if err := L.DoString(code); err != nil {
		return nil, err
	}
	return luaToGo(L.Get(-1)), nil
}

// newSandboxState opens only base, string, table and math. No io, no
// os, no package loading.
func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

func goToLua(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []any:
		tbl := L.NewTable()
		for _, item := range t {
			tbl.Append(goToLua(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, item := range t {
			tbl.RawSetString(k, goToLua(L, item))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(t))
	}
}

func luaToGo(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	case *lua.LTable:
		if n := t.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, luaToGo(t.RawGetInt(i)))
			}
			return out
		}
		out := map[string]any{}
		t.ForEach(func(k, val lua.LValue) {
			out[k.String()] = luaToGo(val)
		})
		return out
	default:
		return v.String()
	}
}
