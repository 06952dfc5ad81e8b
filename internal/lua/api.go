package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-colormix/pkg/colormix"
)

// API exposes a colormix.Mixer to Lua scripts. It registers:
//
//	blend_color(spec [, complementary]) -> {r, g, b, a}
//	to_rgb(name)                        -> r, g, b
//	complement(r, g, b [, a])           -> r, g, b, a
//	color_hex(r, g, b)                  -> "#rrggbb"
//
// The table returned by blend_color carries the channels both as r/g/b/a
// fields and at indices 1 to 4. Failures raise Lua errors.
type API struct {
	runtime *Runtime
	mixer   *colormix.Mixer
}

// RegisterAPI installs the color functions in runtime. A nil mixer uses the
// default palette.
func RegisterAPI(runtime *Runtime, mixer *colormix.Mixer) (*API, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if mixer == nil {
		mixer = colormix.New()
	}

	api := &API{runtime: runtime, mixer: mixer}
	funcs := []struct {
		name  string
		fn    rt.GoFunctionFunc
		nArgs int
	}{
		{"blend_color", api.blendColor, 2},
		{"to_rgb", api.toRGB, 1},
		{"complement", api.complement, 4},
		{"color_hex", api.colorHex, 3},
	}
	for _, f := range funcs {
		if err := runtime.SetGoFunction(f.name, f.fn, f.nArgs, false); err != nil {
			return nil, fmt.Errorf("register %s: %w", f.name, err)
		}
	}
	return api, nil
}

// Mixer returns the mixer backing the Lua functions.
func (api *API) Mixer() *colormix.Mixer {
	return api.mixer
}

func (api *API) blendColor(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	spec, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("blend_color: %w", err)
	}
	complementary := len(args) > 1 && rt.Truth(args[1])

	color, err := api.mixer.Blend(spec, complementary)
	if err != nil {
		return nil, fmt.Errorf("blend_color: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.TableValue(colorTable(color))), nil
}

func (api *API) toRGB(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	name, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("to_rgb: %w", err)
	}

	rgb, err := api.mixer.Resolver().ToRGB(name)
	if err != nil {
		return nil, fmt.Errorf("to_rgb: %w", err)
	}
	return c.PushingNext(t.Runtime,
		rt.FloatValue(rgb[0]), rt.FloatValue(rgb[1]), rt.FloatValue(rgb[2])), nil
}

func (api *API) complement(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	var in colormix.Color
	for i := 0; i < 3; i++ {
		v, err := getFloatArg(args, i)
		if err != nil {
			return nil, fmt.Errorf("complement: %w", err)
		}
		in[i] = v
	}
	in[3] = 1
	if len(args) > 3 && !args[3].IsNil() {
		a, err := getFloatArg(args, 3)
		if err != nil {
			return nil, fmt.Errorf("complement: %w", err)
		}
		in[3] = a
	}

	out := colormix.Complement(in)
	return c.PushingNext(t.Runtime,
		rt.FloatValue(out[0]), rt.FloatValue(out[1]), rt.FloatValue(out[2]), rt.FloatValue(out[3])), nil
}

func (api *API) colorHex(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	color := colormix.Color{0, 0, 0, 1}
	for i := 0; i < 3; i++ {
		v, err := getFloatArg(args, i)
		if err != nil {
			return nil, fmt.Errorf("color_hex: %w", err)
		}
		color[i] = v
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(color.Hex())), nil
}

// colorTable converts a Color to {r=, g=, b=, a=, [1]..[4]}.
func colorTable(color colormix.Color) *rt.Table {
	tbl := rt.NewTable()
	for i, key := range []string{"r", "g", "b", "a"} {
		v := rt.FloatValue(color[i])
		tbl.Set(rt.StringValue(key), v)
		tbl.Set(rt.IntValue(int64(i+1)), v)
	}
	return tbl
}

// getAllArgs combines Args() and Etc() to get all arguments including varargs.
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

// getFloatArg reads a numeric argument, accepting Lua integers and floats.
func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument #%d", idx+1)
	}
	if f, ok := args[idx].TryFloat(); ok {
		return f, nil
	}
	if i, ok := args[idx].TryInt(); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("argument #%d is not a number", idx+1)
}
