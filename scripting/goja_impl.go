package scripting

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	// The watcher must be gone before the interrupt flag is cleared,
	// otherwise a late Interrupt leaks into the next script.
	defer func() {
		close(done)
		<-exited
		e.vm.ClearInterrupt()
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// RegisterDOM binds the session's input surface as globals:
//
//	tool(name)                 down(x, y, mods)   move(x, y)   up(x, y)
//	click(x, y, mods)          dblclick(x, y)     key(name, mods)
//	type(text)                 scroll(dx, dy)     widgets()
//	textSize(n) textColor(hex) sigWidth(n) sigColor(hex)   log(msg)
//
// mods is an optional object such as {shift: true, meta: true}.
func (e *GojaEngine) RegisterDOM(dom SessionDOM) error {
	fns := map[string]func(goja.FunctionCall) goja.Value{
		"tool": func(call goja.FunctionCall) goja.Value {
			e.check(dom.SetTool(call.Argument(0).String()))
			return goja.Undefined()
		},
		"down": func(call goja.FunctionCall) goja.Value {
			x, y := point(call)
			e.check(dom.PointerDown(x, y, modifiers(call.Argument(2))))
			return goja.Undefined()
		},
		"move": func(call goja.FunctionCall) goja.Value {
			x, y := point(call)
			dom.PointerMove(x, y)
			return goja.Undefined()
		},
		"up": func(call goja.FunctionCall) goja.Value {
			x, y := point(call)
			dom.PointerUp(x, y)
			return goja.Undefined()
		},
		"click": func(call goja.FunctionCall) goja.Value {
			x, y := point(call)
			e.check(dom.PointerDown(x, y, modifiers(call.Argument(2))))
			dom.PointerUp(x, y)
			return goja.Undefined()
		},
		"dblclick": func(call goja.FunctionCall) goja.Value {
			x, y := point(call)
			e.check(dom.DoubleClick(x, y))
			return goja.Undefined()
		},
		"key": func(call goja.FunctionCall) goja.Value {
			e.check(dom.Key(call.Argument(0).String(), modifiers(call.Argument(1))))
			return goja.Undefined()
		},
		"type": func(call goja.FunctionCall) goja.Value {
			return e.vm.ToValue(dom.Type(call.Argument(0).String()))
		},
		"scroll": func(call goja.FunctionCall) goja.Value {
			dom.Scroll(call.Argument(0).ToFloat(), call.Argument(1).ToFloat())
			return goja.Undefined()
		},
		"textSize": func(call goja.FunctionCall) goja.Value {
			return e.vm.ToValue(dom.SetTextSize(int(call.Argument(0).ToInteger())))
		},
		"textColor": func(call goja.FunctionCall) goja.Value {
			e.check(dom.SetTextColor(call.Argument(0).String()))
			return goja.Undefined()
		},
		"sigWidth": func(call goja.FunctionCall) goja.Value {
			return e.vm.ToValue(dom.SetStrokeWidth(int(call.Argument(0).ToInteger())))
		},
		"sigColor": func(call goja.FunctionCall) goja.Value {
			e.check(dom.SetStrokeColor(call.Argument(0).String()))
			return goja.Undefined()
		},
		"widgets": func(call goja.FunctionCall) goja.Value {
			return e.vm.ToValue(dom.Widgets())
		},
		"log": func(call goja.FunctionCall) goja.Value {
			dom.Log(joinArgs(call.Arguments))
			return goja.Undefined()
		},
	}
	for name, fn := range fns {
		if err := e.vm.Set(name, fn); err != nil {
			return fmt.Errorf("scripting: register %s: %w", name, err)
		}
	}

	console := e.vm.NewObject()
	if err := console.Set("log", fns["log"]); err != nil {
		return err
	}
	return e.vm.Set("console", console)
}

// check raises err as a script exception.
func (e *GojaEngine) check(err error) {
	if err != nil {
		panic(e.vm.NewGoError(err))
	}
}

func point(call goja.FunctionCall) (float64, float64) {
	return call.Argument(0).ToFloat(), call.Argument(1).ToFloat()
}

func modifiers(v goja.Value) Modifiers {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return Modifiers{}
	}
	m, ok := v.Export().(map[string]interface{})
	if !ok {
		return Modifiers{}
	}
	flag := func(k string) bool {
		b, _ := m[k].(bool)
		return b
	}
	return Modifiers{
		Shift: flag("shift"),
		Ctrl:  flag("ctrl"),
		Meta:  flag("meta"),
		Alt:   flag("alt"),
	}
}

func joinArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
