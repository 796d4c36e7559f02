// Package vm executes bundles in an embedded JavaScript engine. Only the
// globals a bundle needs to print and exit are provided: console and a small
// process object.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Options configure a VM.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Argv becomes process.argv after the "mako" and bundle-name slots.
	Argv []string
}

// VM runs one bundle. It is not safe for concurrent use.
type VM struct {
	rt     *goja.Runtime
	stdout io.Writer
	stderr io.Writer
	mu     sync.Mutex // guards writes from console methods

	// ExitCode is the code passed to process.exit, or 0.
	ExitCode int
	// Exited is set once process.exit was called.
	Exited bool
}

type exitSignal struct{ code int }

// New creates a VM with console and process installed.
func New(opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	vm := &VM{rt: goja.New(), stdout: opts.Stdout, stderr: opts.Stderr}
	vm.installConsole()
	vm.installProcess(opts.Argv)
	return vm
}

// Run compiles and executes code. Cancelling ctx interrupts the script.
// A thrown value comes back as *RuntimeError; process.exit stops the script
// without an error and sets ExitCode.
func (vm *VM) Run(ctx context.Context, name, code string) error {
	prog, err := goja.Compile(name, code, false)
	if err != nil {
		return &RuntimeError{Kind: ErrorSyntax, Message: err.Error()}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.rt.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err = vm.rt.RunProgram(prog)
	// an exit requested on the last statement may leave the flag set
	vm.rt.ClearInterrupt()
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch v := interrupted.Value().(type) {
		case exitSignal:
			return nil
		case error:
			return fmt.Errorf("script interrupted: %w", v)
		}
		return err
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return &RuntimeError{Kind: ErrorThrown, Message: exc.Value().String(), Stack: exc.String()}
	}
	return err
}

func (vm *VM) installProcess(argv []string) {
	proc := vm.rt.NewObject()
	args := []any{"mako", "bundle"}
	for _, a := range argv {
		args = append(args, a)
	}
	_ = proc.Set("argv", vm.rt.NewArray(args...))
	_ = proc.Set("exit", func(call goja.FunctionCall) goja.Value {
		code := 0
		if arg := call.Argument(0); !goja.IsUndefined(arg) {
			code = int(arg.ToInteger())
		}
		vm.ExitCode = code
		vm.Exited = true
		vm.rt.Interrupt(exitSignal{code: code})
		return goja.Undefined()
	})
	_ = vm.rt.Set("process", proc)
}

func (vm *VM) installConsole() {
	console := vm.rt.NewObject()
	out := vm.printer(func() io.Writer { return vm.stdout })
	errOut := vm.printer(func() io.Writer { return vm.stderr })
	_ = console.Set("log", out)
	_ = console.Set("info", out)
	_ = console.Set("debug", out)
	_ = console.Set("warn", errOut)
	_ = console.Set("error", errOut)
	_ = vm.rt.Set("console", console)
}

func (vm *VM) printer(w func() io.Writer) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = vm.format(arg)
		}
		vm.mu.Lock()
		defer vm.mu.Unlock()
		_, _ = io.WriteString(w(), strings.Join(parts, " ")+"\n")
		return goja.Undefined()
	}
}

// format renders a console argument roughly the way node does: strings
// raw, plain objects and arrays as JSON, everything else via ToString.
func (vm *VM) format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		return "[Function]"
	}
	if obj.ClassName() == "Error" {
		return obj.String()
	}
	stringify, ok := goja.AssertFunction(vm.rt.Get("JSON").ToObject(vm.rt).Get("stringify"))
	if !ok {
		return obj.String()
	}
	s, err := stringify(goja.Undefined(), obj)
	if err != nil || goja.IsUndefined(s) {
		return obj.String()
	}
	return s.String()
}
