package native

import (
	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/value"
)

// Func is the native calling convention: the interpreter passes the argument
// count, the module context and the arguments, and receives one Value.
//
// A native validates its own arguments and signals contract violations by
// failing (Fail, Assertf, ExpectArgc, the *Arg helpers); there is no error
// return. Every Value it returns must be built through mod.GC().
type Func func(argc int, mod *Module, args []value.Value) value.Value

// Invoke runs fn under the call convention.
//
// The heap's per-call budget is opened for the duration of the call. A
// call-phase failure raised by the native is recovered and returned as the
// call's error with no result. Any other panic, allocator exhaustion
// included, is not ours to handle and propagates.
func Invoke(mod *Module, name string, fn Func, args []value.Value) (result value.Value, err error) {
	if mod == nil || mod.heap == nil {
		return value.Value{}, errors.NotInitialized(errors.PhaseCall, "module")
	}
	if fn == nil {
		return value.Value{}, errors.NotFound(errors.PhaseCall, "native", name)
	}

	log := mod.logger
	log.Debug("native call", zap.String("func", name), zap.Int("argc", len(args)))

	mod.heap.BeginCall()
	defer mod.heap.EndCall()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		callErr, ok := r.(*errors.Error)
		if !ok || callErr.Phase != errors.PhaseCall {
			panic(r)
		}
		if callErr.Function == "" {
			callErr.Function = name
		}
		log.Debug("native call aborted", zap.String("func", name), zap.Error(callErr))
		result, err = value.Value{}, callErr
	}()

	result = fn(len(args), mod, args)
	if !result.IsValid() {
		return value.Value{}, errors.New(errors.PhaseCall, errors.KindInvalidData).
			Function(name).
			Detail("native returned no value").
			Build()
	}
	return result, nil
}
