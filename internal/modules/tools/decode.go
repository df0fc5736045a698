package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Decode parses the JSON arguments of the named tool into its typed
// operation and validates them.
func Decode(name string, raw json.RawMessage) (Operation, error) {
	var op Operation
	var err error
	switch Kind(strings.TrimSpace(name)) {
	case KindPlanRoute:
		op, err = decodeArgs[PlanRoute](raw)
	case KindOptimizeRoute:
		op, err = decodeArgs[OptimizeRoute](raw)
	case KindCalculateRoute:
		op, err = decodeArgs[CalculateRoute](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

func decodeArgs[T Operation](raw json.RawMessage) (T, error) {
	var args T
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, args.Kind(), err)
	}
	if err := validate.Struct(args); err != nil {
		return args, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, args.Kind(), err)
	}
	return args, nil
}
