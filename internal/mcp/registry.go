package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"weather-mcp/internal/apperr"
)

// Handler executes a tool against its decoded, validated arguments. The
// args value is the same type the tool's NewArgs constructor returns.
type Handler func(ctx context.Context, args any) (any, error)

// ToolSpec declares one callable tool: its advertised schema, the typed
// argument struct it decodes into, and the handler that runs it.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema InputSchema

	// NewArgs returns a pointer to a fresh argument struct with defaults
	// already applied. Fields carry `validate` tags for constraint checks.
	NewArgs func() any

	Handler Handler
}

// Registry holds the process-wide tool table. It is built once at startup
// and read-only afterwards, so lookups need no synchronization.
type Registry struct {
	order    []string
	tools    map[string]ToolSpec
	validate *validator.Validate
}

func NewRegistry() *Registry {
	v := validator.New()
	// Report fields by their wire (json) names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Registry{
		tools:    make(map[string]ToolSpec),
		validate: v,
	}
}

// Register adds a tool. Specs are checked once here so dispatch can trust
// them unconditionally.
func (r *Registry) Register(spec ToolSpec) error {
	if spec.Name == "" {
		return apperr.New(apperr.CodeInvalidRequest, "tool spec has no name")
	}
	if spec.NewArgs == nil || spec.Handler == nil {
		return apperr.New(apperr.CodeInvalidRequest,
			fmt.Sprintf("tool %q is missing an argument constructor or handler", spec.Name))
	}
	if _, exists := r.tools[spec.Name]; exists {
		return apperr.New(apperr.CodeDuplicateTool,
			fmt.Sprintf("tool %q is already registered", spec.Name))
	}
	r.tools[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Tools lists the registered tool definitions in registration order.
func (r *Registry) Tools() []Tool {
	defs := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		spec := r.tools[name]
		defs = append(defs, Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.tools)
}

// Call validates args against the named tool's schema and runs its handler.
// Validation failures come back as coded errors (unknown_tool,
// missing_parameter, invalid_parameter); a handler panic is recovered and
// reported as an internal error rather than unwinding into the dispatcher.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (result any, err error) {
	spec, ok := r.tools[name]
	if !ok {
		return nil, apperr.New(apperr.CodeUnknownTool, fmt.Sprintf("unknown tool %q", name))
	}

	for _, required := range spec.InputSchema.Required {
		if _, present := args[required]; !present {
			return nil, apperr.New(apperr.CodeMissingParameter,
				fmt.Sprintf("missing required parameter %q", required))
		}
	}

	target := spec.NewArgs()
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidParameter, "arguments are not serializable", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidParameter, invalidFieldMessage(err), err)
	}

	if err := r.validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			// Absent keys were already rejected against the schema above,
			// so a required-tag failure here means the key was supplied
			// with an empty value.
			if fe.Tag() == "required" {
				return nil, apperr.New(apperr.CodeInvalidParameter,
					fmt.Sprintf("parameter %q must not be empty", fe.Field()))
			}
			return nil, apperr.New(apperr.CodeInvalidParameter,
				fmt.Sprintf("parameter %q failed constraint %q", fe.Field(), fe.Tag()))
		}
		return nil, apperr.Wrap(apperr.CodeInvalidParameter, "argument validation failed", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = apperr.New(apperr.CodeInternal, fmt.Sprintf("tool %q panicked: %v", name, rec))
		}
	}()
	return spec.Handler(ctx, target)
}

func invalidFieldMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("parameter %q has wrong type (expected %s)", typeErr.Field, typeErr.Type)
	}
	return "arguments do not match the tool schema"
}
