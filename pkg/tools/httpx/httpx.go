package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/httpx-mcp/pkg/command"
	"github.com/tb0hdan/httpx-mcp/pkg/server"
	"github.com/tb0hdan/httpx-mcp/pkg/tools"
)

const (
	// ToolName is the name clients use in tools/call.
	ToolName = "httpx"

	description  = "Builds an httpx command line that probes the given targets for live HTTP services. The command is returned as text and is not executed."
	instructions = "Run the following command to scan the targets with httpx:"
)

var (
	// ErrTargetRequired is returned when no target was supplied.
	ErrTargetRequired error = tools.ParamsError("target is required")
	// ErrInvalidArguments is returned for any other argument problem.
	ErrInvalidArguments error = tools.ParamsError("invalid arguments")
)

// Input defines the MCP tool input parameters.
type Input struct {
	Target []string `json:"target" validate:"required,min=1,dive,required"`
	Ports  []int    `json:"ports,omitempty"`
	Probes []string `json:"probes,omitempty"`
}

// Tool implements the httpx command generator.
type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
}

// Schema returns the input schema advertised for the tool.
func Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"target": {
				Type:        "array",
				Description: "Domains, hosts or URLs to probe",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"ports": {
				Type:        "array",
				Description: "Ports to probe on every target",
				Items:       &jsonschema.Schema{Type: "number"},
			},
			"probes": {
				Type:        "array",
				Description: "Probe flags without the leading dash, e.g. title, status-code",
				Items:       &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"target"},
	}
}

// Definition describes the tool for tools/list and for the MCP server.
func (t *Tool) Definition() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolName,
		Description: description,
		InputSchema: Schema(),
	}
}

// Register registers the httpx tool with the MCP server and exposes it for
// direct calls.
func (t *Tool) Register(srv *server.Server) error {
	wrappedHandler := tools.WrapToolHandler(
		t.logger,
		ToolName,
		t.HttpxHandler,
	)

	mcp.AddTool(&srv.Server, t.Definition(), wrappedHandler)
	srv.AddDirectTool(t)
	t.logger.Debug().Msg("httpx tool registered")

	return nil
}

// HttpxHandler handles MCP tool requests.
func (t *Tool) HttpxHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	result, err := t.Call(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// CallRaw decodes raw tools/call arguments and calls the tool.
func (t *Tool) CallRaw(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var input Input
	if len(arguments) > 0 && string(arguments) != "null" {
		if err := json.Unmarshal(arguments, &input); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidArguments, err.Error())
		}
	}
	return t.Call(ctx, input)
}

// Call validates the input and returns the generated command as a text block.
func (t *Tool) Call(_ context.Context, input Input) (*mcp.CallToolResult, error) {
	if len(input.Target) == 0 {
		return nil, ErrTargetRequired
	}
	if err := t.validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArguments, validationMessage(err))
	}

	cmd := command.Build(command.Request{
		Targets: input.Target,
		Ports:   input.Ports,
		Probes:  input.Probes,
	})
	t.logger.Debug().Strs("targets", input.Target).Str("command", cmd).Msg("command generated")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: instructions + "\n\n" + cmd},
		},
	}, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	return validate
}

// validationMessage turns validator output into a short client-facing message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "min":
		return fe.Field() + " must not be empty"
	default:
		return fe.Field() + " is invalid"
	}
}

// New creates a new httpx tool.
func New(logger zerolog.Logger) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", ToolName).Logger(),
		validator: newValidator(),
	}
}
