package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openprobity/crosswalk"
	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/probity"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Engine defines the interface required by the MCP server to run and
// validate transforms.
type Engine interface {
	Transform(ctx context.Context, cw *domain.Crosswalk, source *tabular.Table) (*crosswalk.Result, error)
	Validate(ctx context.Context, tr *domain.Transform, source *tabular.Table) error
}

// WireColumn is one named column of cells as exchanged with tools.
type WireColumn struct {
	Name  string `json:"name" jsonschema_description:"Column name"`
	Cells []any  `json:"cells" jsonschema_description:"Column cells, null for missing values"`
}

// TransformResponse is the structured result of a run_transform call.
type TransformResponse struct {
	Table     []WireColumn      `json:"table" jsonschema_description:"Destination-conformant table"`
	Transform *domain.Transform `json:"transform" jsonschema_description:"Immutable transform record with source and destination checksums"`
	Warnings  []actions.Warning `json:"warnings,omitempty" jsonschema_description:"Recoverable coercion warnings"`
}

// ValidateResponse is the structured result of a validate_transform call.
type ValidateResponse struct {
	Valid  bool   `json:"valid" jsonschema_description:"Whether the replay reproduced the recorded checksums"`
	Detail string `json:"detail,omitempty" jsonschema_description:"Mismatch detail when invalid"`
}

// InspectResponse is the structured result of an inspect_crosswalk call.
type InspectResponse struct {
	Name    string   `json:"name" jsonschema_description:"Crosswalk name"`
	Actions []string `json:"actions" jsonschema_description:"Parsed action script, one statement per entry"`
	Valid   bool     `json:"valid" jsonschema_description:"Whether the crosswalk passed structural checks"`
	Detail  string   `json:"detail,omitempty" jsonschema_description:"Structural check failure detail"`
}

// Server wraps the crosswalk Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("crosswalk-mcp", strings.TrimSpace(crosswalk.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: run_transform
	runTool := mcp.NewTool("run_transform",
		mcp.WithDescription("Execute a crosswalk against a source table and return the conformed destination table with its transform record."),
		mcp.WithString("crosswalk", mcp.Required(), mcp.Description("JSON crosswalk document: name, source_schema, destination_schema, actions")),
		mcp.WithString("table", mcp.Required(), mcp.Description("JSON array of columns: [{name, cells}]")),
		mcp.WithOutputSchema[TransformResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunTransform))

	// TOOL: validate_transform
	validateTool := mcp.NewTool("validate_transform",
		mcp.WithDescription("Replay a transform record against a claimed source table and verify the recorded checksums."),
		mcp.WithString("transform", mcp.Required(), mcp.Description("JSON transform record")),
		mcp.WithString("table", mcp.Required(), mcp.Description("JSON array of columns: [{name, cells}]")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidateTransform))

	// TOOL: inspect_crosswalk
	inspectTool := mcp.NewTool("inspect_crosswalk",
		mcp.WithDescription("Parse a crosswalk document and report its action script and structural validity without executing it."),
		mcp.WithString("crosswalk", mcp.Required(), mcp.Description("JSON crosswalk document")),
		mcp.WithOutputSchema[InspectResponse](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspectCrosswalk))

	// TOOL: list_actions
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the action vocabulary available in crosswalk scripts."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(script.Kinds())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleRunTransform(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TransformResponse, error) {
	cw, err := crosswalkArg(args)
	if err != nil {
		return TransformResponse{}, err
	}

	table, err := tableArg(args)
	if err != nil {
		return TransformResponse{}, err
	}

	result, err := s.engine.Transform(ctx, cw, table)
	if err != nil {
		return TransformResponse{}, fmt.Errorf("transform failed: %w", err)
	}

	return TransformResponse{
		Table:     tableToWire(result.Table),
		Transform: result.Transform,
		Warnings:  result.Warnings,
	}, nil
}

func (s *Server) handleValidateTransform(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	trStr, _ := args["transform"].(string)
	var trDoc map[string]any
	if err := json.Unmarshal([]byte(trStr), &trDoc); err != nil {
		return ValidateResponse{}, fmt.Errorf("invalid transform document: %w", err)
	}

	tr, err := domain.DecodeTransform(trDoc)
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("invalid transform: %w", err)
	}

	table, err := tableArg(args)
	if err != nil {
		return ValidateResponse{}, err
	}

	if err := s.engine.Validate(ctx, tr, table); err != nil {
		var mismatch *probity.MismatchError
		if !errors.As(err, &mismatch) {
			return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
		}
		return ValidateResponse{Valid: false, Detail: mismatch.Error()}, nil
	}

	return ValidateResponse{Valid: true}, nil
}

func (s *Server) handleInspectCrosswalk(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (InspectResponse, error) {
	cw, err := crosswalkArg(args)
	if err != nil {
		return InspectResponse{}, err
	}

	resp := InspectResponse{Name: cw.Name, Valid: true}
	for _, d := range cw.Actions {
		resp.Actions = append(resp.Actions, d.String())
	}
	if err := cw.Check(); err != nil {
		resp.Valid = false
		resp.Detail = err.Error()
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: crosswalk://actions
	s.mcpServer.AddResource(mcp.NewResource("crosswalk://actions", "Action Vocabulary",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(script.Kinds())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "crosswalk://actions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// -- Helpers --

func crosswalkArg(args map[string]interface{}) (*domain.Crosswalk, error) {
	cwStr, _ := args["crosswalk"].(string)
	var doc map[string]any
	if err := json.Unmarshal([]byte(cwStr), &doc); err != nil {
		return nil, fmt.Errorf("invalid crosswalk document: %w", err)
	}
	cw, err := domain.DecodeCrosswalk(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid crosswalk: %w", err)
	}
	return cw, nil
}

func tableArg(args map[string]interface{}) (*tabular.Table, error) {
	tblStr, _ := args["table"].(string)
	var cols []WireColumn
	if err := json.Unmarshal([]byte(tblStr), &cols); err != nil {
		return nil, fmt.Errorf("invalid table document: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	out := make([]*tabular.Column, len(cols))
	for i, c := range cols {
		out[i] = &tabular.Column{Name: c.Name, Cells: c.Cells}
	}
	return tabular.FromColumns(out)
}

func tableToWire(t *tabular.Table) []WireColumn {
	names := t.ColumnNames()
	cols := make([]WireColumn, len(names))
	for i, name := range names {
		col, _ := t.Column(name)
		cols[i] = WireColumn{Name: name, Cells: col.Cells}
	}
	return cols
}
