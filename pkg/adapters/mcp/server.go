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

	"github.com/aretw0/promptdrafter"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/library"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const (
	kindsURI           = "promptdrafter://kinds"
	categoryURITmpl    = "promptdrafter://library/{category}"
	recordURITmpl      = "promptdrafter://library/{category}/{name}"
	libraryURIPrefix   = "promptdrafter://library/"
	defaultSSEBasePath = "http://localhost"
)

// WildcardsResponse lists normalized wildcard references.
type WildcardsResponse struct {
	Wildcards []string `json:"wildcards" jsonschema_description:"Referenced names such as wildcard_animal, in first-occurrence order"`
}

// ReconcileResponse is the port edit needed to match a text.
type ReconcileResponse struct {
	ToAdd    []string `json:"to_add" jsonschema_description:"Ports to create, in reference order"`
	ToRemove []string `json:"to_remove" jsonschema_description:"Ports to delete, in current order"`
}

// ListResponse lists the saved names of a category.
type ListResponse struct {
	Category domain.Category `json:"category" jsonschema_description:"Library category"`
	Names    []string        `json:"names" jsonschema_description:"Saved names, sorted"`
}

// Server exposes wildcard tooling and the prompt library over MCP.
type Server struct {
	library   *library.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(lib *library.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		library: lib,
		logger:  logger,
		mcpServer: server.NewMCPServer("promptdrafter-mcp", strings.TrimSpace(promptdrafter.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("%s:%d", defaultSSEBasePath, port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
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

type textsArgs struct {
	Texts []string `json:"texts"`
}

type reconcileArgs struct {
	Current []string `json:"current"`
	Texts   []string `json:"texts"`
}

type recordArgs struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

type categoryArgs struct {
	Category string `json:"category"`
}

type fillArgs struct {
	Text   string            `json:"text"`
	Prefix string            `json:"prefix"`
	Suffix string            `json:"suffix"`
	Values map[string]string `json:"values"`
}

func stringArray(name, description string, opts ...mcp.PropertyOption) mcp.ToolOption {
	opts = append([]mcp.PropertyOption{
		mcp.Description(description),
		mcp.Items(map[string]any{"type": "string"}),
	}, opts...)
	return mcp.WithArray(name, opts...)
}

func categoryParam() mcp.ToolOption {
	return mcp.WithString("category",
		mcp.Required(),
		mcp.Enum("dual", "single", "wildcard"),
		mcp.Description("Library category"),
	)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("extract_wildcards",
		mcp.WithDescription("Extract {wildcard_name} references from one or more prompt texts."),
		stringArray("texts", "Prompt texts to scan", mcp.Required()),
		mcp.WithOutputSchema[WildcardsResponse](),
	), mcp.NewStructuredToolHandler(s.handleExtract))

	s.mcpServer.AddTool(mcp.NewTool("reconcile_ports",
		mcp.WithDescription("Compute the wildcard ports to add and remove so a node matches its texts."),
		stringArray("current", "Current input port names of the node"),
		stringArray("texts", "Prompt texts of the node", mcp.Required()),
		mcp.WithOutputSchema[ReconcileResponse](),
	), mcp.NewStructuredToolHandler(s.handleReconcile))

	s.mcpServer.AddTool(mcp.NewTool("next_placeholder",
		mcp.WithDescription("Return the next free numeric placeholder, such as {wildcard_03}, for a text."),
		mcp.WithString("text", mcp.Description("Prompt text")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(domain.NextPlaceholder(request.GetString("text", ""))), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("combine_strings",
		mcp.WithDescription("Join fragments with \", \" without doubled, leading or trailing commas."),
		stringArray("strings", "Fragments to join", mcp.Required()),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Strings []string `json:"strings"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		return mcp.NewToolResultText(domain.SmartJoin(args.Strings...)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("fill_prompt",
		mcp.WithDescription("Wrap a prompt with prefix and suffix, substitute wildcard values and clean it up."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Prompt text")),
		mcp.WithString("prefix", mcp.Description("Text placed before the prompt")),
		mcp.WithString("suffix", mcp.Description("Text placed after the prompt")),
		mcp.WithObject("values", mcp.Description("Wildcard values keyed by wildcard_name or name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args fillArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		filled := domain.ProcessPrompt(args.Text, args.Prefix, args.Suffix, args.Values)
		return mcp.NewToolResultText(domain.CleanPrompt(filled)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("list_library",
		mcp.WithDescription("List the saved names of a library category."),
		categoryParam(),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("load_record",
		mcp.WithDescription("Load a saved prompt or wildcard list."),
		categoryParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Saved name")),
		mcp.WithOutputSchema[domain.Record](),
	), mcp.NewStructuredToolHandler(s.handleLoad))

	s.mcpServer.AddTool(mcp.NewTool("save_record",
		mcp.WithDescription("Save a prompt or wildcard list. Dual prompts take positive and negative, single prompts take prompt, wildcard lists take raw_text."),
		categoryParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name to save under")),
		mcp.WithString("positive", mcp.Description("Positive prompt (dual)")),
		mcp.WithString("negative", mcp.Description("Negative prompt (dual)")),
		mcp.WithString("prompt", mcp.Description("Prompt (single)")),
		mcp.WithString("raw_text", mcp.Description("Values separated by newlines, | or commas (wildcard)")),
		mcp.WithOutputSchema[domain.Record](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a saved prompt or wildcard list."),
		categoryParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Saved name")),
		mcp.WithDestructiveHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args recordArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		category, err := domain.ParseCategory(args.Category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.library.Delete(ctx, category, args.Name); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %s '%s'", category.RecordType(), args.Name)), nil
	})
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest, args textsArgs) (WildcardsResponse, error) {
	return WildcardsResponse{Wildcards: domain.ExtractWildcards(args.Texts...)}, nil
}

func (s *Server) handleReconcile(ctx context.Context, request mcp.CallToolRequest, args reconcileArgs) (ReconcileResponse, error) {
	current := domain.DynamicPorts(args.Current, domain.WildcardPrefix)
	edit := domain.Reconcile(current, domain.ExtractWildcards(args.Texts...))
	return ReconcileResponse{
		ToAdd:    nonNil(edit.ToAdd),
		ToRemove: nonNil(edit.ToRemove),
	}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args categoryArgs) (ListResponse, error) {
	category, err := domain.ParseCategory(args.Category)
	if err != nil {
		return ListResponse{}, err
	}
	names, err := s.library.List(ctx, category)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	return ListResponse{Category: category, Names: nonNil(names)}, nil
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args recordArgs) (domain.Record, error) {
	category, err := domain.ParseCategory(args.Category)
	if err != nil {
		return domain.Record{}, err
	}
	rec, err := s.library.Load(ctx, category, args.Name)
	if err != nil {
		return domain.Record{}, fmt.Errorf("load failed: %w", err)
	}
	return *rec, nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Record, error) {
	raw, _ := args["category"].(string)
	category, err := domain.ParseCategory(raw)
	if err != nil {
		return domain.Record{}, err
	}
	payload := make(map[string]interface{}, len(args))
	for k, v := range args {
		if k != "category" {
			payload[k] = v
		}
	}
	rec, err := s.library.SaveFromMap(ctx, category, payload)
	if err != nil {
		s.logger.Warn("MCP save rejected", "category", category, "err", err)
		return domain.Record{}, fmt.Errorf("save failed: %w", err)
	}
	return *rec, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(kindsURI, "Node Kinds",
		mcp.WithResourceDescription("Node kinds with their text fields and static inputs"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(kindsURI, domain.Kinds())
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(categoryURITmpl, "Library Category",
		mcp.WithTemplateDescription("Saved names of a category: dual, single or wildcard"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readLibrary)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(recordURITmpl, "Library Record",
		mcp.WithTemplateDescription("A saved prompt or wildcard list"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readLibrary)
}

// readLibrary serves both library templates by splitting the URI itself.
func (s *Server) readLibrary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	rest, ok := strings.CutPrefix(uri, libraryURIPrefix)
	if !ok || rest == "" {
		return nil, fmt.Errorf("unsupported resource %q", uri)
	}
	rawCategory, name, hasName := strings.Cut(rest, "/")
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	if !hasName {
		names, err := s.library.List(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", category, err)
		}
		return jsonContents(uri, nonNil(names))
	}

	rec, err := s.library.Load(ctx, category, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %q: %w", category, name, err)
	}
	return jsonContents(uri, rec)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
