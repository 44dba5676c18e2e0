package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/models"
)

// maxDocumentSize bounds how much a remote document may send.
const maxDocumentSize = 32 << 20

// ErrNotOpenAPI is returned for documents that are not an OpenAPI 3 mapping.
var ErrNotOpenAPI = errors.New("not an OpenAPI 3 document")

// Parser reads OpenAPI 3 documents from files, URLs or raw content.
type Parser struct {
	client *http.Client
}

// NewParser creates a new OpenAPI parser.
func NewParser() *Parser {
	return &Parser{client: &http.Client{Timeout: 30 * time.Second}}
}

// SpecInfo summarizes a parsed document.
type SpecInfo struct {
	Title          string `json:"title"`
	Version        string `json:"version"`
	Description    string `json:"description"`
	OpenAPI        string `json:"openapi"`
	OperationCount int    `json:"operationCount"`
}

// ParseResult contains the parsed document and the spec record describing it.
type ParseResult struct {
	Spec     *models.Spec
	Document *yaml.Node
}

// Parse decodes YAML or JSON content into a node tree.
func (p *Parser) Parse(content []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	root := document.Root(&doc)
	if !document.IsMapping(root) {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrNotOpenAPI)
	}
	if v := document.String(root, "openapi"); !strings.HasPrefix(v, "3.") {
		if document.Has(root, "swagger") {
			return nil, fmt.Errorf("%w: Swagger 2.0 documents are not supported", ErrNotOpenAPI)
		}
		return nil, fmt.Errorf("%w: missing or unsupported openapi version %q", ErrNotOpenAPI, v)
	}

	return &doc, nil
}

// ParseSpec parses content and builds a new spec record for it.
func (p *Parser) ParseSpec(content, name string) (*ParseResult, error) {
	doc, err := p.Parse([]byte(content))
	if err != nil {
		return nil, err
	}

	info := p.Info(doc)
	if name == "" {
		name = info.Title
	}

	now := time.Now()
	spec := &models.Spec{
		ID:             uuid.New().String(),
		Name:           name,
		Version:        info.Version,
		Description:    info.Description,
		OpenAPI:        info.OpenAPI,
		Content:        content,
		OperationCount: info.OperationCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return &ParseResult{Spec: spec, Document: doc}, nil
}

// Load reads a document from a local path or an http(s) URL.
func (p *Parser) Load(ctx context.Context, source string) (*yaml.Node, error) {
	content, err := p.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return doc, nil
}

// Read returns the raw bytes of a local path or an http(s) URL.
func (p *Parser) Read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		content, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
		}
		return content, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid document URL: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %s returned %s", source, resp.Status)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document body: %w", err)
	}
	return content, nil
}

// Info extracts the info block and counts the operations of doc.
func (p *Parser) Info(doc *yaml.Node) SpecInfo {
	root := document.Root(doc)
	info := document.Lookup(root, "info")

	locator, _ := minify.NewLocator(doc)
	return SpecInfo{
		Title:          document.String(info, "title"),
		Version:        document.String(info, "version"),
		Description:    document.String(info, "description"),
		OpenAPI:        document.String(root, "openapi"),
		OperationCount: len(locator.Operations()),
	}
}
