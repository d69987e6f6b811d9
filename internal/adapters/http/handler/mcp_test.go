package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/AshithaPGowda/code-challenge/internal/core/voicetool"
)

func rpcErrorOf(t *testing.T, body map[string]any) (float64, string) {
	t.Helper()

	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	code, _ := e["code"].(float64)
	msg, _ := e["message"].(string)
	return code, msg
}

func TestMCP_Initialize(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	_, body := f.do(t, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	if body["jsonrpc"] != "2.0" || body["id"] != float64(1) {
		t.Fatalf("unexpected envelope: %v", body)
	}
	result, _ := body["result"].(map[string]any)
	if result["protocolVersion"] != mcpProtocolVersion {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestMCP_ToolsList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	_, body := f.do(t, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)

	result, _ := body["result"].(map[string]any)
	tools, _ := result["tools"].([]any)
	if len(tools) != len(voicetool.Names()) {
		t.Fatalf("expected %d tools, got %d", len(voicetool.Names()), len(tools))
	}
	first, _ := tools[0].(map[string]any)
	if first["name"] != string(voicetool.NameValidateSSN) || first["inputSchema"] == nil {
		t.Fatalf("unexpected first tool: %v", first)
	}
}

func TestMCP_ToolsCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	_, body := f.do(t, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"validate_ssn","arguments":{"ssn":"123-45-6789"}}}`)

	if f.tools.name != "validate_ssn" || !strings.Contains(f.tools.args, "123-45-6789") {
		t.Fatalf("unexpected dispatch: %s %s", f.tools.name, f.tools.args)
	}
	result, _ := body["result"].(map[string]any)
	if result["isError"] != nil {
		t.Fatalf("expected isError omitted, got %v", result["isError"])
	}
	content, _ := result["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("expected one content item, got %v", result)
	}
	item, _ := content[0].(map[string]any)
	var decoded voicetool.Result
	if err := json.Unmarshal([]byte(fmt.Sprint(item["text"])), &decoded); err != nil {
		t.Fatalf("decode text: %v", err)
	}
	if !decoded.Success {
		t.Fatalf("expected success in text payload, got %+v", decoded)
	}
}

func TestMCP_ToolFailureIsFlagged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	f.tools.result = &voicetool.Result{Error: "Invalid SSN format"}
	_, body := f.do(t, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"validate_ssn","arguments":{}}}`)

	result, _ := body["result"].(map[string]any)
	if result["isError"] != true {
		t.Fatalf("expected isError, got %v", result)
	}
}

func TestMCP_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		body    string
		callErr error
		code    float64
	}{
		{"parse error", `{`, nil, codeParseError},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, nil, codeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, nil, codeMethodNotFound},
		{"missing params", `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`, nil, codeInvalidParams},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"drop_tables"}}`, fmt.Errorf("%w: drop_tables", voicetool.ErrUnknownTool), codeMethodNotFound},
		{"internal", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"save_i9_field"}}`, errors.New("db down"), codeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, RouterOptions{})
			f.tools.err = tc.callErr
			rec, body := f.do(t, http.MethodPost, "/mcp", tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 envelope, got %d", rec.Code)
			}
			code, msg := rpcErrorOf(t, body)
			if code != tc.code {
				t.Fatalf("expected code %v, got %v (%s)", tc.code, code, msg)
			}
			if tc.code == codeInternalError && strings.Contains(msg, "db down") {
				t.Fatalf("internal details leaked: %s", msg)
			}
		})
	}
}

func TestMCP_InitializedNotification(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	rec, _ := f.do(t, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestMCPInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t, RouterOptions{})
	rec, body := f.do(t, http.MethodGet, "/mcp", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	info, _ := body["serverInfo"].(map[string]any)
	if info["name"] != mcpServerName {
		t.Fatalf("unexpected server info: %v", body)
	}
}
