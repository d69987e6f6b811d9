package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/voicetool"
)

const (
	jsonRPCVersion     = "2.0"
	mcpProtocolVersion = "2024-11-05"
	mcpServerName      = "i9-voice-assistant"
	mcpServerVersion   = "1.0.0"

	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func serverInfo() map[string]string {
	return map[string]string{"name": mcpServerName, "version": mcpServerVersion}
}

// MCPInfo はサーバー情報とツール一覧を返します。
func (h *Handler) MCPInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"protocolVersion": mcpProtocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo":      serverInfo(),
		"tools":           voicetool.Definitions(),
	})
}

// MCP は JSON-RPC 2.0 形式のツール呼び出しを処理します。
func (h *Handler) MCP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeRPC(w, rpcResponse{Error: &rpcError{Code: codeParseError, Message: "Parse error"}})
		return
	}
	if req.Method == "" {
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "Invalid request"}})
		return
	}

	switch req.Method {
	case "initialize":
		writeRPC(w, rpcResponse{ID: req.ID, Result: map[string]any{
			"protocolVersion": mcpProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      serverInfo(),
		}})
	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)
	case "ping":
		writeRPC(w, rpcResponse{ID: req.ID, Result: map[string]any{}})
	case "tools/list":
		writeRPC(w, rpcResponse{ID: req.ID, Result: map[string]any{"tools": voicetool.Definitions()}})
	case "tools/call":
		h.callTool(w, r, req)
	default:
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method}})
	}
}

func (h *Handler) callTool(w http.ResponseWriter, r *http.Request, req rpcRequest) {
	var params callParams
	if len(req.Params) == 0 || json.Unmarshal(req.Params, &params) != nil || params.Name == "" {
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidParams, Message: "Invalid params"}})
		return
	}

	res, err := h.tools.Call(r.Context(), params.Name, params.Arguments)
	switch {
	case errors.Is(err, voicetool.ErrUnknownTool):
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeMethodNotFound, Message: "Unknown tool: " + params.Name}})
		return
	case err != nil:
		h.logger.Error("mcp tool call failed", zap.String("tool", params.Name), zap.Error(err))
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInternalError, Message: internalErrorMessage}})
		return
	}

	text, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		h.logger.Error("mcp result encode failed", zap.String("tool", params.Name), zap.Error(err))
		writeRPC(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInternalError, Message: internalErrorMessage}})
		return
	}
	writeRPC(w, rpcResponse{ID: req.ID, Result: callResult{
		Content: []textContent{{Type: "text", Text: string(text)}},
		IsError: !res.Success,
	}})
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	resp.JSONRPC = jsonRPCVersion
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, resp)
}
