package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/tb0hdan/httpx-mcp/pkg/jsonrpc"
	"github.com/tb0hdan/httpx-mcp/pkg/server"
	"github.com/tb0hdan/httpx-mcp/pkg/tools/httpx"
)

// failingTool always fails with an error that is not about its arguments.
type failingTool struct{}

func (failingTool) Definition() *mcp.Tool {
	return &mcp.Tool{Name: "broken"}
}

func (failingTool) CallRaw(context.Context, json.RawMessage) (*mcp.CallToolResult, error) {
	return nil, errors.New("backend unavailable")
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonrpc.Error  `json:"error"`
}

type DispatchTestSuite struct {
	suite.Suite
	srv   *server.Server
	table *Table
}

func (s *DispatchTestSuite) SetupTest() {
	s.srv = server.NewServer(&mcp.Implementation{Name: "httpx-mcp", Version: "1.2.3"})
	s.Require().NoError(httpx.New(zerolog.Nop()).Register(s.srv))
	s.table = New(s.srv, zerolog.Nop())
}

func (s *DispatchTestSuite) dispatch(raw string) (*Reply, wireResponse, bool) {
	req, err := jsonrpc.Decode([]byte(raw))
	s.Require().NoError(err)

	reply, handled := s.table.Dispatch(context.Background(), req)
	if !handled {
		return nil, wireResponse{}, false
	}
	s.Require().NotNil(reply)

	data, err := json.Marshal(reply.Body)
	s.Require().NoError(err)

	var resp wireResponse
	s.Require().NoError(json.Unmarshal(data, &resp))
	return reply, resp, true
}

func (s *DispatchTestSuite) TestLookup() {
	for _, method := range []string{MethodInitialize, MethodToolsList, MethodToolsCall} {
		fn, ok := s.table.Lookup(method)
		s.True(ok, method)
		s.NotNil(fn, method)
	}

	_, ok := s.table.Lookup("resources/list")
	s.False(ok)
}

func (s *DispatchTestSuite) TestInitialize() {
	for _, id := range []string{`1`, `"init-42"`} {
		reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":` + id + `,"method":"initialize","params":{}}`)
		s.Require().True(handled)
		s.Equal(http.StatusOK, reply.Status)
		s.JSONEq(id, string(resp.ID))
		s.Nil(resp.Error)

		var result struct {
			ProtocolVersion string `json:"protocolVersion"`
			Capabilities    struct {
				Tools *struct {
					ListChanged bool `json:"listChanged"`
				} `json:"tools"`
			} `json:"capabilities"`
			ServerInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		}
		s.Require().NoError(json.Unmarshal(resp.Result, &result))
		s.Equal("2025-03-26", result.ProtocolVersion)
		s.Require().NotNil(result.Capabilities.Tools)
		s.True(result.Capabilities.Tools.ListChanged)
		s.Equal("httpx-mcp", result.ServerInfo.Name)
		s.Equal("1.2.3", result.ServerInfo.Version)
	}
}

func (s *DispatchTestSuite) TestToolsList() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	s.Require().True(handled)
	s.Equal(http.StatusOK, reply.Status)

	var result struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type     string   `json:"type"`
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	s.Require().NoError(json.Unmarshal(resp.Result, &result))
	s.Require().Len(result.Tools, 1)
	s.Equal("httpx", result.Tools[0].Name)
	s.NotEmpty(result.Tools[0].Description)
	s.Equal("object", result.Tools[0].InputSchema.Type)
	s.Contains(result.Tools[0].InputSchema.Required, "target")
}

func (s *DispatchTestSuite) TestToolsCall() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"httpx","arguments":{"target":["example.com"],"probes":["title","status-code"]}}}`)
	s.Require().True(handled)
	s.Equal(http.StatusOK, reply.Status)
	s.JSONEq(`3`, string(resp.ID))

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	s.Require().NoError(json.Unmarshal(resp.Result, &result))
	s.False(result.IsError)
	s.Require().Len(result.Content, 1)
	s.Equal("text", result.Content[0].Type)
	s.Contains(result.Content[0].Text, "httpx -u example.com -silent -title -status-code")
}

func (s *DispatchTestSuite) TestToolsCall_EmptyTarget() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"httpx","arguments":{"target":[]}}}`)
	s.Require().True(handled)
	s.Equal(http.StatusBadRequest, reply.Status)
	s.JSONEq(`4`, string(resp.ID))
	s.Require().NotNil(resp.Error)
	s.Equal(-32602, resp.Error.Code)
	s.Equal("target is required", resp.Error.Message)
}

func (s *DispatchTestSuite) TestToolsCall_MissingArguments() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"httpx"}}`)
	s.Require().True(handled)
	s.Equal(http.StatusBadRequest, reply.Status)
	s.Require().NotNil(resp.Error)
	s.Equal(jsonrpc.InvalidParams, resp.Error.Code)
	s.Equal("target is required", resp.Error.Message)
}

func (s *DispatchTestSuite) TestToolsCall_UnrestrictedPortsAndProbes() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"httpx","arguments":{"target":["example.com"],"ports":[0],"probes":["status_code","H"]}}}`)
	s.Require().True(handled)
	s.Equal(http.StatusOK, reply.Status)
	s.Nil(resp.Error)

	data, err := json.Marshal(resp.Result)
	s.Require().NoError(err)
	s.Contains(string(data), "httpx -u example.com -silent -p 0 -status_code -H")
}

func (s *DispatchTestSuite) TestToolsCall_BlankTargetEntry() {
	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"httpx","arguments":{"target":["example.com",""]}}}`)
	s.Require().True(handled)
	s.Equal(http.StatusBadRequest, reply.Status)
	s.Require().NotNil(resp.Error)
	s.Equal(jsonrpc.InvalidParams, resp.Error.Code)
	s.Equal("invalid arguments: target[1] must not be empty", resp.Error.Message)
}

func (s *DispatchTestSuite) TestToolsCall_UnknownTool() {
	_, _, handled := s.dispatch(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"nmap","arguments":{"target":["example.com"]}}}`)
	s.False(handled)
}

func (s *DispatchTestSuite) TestToolsCall_MalformedParams() {
	_, _, handled := s.dispatch(`{"jsonrpc":"2.0","id":8,"method":"tools/call","params":"httpx"}`)
	s.False(handled)

	_, _, handled = s.dispatch(`{"jsonrpc":"2.0","id":9,"method":"tools/call"}`)
	s.False(handled)
}

func (s *DispatchTestSuite) TestToolsCall_ToolFailure() {
	s.srv.AddDirectTool(failingTool{})
	s.table = New(s.srv, zerolog.Nop())

	reply, resp, handled := s.dispatch(`{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"broken","arguments":{}}}`)
	s.Require().True(handled)
	s.Equal(http.StatusOK, reply.Status)
	s.Nil(resp.Error)

	var result struct {
		IsError bool `json:"isError"`
	}
	s.Require().NoError(json.Unmarshal(resp.Result, &result))
	s.True(result.IsError)
}

func (s *DispatchTestSuite) TestUnknownMethod() {
	_, _, handled := s.dispatch(`{"jsonrpc":"2.0","id":11,"method":"ping"}`)
	s.False(handled)
}

func TestDispatchTestSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}
