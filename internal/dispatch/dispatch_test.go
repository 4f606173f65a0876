// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vexingcodes/emojify/internal/command"
	"github.com/vexingcodes/emojify/internal/config"
	"github.com/vexingcodes/emojify/internal/queue"
)

const (
	testToken         = "gIkuvaNzQIHg97ATvDxqgjtO"
	testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"
)

func slashCommandBody(token, text string) []byte {
	return []byte(url.Values{
		"token":        []string{token},
		"team_id":      []string{"T0001"},
		"team_domain":  []string{"example"},
		"channel_id":   []string{"C2147483705"},
		"user_id":      []string{"U2147483697"},
		"command":      []string{"/emojify"},
		"text":         []string{text},
		"response_url": []string{"https://hooks.slack.com/commands/1234/5678"},
	}.Encode())
}

func sign(header http.Header, body []byte, secret string, ts time.Time) {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + stamp + ":" + string(body))) // nolint: errcheck
	header.Set("X-Slack-Request-Timestamp", stamp)
	header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
}

type reply struct {
	Text         string `json:"text"`
	ResponseType string `json:"response_type"`
}

func decodeReply(t *testing.T, body []byte) reply {
	var r reply
	require.NoError(t, json.Unmarshal(body, &r))
	return r
}

func newTestService(t *testing.T, cfg config.Dispatch, p *mockPublisher) *Service {
	s, err := NewService(cfg, p)
	require.NoError(t, err)
	s.newID = func() string { return "cmd-1" }
	return s
}

func TestNewService(t *testing.T) {
	_, err := NewService(config.Dispatch{}, &mockPublisher{})
	require.Error(t, err)

	s, err := NewService(config.Dispatch{Token: testToken}, &mockPublisher{})
	require.NoError(t, err)
	require.NotNil(t, s.renderer)
	require.NotNil(t, s.newID)
	require.NotEmpty(t, s.newID())
}

func TestServiceHandle(t *testing.T) {
	testCases := []struct {
		name       string
		token      string
		text       string
		publisher  *mockPublisher
		assertions func(*mockPublisher, Response)
	}{
		{
			name:      "token mismatch",
			token:     "not the token",
			text:      "add test_emoji http://example.com/foo.jpg",
			publisher: &mockPublisher{},
			assertions: func(p *mockPublisher, resp Response) {
				require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				require.Nil(t, resp.Body)
				require.Empty(t, p.published)
			},
		},
		{
			name:      "empty text",
			token:     testToken,
			text:      "  ",
			publisher: &mockPublisher{},
			assertions: func(p *mockPublisher, resp Response) {
				require.Equal(t, http.StatusOK, resp.StatusCode)
				r := decodeReply(t, resp.Body)
				require.Equal(t, "ephemeral", r.ResponseType)
				require.Equal(t, "Usage:\n/emojify add [name] [url]\n/emojify remove [name]\n/emojify alias [target] [alias]", r.Text)
				require.Empty(t, p.published)
			},
		},
		{
			name:      "ill-formed text",
			token:     testToken,
			text:      "add test_emoji",
			publisher: &mockPublisher{},
			assertions: func(p *mockPublisher, resp Response) {
				require.Equal(t, http.StatusOK, resp.StatusCode)
				r := decodeReply(t, resp.Body)
				require.Equal(t, "ephemeral", r.ResponseType)
				require.Contains(t, r.Text, "Error: ")
				require.Contains(t, r.Text, "/emojify add [name] [url]")
				require.Empty(t, p.published)
			},
		},
		{
			name:      "unknown verb",
			token:     testToken,
			text:      "rename a b",
			publisher: &mockPublisher{},
			assertions: func(p *mockPublisher, resp Response) {
				r := decodeReply(t, resp.Body)
				require.Contains(t, r.Text, `unsupported command "rename"`)
				require.Empty(t, p.published)
			},
		},
		{
			name:      "publish fails",
			token:     testToken,
			text:      "remove gopher",
			publisher: &mockPublisher{err: errors.New("something went wrong")},
			assertions: func(p *mockPublisher, resp Response) {
				require.Equal(t, http.StatusOK, resp.StatusCode)
				r := decodeReply(t, resp.Body)
				require.Equal(t, `Processing command "remove gopher"...`, r.Text)
			},
		},
		{
			name:      "forwarded",
			token:     testToken,
			text:      "add test_emoji http://example.com/foo.jpg",
			publisher: &mockPublisher{},
			assertions: func(p *mockPublisher, resp Response) {
				require.Equal(t, http.StatusOK, resp.StatusCode)
				r := decodeReply(t, resp.Body)
				require.Equal(t, "ephemeral", r.ResponseType)
				require.Equal(t, `Processing command "add test_emoji http://example.com/foo.jpg"...`, r.Text)
				require.Len(t, p.published, 1)
				require.Equal(t, command.Request{
					ID:          "cmd-1",
					Verb:        command.VerbAdd,
					Name:        "test_emoji",
					URL:         "http://example.com/foo.jpg",
					Text:        "add test_emoji http://example.com/foo.jpg",
					UserID:      "U2147483697",
					ChannelID:   "C2147483705",
					ResponseURL: "https://hooks.slack.com/commands/1234/5678",
				}, p.published[0])
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s := newTestService(t, config.Dispatch{Token: testToken}, testCase.publisher)
			cmd, err := ParseRequest(http.Header{}, slashCommandBody(testCase.token, testCase.text), "")
			require.NoError(t, err)
			testCase.assertions(testCase.publisher, s.Handle(context.Background(), cmd))
		})
	}
}

func TestServiceHandleQueueFull(t *testing.T) {
	channel := queue.NewChannel(1)

	s, err := NewService(config.Dispatch{Token: testToken}, channel)
	require.NoError(t, err)

	cmd, err := ParseRequest(http.Header{}, slashCommandBody(testToken, "remove gopher"), "")
	require.NoError(t, err)

	// the first fills the buffer, nothing consumes it
	for i := 0; i < 2; i++ {
		start := time.Now()
		resp := s.Handle(context.Background(), cmd)
		require.Less(t, time.Since(start), time.Second)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, `Processing command "remove gopher"...`, decodeReply(t, resp.Body).Text)
	}
}

func TestServiceHandleSlowPublisher(t *testing.T) {
	p := &blockingPublisher{}

	s, err := NewService(config.Dispatch{Token: testToken}, p)
	require.NoError(t, err)
	s.publishTimeout = 10 * time.Millisecond

	cmd, err := ParseRequest(http.Header{}, slashCommandBody(testToken, "remove gopher"), "")
	require.NoError(t, err)

	start := time.Now()
	resp := s.Handle(context.Background(), cmd)
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ephemeral", decodeReply(t, resp.Body).ResponseType)
	require.ErrorIs(t, p.err, context.DeadlineExceeded)
}

func TestParseRequest(t *testing.T) {
	body := slashCommandBody(testToken, "remove gopher")

	cmd, err := ParseRequest(http.Header{}, body, "")
	require.NoError(t, err)
	require.Equal(t, testToken, cmd.Token)
	require.Equal(t, "remove gopher", cmd.Text)
	require.Equal(t, "U2147483697", cmd.UserID)
	require.Equal(t, "https://hooks.slack.com/commands/1234/5678", cmd.ResponseURL)

	header := http.Header{}
	sign(header, body, testSigningSecret, time.Now())
	_, err = ParseRequest(header, body, testSigningSecret)
	require.NoError(t, err)

	header = http.Header{}
	sign(header, body, "some other secret", time.Now())
	_, err = ParseRequest(header, body, testSigningSecret)
	require.ErrorIs(t, err, errBadSignature)

	header = http.Header{}
	sign(header, body, testSigningSecret, time.Now().Add(-time.Hour))
	_, err = ParseRequest(header, body, testSigningSecret)
	require.ErrorIs(t, err, errBadSignature)

	_, err = ParseRequest(http.Header{}, body, testSigningSecret)
	require.ErrorIs(t, err, errBadSignature)

	_, err = ParseRequest(http.Header{}, []byte("text=%zz"), "")
	require.Error(t, err)
}

func TestHandlerServeHTTP(t *testing.T) {
	testCases := []struct {
		name       string
		secret     string
		request    func() *http.Request
		assertions func(*mockPublisher, *httptest.ResponseRecorder)
	}{
		{
			name: "garbage",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/slash-commands", bytes.NewBufferString("just some garbage"))
			},
			assertions: func(p *mockPublisher, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
				require.Empty(t, p.published)
			},
		},
		{
			name:   "unsigned",
			secret: testSigningSecret,
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/slash-commands", bytes.NewReader(slashCommandBody(testToken, "remove gopher")))
			},
			assertions: func(p *mockPublisher, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusForbidden, rr.Result().StatusCode)
				require.Empty(t, p.published)
			},
		},
		{
			name:   "signed",
			secret: testSigningSecret,
			request: func() *http.Request {
				body := slashCommandBody(testToken, "remove gopher")
				r := httptest.NewRequest(http.MethodPost, "/slash-commands", bytes.NewReader(body))
				sign(r.Header, body, testSigningSecret, time.Now())
				return r
			},
			assertions: func(p *mockPublisher, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, rr.Result().StatusCode)
				require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				require.Contains(t, rr.Body.String(), "Processing command")
				require.Len(t, p.published, 1)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			p := &mockPublisher{}
			s := newTestService(t, config.Dispatch{Token: testToken, SigningSecret: testSigningSecret}, p)
			s.signingSecret = testCase.secret
			rr := httptest.NewRecorder()
			NewHandler(s).ServeHTTP(rr, testCase.request())
			testCase.assertions(p, rr)
		})
	}
}

func TestServiceHandleAPIGateway(t *testing.T) {
	body := slashCommandBody(testToken, "alias gopher golang")

	testCases := []struct {
		name       string
		request    events.APIGatewayProxyRequest
		assertions func(*mockPublisher, events.APIGatewayProxyResponse, error)
	}{
		{
			name:    "plain body",
			request: events.APIGatewayProxyRequest{Body: string(body)},
			assertions: func(p *mockPublisher, resp events.APIGatewayProxyResponse, err error) {
				require.NoError(t, err)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				require.Equal(t, "application/json", resp.Headers["Content-Type"])
				require.Equal(t, `Processing command "alias gopher golang"...`, decodeReply(t, []byte(resp.Body)).Text)
				require.Len(t, p.published, 1)
				require.Equal(t, "golang", p.published[0].Alias)
			},
		},
		{
			name: "base64 body",
			request: events.APIGatewayProxyRequest{
				Body:            base64.StdEncoding.EncodeToString(body),
				IsBase64Encoded: true,
			},
			assertions: func(p *mockPublisher, resp events.APIGatewayProxyResponse, err error) {
				require.NoError(t, err)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				require.Len(t, p.published, 1)
			},
		},
		{
			name: "bad base64",
			request: events.APIGatewayProxyRequest{
				Body:            "!!!",
				IsBase64Encoded: true,
			},
			assertions: func(p *mockPublisher, resp events.APIGatewayProxyResponse, err error) {
				require.NoError(t, err)
				require.Equal(t, http.StatusBadRequest, resp.StatusCode)
				require.Empty(t, p.published)
			},
		},
		{
			name:    "token mismatch",
			request: events.APIGatewayProxyRequest{Body: string(slashCommandBody("nope", "remove gopher"))},
			assertions: func(p *mockPublisher, resp events.APIGatewayProxyResponse, err error) {
				require.NoError(t, err)
				require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				require.Empty(t, resp.Body)
				require.Empty(t, p.published)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			p := &mockPublisher{}
			s := newTestService(t, config.Dispatch{Token: testToken}, p)
			resp, err := s.HandleAPIGateway(context.Background(), testCase.request)
			testCase.assertions(p, resp, err)
		})
	}
}

type mockPublisher struct {
	err       error
	published []command.Request
}

// blockingPublisher waits for its context like a publisher stuck in retries.
type blockingPublisher struct {
	err error
}

func (b *blockingPublisher) Publish(ctx context.Context, _ command.Request) error {
	<-ctx.Done()
	b.err = ctx.Err()
	return b.err
}

func (m *mockPublisher) Publish(_ context.Context, req command.Request) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, req)
	return nil
}
