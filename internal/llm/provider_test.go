package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(quizJSON), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"titulo":1}`)},
	)

	resp, err := mock.Generate(context.Background(), Request{Schema: quizSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 10 || resp.Model != "mock" {
		t.Errorf("response = %+v", resp)
	}

	_, err = mock.Generate(context.Background(), Request{Schema: quizSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("canned content must be schema-checked, got %v", err)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("empty queue: got %T", err)
	}
	if mock.CallCount() != 3 || len(mock.Calls()) != 3 {
		t.Errorf("calls = %d", mock.CallCount())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Errorf("default purpose = %q", p)
	}
	ctx = WithPurpose(ctx, PurposeExplanation)
	if p := PurposeFrom(ctx); p != PurposeExplanation {
		t.Errorf("purpose = %q", p)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`"hola"`, "hola"},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		r := &Response{Content: json.RawMessage(tt.content)}
		if got := r.Text(); got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestFinishContent(t *testing.T) {
	raw, err := finishContent(nil, "línea \"uno\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"línea \"uno\""` {
		t.Errorf("free text = %s", raw)
	}

	raw, err = finishContent(quizSchema(), "```\n"+quizJSON+"\n```")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != quizJSON {
		t.Errorf("structured = %s", raw)
	}

	_, err = finishContent(quizSchema(), "not json")
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", quizJSON, false},
		{"missing questions", `{"titulo":"x"}`, true},
		{"empty questions", `{"titulo":"x","preguntas":[]}`, true},
		{"extra field", `{"titulo":"x","preguntas":[{"pregunta":"p","opciones":[]}],"z":1}`, true},
		{"wrong type", `{"titulo":2,"preguntas":[{"pregunta":"p","opciones":[]}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(quizSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := validateResponse(nil, json.RawMessage("anything")); err != nil {
		t.Errorf("nil schema should pass: %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Failure
	}{
		{nil, FailureNone},
		{fmt.Errorf("wrapped: %w", context.Canceled), FailureCanceled},
		{&ErrRateLimit{RetryAfter: time.Second}, FailureRateLimited},
		{fmt.Errorf("call: %w", &ErrProviderUnavailable{}), FailureUnavailable},
		{context.DeadlineExceeded, FailureUnavailable},
		{&ErrInvalidResponse{Err: errors.New("bad")}, FailureInvalid},
		{&ErrMaxTokensExceeded{}, FailureTruncated},
		{errors.New("boom"), FailureOther},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
	if !FailureRateLimited.Temporary() || FailureInvalid.Temporary() {
		t.Error("only rate limits and outages are temporary")
	}
}
