package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// DefaultWebhookURL targets a local n8n-style workflow endpoint.
const DefaultWebhookURL = "http://localhost:5678/webhook/task"

// HTTPClient is the minimal http.Client surface the webhook tool depends on,
// kept as an interface so tests can inject a fake transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookTool triggers external workflows by POSTing JSON to a configured
// webhook URL. It accepts action=trigger, an optional workflow name and an
// optional JSON payload.
type WebhookTool struct {
	Base

	url    string
	client HTTPClient
}

// WebhookToolOptions configures a WebhookTool.
type WebhookToolOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// URL is the webhook endpoint. Defaults to DefaultWebhookURL.
	URL string
	// HTTPClient performs the requests. Defaults to a client with a 10s timeout.
	HTTPClient HTTPClient
}

// NewWebhookTool constructs a WebhookTool.
func NewWebhookTool(optFns ...func(o *WebhookToolOptions)) *WebhookTool {
	opts := WebhookToolOptions{
		Logger: logging.NoOpLogger{},
		URL:    DefaultWebhookURL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	t := &WebhookTool{url: opts.URL, client: opts.HTTPClient}
	t.Base = NewBase(core.Metadata{
		Name:        "webhook",
		Description: "Triggers external workflows via webhooks",
		Version:     "1.0.0",
		Parameters: map[string]core.Parameter{
			"action":   {Type: "string", Required: true, Description: "Action to perform (trigger)"},
			"workflow": {Type: "string", Required: false, Description: "Workflow name or ID to target"},
			"payload":  {Type: "object", Required: false, Description: "JSON payload to send to the webhook"},
		},
		RequiredPermissions: []string{"network"},
		Tags:                []string{"automation", "workflow", "webhook"},
	}, t.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return t
}

func (t *WebhookTool) execute(ctx context.Context, args map[string]string) (any, error) {
	action := args["action"]
	if action == "" {
		action = "trigger"
	}
	if action != "trigger" {
		return fmt.Sprintf("Unknown action: %s. Try 'trigger'.", action), nil
	}

	workflow := args["workflow"]
	if workflow == "" {
		workflow = "default"
	}

	payload := map[string]any{}
	if raw, ok := args["payload"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, NewToolError("webhook", fmt.Sprintf("invalid payload JSON: %v", err), CodeInvalidArgs)
		}
	}

	body, err := json.Marshal(map[string]any{
		"workflow": workflow,
		"payload":  payload,
	})
	if err != nil {
		return nil, NewToolError("webhook", err.Error(), CodeExecutionError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, NewToolError("webhook", err.Error(), CodeExecutionError)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, NewToolError("webhook", fmt.Sprintf("webhook request failed: %v", err), CodeExecutionError)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewToolError("webhook",
			fmt.Sprintf("webhook returned status %d for workflow %q", resp.StatusCode, workflow),
			CodeExecutionError)
	}
	return fmt.Sprintf("Triggered workflow %q", workflow), nil
}
