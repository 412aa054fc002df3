package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
	"github.com/tailored-agentic-units/voicedesk/issues"
	"github.com/tailored-agentic-units/voicedesk/kernel"
	"github.com/tailored-agentic-units/voicedesk/tools"
)

// recentOverviewLimit caps the no-name issue lookup to the latest tickets.
const recentOverviewLimit = 3

func registerBuiltinTools(runtime *kernel.Kernel) {
	store := runtime.Issues()

	must(runtime.Registry().Register(protocol.Tool{
		Name:        "register_customer_issue",
		Description: "Records a new customer support issue. Use once the customer's name and a description of the problem are known.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "The customer's name.",
				},
				"issue": map[string]any{
					"type":        "string",
					"description": "A short description of the problem.",
				},
			},
			"required": []string{"name", "issue"},
		},
	}, registerIssueHandler(store)))

	must(runtime.Registry().Register(protocol.Tool{
		Name:        "get_customer_issues",
		Description: "Looks up previously reported issues, newest first. Omit the name for an overview of the most recent issues.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "The customer's name to filter by.",
				},
			},
		},
	}, listIssuesHandler(store)))

	must(runtime.Registry().Register(protocol.Tool{
		Name:        "datetime",
		Description: "Returns the current date and time in RFC3339 format.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, handleDatetime))
}

func registerIssueHandler(store issues.Store) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
		var args struct {
			Name  string `json:"name"`
			Issue string `json:"issue"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return tools.Result{Content: "invalid arguments: " + err.Error(), IsError: true}, nil
		}

		issue, err := store.Create(ctx, args.Name, args.Issue)
		if err != nil {
			return tools.Result{Content: err.Error(), IsError: true}, nil
		}
		return tools.Result{
			Content: fmt.Sprintf("Issue #%d recorded for %s.", issue.ID, issue.CustomerName),
		}, nil
	}
}

func listIssuesHandler(store issues.Store) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return tools.Result{Content: "invalid arguments: " + err.Error(), IsError: true}, nil
		}

		// Without a name, give a short overview of the latest tickets.
		limit := 0
		if args.Name == "" {
			limit = recentOverviewLimit
		}

		found, err := store.List(ctx, args.Name, limit)
		if err != nil {
			return tools.Result{Content: err.Error(), IsError: true}, nil
		}
		if len(found) == 0 {
			return tools.Result{Content: "No issues found."}, nil
		}

		var b strings.Builder
		for _, issue := range found {
			fmt.Fprintf(&b, "#%d %s (%s): %s\n",
				issue.ID,
				issue.CustomerName,
				issue.CreatedAt.Format("2006-01-02"),
				issue.Description,
			)
		}
		return tools.Result{Content: b.String()}, nil
	}
}

func handleDatetime(_ context.Context, _ json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: time.Now().Format(time.RFC3339)}, nil
}
