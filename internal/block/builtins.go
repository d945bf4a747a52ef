package block

// Toolbar categories.
const (
	CategoryCore        = "core"
	CategoryLogic       = "logic"
	CategoryIntegration = "integration"
	CategoryTrigger     = "trigger"
)

// builtins returns the built-in block definitions seeded into every registry.
func builtins() []*Definition {
	return []*Definition{
		{
			Kind:        KindStarter,
			Name:        "Starter",
			Description: "Entry point that kicks off the workflow",
			Category:    CategoryCore,
			Icon:        "play",
			SubBlocks: []FieldDef{
				{ID: "startMode", Label: "Start Mode", Type: FieldDropdown, Options: []string{"manual", "webhook", "schedule"}, Default: "manual"},
			},
		},
		{
			Kind:        KindAgent,
			Name:        "Agent",
			Description: "Run an LLM agent with tools and a system prompt",
			Category:    CategoryCore,
			Icon:        "bot",
			SubBlocks: []FieldDef{
				{ID: "systemPrompt", Label: "System Prompt", Type: FieldLongText},
				{ID: "model", Label: "Model", Type: FieldDropdown, Required: true},
				{ID: "apiKey", Label: "API Key", Type: FieldShortText, Secret: true, Placeholder: "Enter your API key"},
				{ID: "temperature", Label: "Temperature", Type: FieldSlider, Default: 0.7},
				{ID: "tools", Label: "Tools", Type: FieldTable},
			},
		},
		{
			Kind:        KindRouter,
			Name:        "Router",
			Description: "Route to a downstream block based on LLM classification",
			Category:    CategoryLogic,
			Icon:        "route",
			SubBlocks: []FieldDef{
				{ID: "prompt", Label: "Prompt", Type: FieldLongText, Required: true},
				{ID: "model", Label: "Model", Type: FieldDropdown, Required: true},
				{ID: "apiKey", Label: "API Key", Type: FieldShortText, Secret: true},
			},
		},
		{
			Kind:        KindEvaluator,
			Name:        "Evaluator",
			Description: "Score upstream output against evaluation metrics",
			Category:    CategoryLogic,
			Icon:        "gauge",
			SubBlocks: []FieldDef{
				{ID: "metrics", Label: "Metrics", Type: FieldTable},
				{ID: "model", Label: "Model", Type: FieldDropdown, Required: true},
				{ID: "apiKey", Label: "API Key", Type: FieldShortText, Secret: true},
			},
		},
		{
			Kind:        KindCondition,
			Name:        "Condition",
			Description: "Branch on a boolean expression",
			Category:    CategoryLogic,
			Icon:        "split",
			SubBlocks: []FieldDef{
				{ID: "conditions", Label: "Conditions", Type: FieldTable, Required: true},
			},
		},
		{
			Kind:        KindFunction,
			Name:        "Function",
			Description: "Run custom code against workflow data",
			Category:    CategoryLogic,
			Icon:        "code",
			SubBlocks: []FieldDef{
				{ID: "code", Label: "Code", Type: FieldCode, Required: true},
			},
		},
		{
			Kind:        KindAPI,
			Name:        "API",
			Description: "Call an external HTTP endpoint",
			Category:    CategoryIntegration,
			Icon:        "globe",
			SubBlocks: []FieldDef{
				{ID: "url", Label: "URL", Type: FieldShortText, Required: true},
				{ID: "method", Label: "Method", Type: FieldDropdown, Options: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}, Default: "GET"},
				{ID: "headers", Label: "Headers", Type: FieldTable},
				{ID: "body", Label: "Body", Type: FieldCode},
			},
		},
		{
			Kind:        KindSnowflake,
			Name:        "Snowflake Query",
			Description: "Run SQL against a Snowflake data warehouse",
			Category:    CategoryIntegration,
			Icon:        "database",
			SubBlocks: []FieldDef{
				{ID: "operation", Label: "Operation", Type: FieldDropdown, Options: []string{"query", "execute", "insert", "update", "delete"}, Default: "query"},
				{ID: "account", Label: "Account", Type: FieldShortText, Required: true},
				{ID: "warehouse", Label: "Warehouse", Type: FieldShortText},
				{ID: "database", Label: "Database", Type: FieldShortText},
				{ID: "query", Label: "SQL", Type: FieldCode},
				{ID: "apiKey", Label: "API Key", Type: FieldShortText, Secret: true},
			},
		},
		{
			Kind:        KindSlack,
			Name:        "Slack Message",
			Description: "Post a message to a Slack channel",
			Category:    CategoryIntegration,
			Icon:        "message",
			SubBlocks: []FieldDef{
				{ID: "channel", Label: "Channel", Type: FieldShortText, Required: true},
				{ID: "text", Label: "Message", Type: FieldLongText, Required: true},
				{ID: "botApiKey", Label: "Bot API Key", Type: FieldShortText, Secret: true},
			},
		},
		{
			Kind:        KindWebhook,
			Name:        "Webhook",
			Description: "Trigger the workflow from an incoming HTTP request",
			Category:    CategoryTrigger,
			Icon:        "zap",
			SubBlocks: []FieldDef{
				{ID: "path", Label: "Path", Type: FieldShortText, Required: true},
				{ID: "secret", Label: "Signing Secret", Type: FieldShortText, Secret: true},
			},
		},
		{
			Kind:        KindSchedule,
			Name:        "Schedule",
			Description: "Trigger the workflow on a cron schedule",
			Category:    CategoryTrigger,
			Icon:        "clock",
			SubBlocks: []FieldDef{
				{ID: "cron", Label: "Cron Expression", Type: FieldShortText, Required: true},
				{ID: "timezone", Label: "Timezone", Type: FieldShortText, Default: "UTC"},
			},
		},
	}
}
