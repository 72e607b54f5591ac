package extensions

func float(v float64) *float64 { return &v }

var (
	apiKeyArg = ArgumentSpec{Type: ArgumentString, Title: "API Key", Required: true, Format: FormatPassword}

	temperatureArg = ArgumentSpec{
		Type: ArgumentNumber, Title: "Temperature", Format: "slider",
		Minimum: float(0), Maximum: float(2), Default: float64(1),
	}
)

// DefaultProviders returns the providers shipped with the backend
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:  "azure-open-ai-model",
			Title: "Azure OpenAI",
			Type:  ProviderLLM,
			Arguments: map[string]ArgumentSpec{
				"apiKey":         apiKeyArg,
				"deploymentName": {Type: ArgumentString, Title: "Deployment Name", Required: true},
				"instanceName":   {Type: ArgumentString, Title: "Instance Name", Required: true},
				"apiVersion":     {Type: ArgumentString, Title: "API Version", Default: "2024-10-21"},
				"temperature":    temperatureArg,
				"seed":           {Type: ArgumentNumber, Title: "Seed"},
				"presencePenalty": {
					Type: ArgumentNumber, Title: "Presence Penalty", Format: "slider",
					Minimum: float(0), Maximum: float(2), Default: float64(0),
				},
				"topP": {
					Type: ArgumentNumber, Title: "Top P", Format: "slider",
					Minimum: float(0), Maximum: float(1), Default: float64(1),
				},
				"reasoningEffort": {
					Type: ArgumentString, Title: "Reasoning Effort", Format: FormatSelect,
					Enum: []string{"low", "medium", "high"},
				},
			},
		},
		{
			Name:  "open-ai-model",
			Title: "OpenAI",
			Type:  ProviderLLM,
			Arguments: map[string]ArgumentSpec{
				"apiKey":      apiKeyArg,
				"modelName":   {Type: ArgumentString, Title: "Model", Required: true, Examples: []interface{}{"gpt-4o", "gpt-4.1"}},
				"temperature": temperatureArg,
			},
		},
		{
			Name:  "ollama-model",
			Title: "Ollama",
			Type:  ProviderLLM,
			Arguments: map[string]ArgumentSpec{
				"endpoint":  {Type: ArgumentString, Title: "Endpoint", Required: true, Examples: []interface{}{"http://localhost:11434"}},
				"modelName": {Type: ArgumentString, Title: "Model", Required: true},
			},
		},
		{
			Name:  "files-42",
			Title: "Search Files",
			Type:  ProviderTool,
			Arguments: map[string]ArgumentSpec{
				"bucket": {Type: ArgumentNumber, Title: "Bucket", Required: true, Format: FormatBucket},
				"take":   {Type: ArgumentNumber, Title: "Chunks", Minimum: float(1), Maximum: float(50), Default: float64(5)},
			},
		},
		{
			Name:  "files-whole",
			Title: "Whole Files",
			Type:  ProviderTool,
			Arguments: map[string]ArgumentSpec{
				"bucket": {Type: ArgumentNumber, Title: "Bucket", Required: true, Format: FormatBucket},
			},
		},
		{
			Name:  "open-api",
			Title: "OpenAPI",
			Type:  ProviderTool,
			Arguments: map[string]ArgumentSpec{
				"endpoint": {Type: ArgumentString, Title: "Endpoint", Required: true},
				"headers":  {Type: ArgumentString, Title: "Headers", Format: FormatPassword},
			},
		},
		{
			Name:  "gemini-image",
			Title: "Gemini Image Generation",
			Type:  ProviderTool,
			Arguments: map[string]ArgumentSpec{
				"apiKey": apiKeyArg,
				"modelName": {
					Type: ArgumentString, Title: "Model", Required: true, Format: FormatSelect,
					Enum: []string{"gemini-2.5-flash-image", "imagen-4.0-generate-001"},
				},
			},
		},
		{
			Name:  "azure-transcribe",
			Title: "Azure Transcribe",
			Type:  ProviderOther,
			Arguments: map[string]ArgumentSpec{
				"apiKey": apiKeyArg,
				"region": {Type: ArgumentString, Title: "Region", Required: true},
			},
		},
	}
}
