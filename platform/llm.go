package platform

import (
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	LLMClient *openai.Client
	LLMModel  string
)

// InitLLMClient reads LLM_BASE_URL, LLM_API_KEY and LLM_MODEL from the
// environment. A missing key is not checked here; the first completion
// call fails instead.
func InitLLMClient() {
	LLMClient = openai.NewClient(
		option.WithBaseURL(os.Getenv("LLM_BASE_URL")),
		option.WithAPIKey(os.Getenv("LLM_API_KEY")),
	)
	LLMModel = os.Getenv("LLM_MODEL")
}
