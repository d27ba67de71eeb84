package config

// Embedder backends.
const (
	EmbedderOpenAI = "openai"
	EmbedderONNX   = "onnx"
	EmbedderMock   = "mock"
)

type EmbeddingConfig struct {
	Provider   string `env:"VAULT_EMBEDDER" envDefault:"openai"`
	Model      string `env:"VAULT_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimensions int    `env:"VAULT_EMBEDDING_DIMENSIONS" envDefault:"384"`
	CacheSize  int64  `env:"VAULT_EMBED_CACHE_SIZE" envDefault:"10000"`

	ONNXModelPath     string `env:"VAULT_ONNX_MODEL_PATH"`
	ONNXTokenizerPath string `env:"VAULT_ONNX_TOKENIZER_PATH"`
	ONNXLibraryPath   string `env:"VAULT_ONNX_LIBRARY_PATH"`
}

// ModelConfig selects generation, captioning and transcription backends.
type ModelConfig struct {
	Generator string `env:"VAULT_GENERATOR" envDefault:"anthropic"`
	Captioner string `env:"VAULT_CAPTIONER" envDefault:"anthropic"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"VAULT_ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`

	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	OpenAIModel        string `env:"VAULT_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	TranscriptionModel string `env:"VAULT_TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
}
