package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GenLLM   LLMConfig      `yaml:"gen_llm"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	Database DatabaseConfig `yaml:"database"`
	VectorDB VectorDBConfig `yaml:"vector_db"`
	RAG      RAGConfig      `yaml:"rag"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider"` // "ollama" or "openai"
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type VectorDBConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

type RAGConfig struct {
	ChunkSize           int           `yaml:"chunk_size"`
	ChunkOverlap        int           `yaml:"chunk_overlap"`
	TopK                int           `yaml:"top_k"`
	MaxContextLength    int           `yaml:"max_context_length"`
	MaxEmbedInputChars  int           `yaml:"max_embed_input_chars"`
	VectorDimensions    int           `yaml:"vector_dimensions"`
	MaxRetries          int           `yaml:"max_retries"`
	RetryDelay          time.Duration `yaml:"retry_delay"`
	EmbedRatePerSecond  float64       `yaml:"embed_rate_per_second"`
	UpsertBatchSize     int           `yaml:"upsert_batch_size"`
	TranscriptSentences int           `yaml:"transcript_sentences"`
	QuestionsPerPage    int           `yaml:"questions_per_page"`
	MinTextLength       int           `yaml:"min_text_length"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	mergeWithEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GenLLM.Provider == "" {
		cfg.GenLLM.Provider = "ollama"
	}
	if cfg.GenLLM.BaseURL == "" {
		cfg.GenLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.GenLLM.Model == "" {
		cfg.GenLLM.Model = "mistral"
	}
	if cfg.GenLLM.MaxTokens == 0 {
		cfg.GenLLM.MaxTokens = 2000
	}

	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text:latest"
	}

	if cfg.VectorDB.Path == "" {
		cfg.VectorDB.Path = "./chromemdb"
	}
	if cfg.VectorDB.Collection == "" {
		cfg.VectorDB.Collection = "doc_tutor"
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.MaxContextLength == 0 {
		cfg.RAG.MaxContextLength = 4000
	}
	if cfg.RAG.MaxEmbedInputChars == 0 {
		cfg.RAG.MaxEmbedInputChars = 8000
	}
	if cfg.RAG.VectorDimensions == 0 {
		cfg.RAG.VectorDimensions = 768
	}
	if cfg.RAG.MaxRetries == 0 {
		cfg.RAG.MaxRetries = 2
	}
	if cfg.RAG.RetryDelay == 0 {
		cfg.RAG.RetryDelay = time.Second
	}
	if cfg.RAG.EmbedRatePerSecond == 0 {
		cfg.RAG.EmbedRatePerSecond = 2.0
	}
	if cfg.RAG.UpsertBatchSize == 0 {
		cfg.RAG.UpsertBatchSize = 100
	}
	if cfg.RAG.TranscriptSentences == 0 {
		cfg.RAG.TranscriptSentences = 5
	}
	if cfg.RAG.QuestionsPerPage == 0 {
		cfg.RAG.QuestionsPerPage = 3
	}
	if cfg.RAG.MinTextLength == 0 {
		cfg.RAG.MinTextLength = 80
	}
}

func mergeWithEnv(cfg *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		cfg.GenLLM.BaseURL = baseURL
		cfg.EmbedLLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
}
