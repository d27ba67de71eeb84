package config

import "path/filepath"

// StorageConfig locates persisted state.
type StorageConfig struct {
	DataDir    string `env:"VAULT_DATA_DIR" envDefault:".vault"`
	ScratchDir string `env:"VAULT_SCRATCH_DIR"`
	Collection string `env:"VAULT_COLLECTION" envDefault:"memories"`
	Compress   bool   `env:"VAULT_COMPRESS" envDefault:"false"`
}

func (c StorageConfig) IndexPath() string {
	return filepath.Join(c.DataDir, "chroma")
}

func (c StorageConfig) MediaPath() string {
	return filepath.Join(c.DataDir, "uploads")
}
