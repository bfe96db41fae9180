package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/edgerewrite/pkg/config"
)

func ExampleLoad_json() {
	dir, err := os.MkdirTemp("", "edgerewrite-config")
	if err != nil {
		fmt.Printf("Error creating dir: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	configJSON := `{
		// run only the idiom matcher
		"passes": ["activity"],
		"content_types": { "note": "Note" },
	}`

	configPath := filepath.Join(dir, ".edgerewrite.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0o644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	fmt.Printf("Client: %s\n", cfg.Client)
	fmt.Printf("Passes: %v\n", cfg.Passes)
	fmt.Printf("Types: %v\n", cfg.IdiomOptions().Vocabulary.Types())

	// Output:
	// Client: linearClient
	// Passes: [activity]
	// Types: [action elicitation error note prompt response thought]
}

func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Enum: %s\n", cfg.Enum)
	fmt.Printf("Passes: %v\n", cfg.Passes)
	fmt.Printf("Probes: %v\n", cfg.Probes)

	// Output:
	// Enum: AgentActivityContentType
	// Passes: [blocks activity signatures]
	// Probes: [createAgentActivity result.success]
}
