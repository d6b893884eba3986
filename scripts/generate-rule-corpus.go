//go:build ignore

// Package main generates a synthetic Sigma rules tree for benchmarking.
// Usage: go run scripts/generate-rule-corpus.go -rules 3000 -output testdata/bench/rules
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	numRules   = flag.Int("rules", 3000, "Number of rule files to generate")
	brokenRate = flag.Float64("broken", 0.02, "Fraction of files written with invalid YAML")
	outputDir  = flag.String("output", "testdata/bench/rules", "Output directory")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

type logsource struct {
	Product  string `yaml:"product,omitempty"`
	Category string `yaml:"category,omitempty"`
	Service  string `yaml:"service,omitempty"`
}

type rule struct {
	Title     string         `yaml:"title"`
	ID        string         `yaml:"id"`
	Status    string         `yaml:"status"`
	Level     string         `yaml:"level"`
	Tags      []string       `yaml:"tags,omitempty"`
	Logsource logsource      `yaml:"logsource"`
	Detection map[string]any `yaml:"detection"`
}

var (
	products   = []string{"windows", "linux", "macos", "aws", "azure", "gcp"}
	categories = []string{"process_creation", "network_connection", "file_event", "registry_set", "image_load", "dns_query"}
	services   = []string{"", "", "", "security", "sysmon", "auditd", "cloudtrail"}
	statuses   = []string{"stable", "test", "experimental", "deprecated"}
	levels     = []string{"informational", "low", "medium", "high", "critical"}
	verbs      = []string{"Suspicious", "Potential", "Unusual", "Malicious", "Hidden", "Encoded"}
	nouns      = []string{"PowerShell Execution", "Credential Dumping", "Service Install", "DNS Tunneling", "Registry Persistence", "Archive Creation"}
	techniques = []string{"t1059.001", "t1003.001", "t1543.003", "t1071.004", "t1547.001", "t1560.001"}
	tactics    = []string{"execution", "credential_access", "persistence", "command_and_control", "collection"}
)

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.Intn(len(items))]
}

func main() {
	flag.Parse()

	r := rand.New(rand.NewSource(*seed))

	written, broken := 0, 0
	for i := 0; i < *numRules; i++ {
		product := pick(r, products)
		category := pick(r, categories)
		dir := filepath.Join(*outputDir, product, category)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir %s: %v\n", dir, err)
			os.Exit(1)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_%s_%05d.yml", product, category, i))

		var data []byte
		if r.Float64() < *brokenRate {
			data = []byte("title: [unterminated\nlevel: high\n")
			broken++
		} else {
			out, err := yaml.Marshal(rule{
				Title:  fmt.Sprintf("%s %s %d", pick(r, verbs), pick(r, nouns), i),
				ID:     fmt.Sprintf("%08x-0000-4000-8000-%012x", r.Uint32(), i),
				Status: pick(r, statuses),
				Level:  pick(r, levels),
				Tags: []string{
					"attack." + pick(r, tactics),
					"attack." + pick(r, techniques),
				},
				Logsource: logsource{
					Product:  product,
					Category: category,
					Service:  pick(r, services),
				},
				Detection: map[string]any{
					"selection": map[string]any{"CommandLine|contains": fmt.Sprintf("token-%d", i)},
					"condition": "selection",
				},
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "marshal rule %d: %v\n", i, err)
				os.Exit(1)
			}
			data = out
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		written++
	}

	fmt.Printf("Generated %d rule files (%d broken) in %s\n", written, broken, *outputDir)
}
