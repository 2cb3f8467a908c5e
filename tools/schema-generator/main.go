// Command schema-generator writes the JSON schema for autotab.yml to the
// repository root. Run via go:generate from cmd/config.go.
package main

import (
	"log"
	"os"

	"github.com/autotab-dev/autotab/cmd"
)

func main() {
	data, err := cmd.ConfigSchemaJSON()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	if err := os.WriteFile("autotab.schema.json", data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated schema at autotab.schema.json")
}
