// Command keygen generates a random API key and its bcrypt hash for
// provisioning a new ingestion client. The plaintext key goes to the client;
// the hash goes into the clients table.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/spraicheux/offerflow/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 0, "bcrypt cost (0 uses the bcrypt default)")
	key := flag.String("key", "", "hash this key instead of generating one")
	flag.Parse()

	apiKey := *key
	if apiKey == "" {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("failed to generate random key: %v", err)
		}
		apiKey = "sk-" + hex.EncodeToString(buf)
	}

	hash, err := auth.HashAPIKey(apiKey, *cost)
	if err != nil {
		log.Fatalf("failed to hash API key: %v", err)
	}

	fmt.Printf("API key:  %s\n", apiKey)
	fmt.Printf("Key hash: %s\n", hash)
}
