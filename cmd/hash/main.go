// Package main prints the stored form of a user credential so rows can be
// seeded by hand: the bcrypt hash of a password, or the SHA-256 digest of an
// API key.
//
//	hash password <value>
//	hash apikey <value>
package main

import (
	"fmt"
	"os"

	"github.com/codecentric/c4-genai-suite/backend/internal/auth"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <password|apikey> <value>\n", os.Args[0])
		os.Exit(2)
	}

	switch os.Args[1] {
	case "password":
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
	case "apikey":
		fmt.Println(auth.HashAPIKey(os.Args[2]))
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q\n", os.Args[1])
		os.Exit(2)
	}
}
