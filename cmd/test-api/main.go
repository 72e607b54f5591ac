// Package main is a smoke test for a running admin backend. It checks the
// health endpoints and, when TOKEN is set, one authenticated admin route, then
// exits non-zero if any of them fails.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	paths := []string{"/health", "/ready", "/version"}
	token := os.Getenv("TOKEN")
	if token != "" {
		paths = append(paths, "/api/v1/configurations")
	}

	failed := false
	for _, path := range paths {
		req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := client.Do(req)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()

		fmt.Printf("%s: %d %s\n", path, resp.StatusCode, body)
		if resp.StatusCode != http.StatusOK {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
