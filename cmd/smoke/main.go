package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

// Walks a running instance through its endpoints and prints every reply.
// /crashPod is only called with -crash since it takes the instance down.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the running service")
	withDB := flag.Bool("db", false, "also call /connectToDb")
	crash := flag.Bool("crash", false, "finish by calling /crashPod")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Minute}
	failed := false
	check := func(ok bool) {
		if !ok {
			failed = true
		}
	}

	fmt.Println("--- Health ---")
	check(sendRequest(client, http.MethodGet, *baseURL+"/health", nil))

	fmt.Println("\n--- Environment ---")
	check(sendRequest(client, http.MethodGet, *baseURL+"/getEnvironment", nil))

	fmt.Println("\n--- Send error ---")
	check(sendRequest(client, http.MethodGet, *baseURL+"/senderror", nil))

	fmt.Println("\n--- Fibonacci load ---")
	check(sendRequest(client, http.MethodGet, *baseURL+"/fibo", nil))

	fmt.Println("\n--- Event with bucket ---")
	check(sendRequest(client, http.MethodPost, *baseURL+"/", map[string]interface{}{
		"bucket": "smoke-test",
		"name":   fmt.Sprintf("object-%d", time.Now().Unix()),
	}))

	fmt.Println("\n--- Event without bucket (ignored) ---")
	check(sendRequest(client, http.MethodPost, *baseURL+"/", map[string]interface{}{}))

	fmt.Println("\n--- Events ---")
	check(sendRequest(client, http.MethodGet, *baseURL+"/getevents", nil))

	if *withDB {
		fmt.Println("\n--- Database ---")
		check(sendRequest(client, http.MethodGet, *baseURL+"/connectToDb", nil))
	}

	if *crash {
		fmt.Println("\n--- Crash ---")
		check(sendRequest(client, http.MethodGet, *baseURL+"/crashPod", nil))
	}

	if failed {
		os.Exit(1)
	}
}

func sendRequest(client *http.Client, method, url string, payload map[string]interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s (%s)\n", resp.Status, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Response: %s\n", string(respBody))
	return resp.StatusCode < http.StatusBadRequest
}
