// Command smoke runs an end-to-end check against a running server seeded
// with config/seed.json.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/agenthands/twohop/internal/core/model"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	user := flag.Int64("user", 1, "requester id")
	text := flag.String("text", "화장실 변기가 막혔는데 수리해줄 수 있는 분 찾아요", "request text")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Println("1. Health...")
	if _, err := call(client, http.MethodGet, *baseURL+"/healthz", nil, http.StatusOK); err != nil {
		fail("health", err)
	}
	fmt.Println("PASSED: health")

	fmt.Println("2. Classify...")
	body, err := call(client, http.MethodPost, *baseURL+"/api/ai/classify", map[string]string{"request_text": *text}, http.StatusOK)
	if err != nil {
		fail("classify", err)
	}
	fmt.Printf("PASSED: classify %s\n", body)

	fmt.Println("3. Recommend...")
	body, err = call(client, http.MethodPost, *baseURL+"/api/ai/recommend", map[string]interface{}{
		"user_id":             *user,
		"request_text":        *text,
		"max_recommendations": 5,
	}, http.StatusCreated)
	if err != nil {
		fail("recommend", err)
	}

	var res model.Result
	if err := json.Unmarshal(body, &res); err != nil {
		fail("recommend", err)
	}
	if res.RequestID == nil {
		fail("recommend", fmt.Errorf("requester %d not found", *user))
	}
	for i := 1; i < len(res.Recommendations); i++ {
		if res.Recommendations[i-1].FinalScore < res.Recommendations[i].FinalScore {
			fail("recommend", fmt.Errorf("recommendations out of order at %d", i))
		}
	}
	for _, r := range res.Recommendations {
		if r.Degree != 2 {
			fail("recommend", fmt.Errorf("candidate %d has degree %d", r.CandidateID, r.Degree))
		}
		fmt.Printf("  %d via %d: %.3f\n", r.CandidateID, r.IntroducerID, r.FinalScore)
	}
	fmt.Printf("PASSED: recommend (%s, %d results)\n", res.InferredCategory, len(res.Recommendations))
}

func call(client *http.Client, method, url string, payload interface{}, want int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != want {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}

func fail(step string, err error) {
	fmt.Printf("FAILED: %s: %v\n", step, err)
	os.Exit(1)
}
