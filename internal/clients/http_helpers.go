package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// doWithRetry sends req, retrying server errors and transport failures with
// exponential backoff. Responses below 500 are returned as-is so callers can
// handle client errors themselves.
func doWithRetry(client *http.Client, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := INITIAL_BACKOFF

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", bodyErr)
			}
			req.Body = body
		}

		resp, err = client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HTTP] Request failed, will retry",
			slog.String("url", req.URL.Path),
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		time.Sleep(backoff)
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	if err == nil {
		err = fmt.Errorf("gave up after %d attempts: %s", MAX_RETRIES, errMsg(nil, resp))
	}
	return nil, err
}

// postJSON marshals input, posts it to endpoint, and unmarshals the response
// body into output.
func postJSON(client *http.Client, endpoint string, headers map[string]string, input, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := doWithRetry(client, req)
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, getPreview(respBody))
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		return fmt.Errorf("failed to unmarshal response (%s): %w", getPreview(respBody), err)
	}

	return nil
}

func getPreview(respBody []byte) string {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return raw
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
