package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leetcode-bot/internal/infra/metrics"
)

const userAgent = "Mozilla/5.0 (compatible; leetcode-daily-bot/1.0)"

// graphQLRequest: тело запроса. Создаётся заново на каждый вызов.
type graphQLRequest struct {
	OperationName string            `json:"operationName"`
	Variables     map[string]string `json:"variables"`
	Query         string            `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func chaptersRequest(cardSlug string) graphQLRequest {
	return graphQLRequest{
		OperationName: "GetChaptersWithItems",
		Variables:     map[string]string{"cardSlug": cardSlug},
		Query:         "query GetChaptersWithItems($cardSlug: String!) { chapters(cardSlug: $cardSlug) { items { id title type } } }",
	}
}

func itemRequest(itemID string) graphQLRequest {
	return graphQLRequest{
		OperationName: "GetItem",
		Variables:     map[string]string{"itemId": itemID},
		Query:         "query GetItem($itemId: String!) { item(id: $itemId) { question { titleSlug } } }",
	}
}

func questionRequest(titleSlug string) graphQLRequest {
	return graphQLRequest{
		OperationName: "GetQuestion",
		Variables:     map[string]string{"titleSlug": titleSlug},
		Query:         "query GetQuestion($titleSlug: String!) { question(titleSlug: $titleSlug) { questionId questionTitle difficulty content hints } }",
	}
}

// do выполняет запрос и раскладывает поле data в out.
func (c *Client) do(ctx context.Context, gql graphQLRequest, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("leetcode", gql.OperationName, "graphql", start, err)
	}()

	req, err := c.newRequest(ctx, gql)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("leetcode %s request failed: %w", gql.OperationName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("leetcode %s: status=%d body=%s", gql.OperationName, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	envelope := graphQLResponse[json.RawMessage]{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", gql.OperationName, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("leetcode %s: %s", gql.OperationName, envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("leetcode %s: empty data", gql.OperationName)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", gql.OperationName, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, gql graphQLRequest) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	switch c.method {
	case http.MethodGet:
		vars, mErr := json.Marshal(gql.Variables)
		if mErr != nil {
			return nil, fmt.Errorf("marshal variables: %w", mErr)
		}
		resolved := *c.endpoint
		q := resolved.Query()
		q.Set("operationName", gql.OperationName)
		q.Set("query", gql.Query)
		q.Set("variables", string(vars))
		resolved.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, resolved.String(), nil)
	default:
		raw, mErr := json.Marshal(gql)
		if mErr != nil {
			return nil, fmt.Errorf("marshal request: %w", mErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(raw))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererFor(c.endpoint))
	return req, nil
}

func refererFor(endpoint *url.URL) string {
	return endpoint.Scheme + "://" + endpoint.Host + "/"
}
