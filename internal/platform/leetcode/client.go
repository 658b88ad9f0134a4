// Package leetcode is a minimal client for the public LeetCode GraphQL API.
package leetcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const DefaultGraphQLURL = "https://leetcode.com/graphql"

const (
	opRecentAcSubmissions = "recentAcSubmissions"
	opQuestionProgress    = "userProfileUserQuestionProgressV2"

	recentAcSubmissionsQuery = `
    query recentAcSubmissions($username: String!, $limit: Int!) {
      recentAcSubmissionList(username: $username, limit: $limit) {
        id
        title
        titleSlug
        timestamp
      }
    }`

	questionProgressQuery = `
    query userProfileUserQuestionProgressV2($userSlug: String!) {
      userProfileUserQuestionProgressV2(userSlug: $userSlug) {
        numAcceptedQuestions {
          count
          difficulty
        }
      }
    }`

	maxErrorBody = 512
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("leetcode API returned status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError is returned when the response carries errors and no data.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("leetcode %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

type AcSubmission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	Timestamp Unix   `json:"timestamp"`
}

type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// Unix is a unix timestamp in seconds. The API sends it as a string; plain
// numbers are accepted too.
type Unix int64

func (u *Unix) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*u = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*u = Unix(v)
	return nil
}

func (u Unix) Time() time.Time {
	return time.Unix(int64(u), 0).UTC()
}

type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultGraphQLURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type graphQLResponse struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// RecentAcSubmissions returns up to limit most recent accepted submissions.
// A response without a list yields an empty slice.
func (c *Client) RecentAcSubmissions(ctx context.Context, username string, limit int) ([]AcSubmission, error) {
	var data struct {
		List []AcSubmission `json:"recentAcSubmissionList"`
	}
	err := c.do(ctx, graphQLRequest{
		Query:         recentAcSubmissionsQuery,
		Variables:     map[string]any{"username": username, "limit": limit},
		OperationName: opRecentAcSubmissions,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.List, nil
}

// AcceptedQuestionCounts returns accepted question counts per difficulty.
func (c *Client) AcceptedQuestionCounts(ctx context.Context, userSlug string) ([]DifficultyCount, error) {
	var data struct {
		Progress *struct {
			NumAccepted []DifficultyCount `json:"numAcceptedQuestions"`
		} `json:"userProfileUserQuestionProgressV2"`
	}
	err := c.do(ctx, graphQLRequest{
		Query:         questionProgressQuery,
		Variables:     map[string]any{"userSlug": userSlug},
		OperationName: opQuestionProgress,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Progress == nil {
		return nil, nil
	}
	return data.Progress.NumAccepted, nil
}

func (c *Client) do(ctx context.Context, payload graphQLRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", payload.OperationName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", payload.OperationName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", payload.OperationName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("decode %s response: %w", payload.OperationName, err)
	}

	hasData := len(gqlResp.Data) > 0 && string(gqlResp.Data) != "null"
	if !hasData {
		if len(gqlResp.Errors) > 0 {
			msgs := make([]string, 0, len(gqlResp.Errors))
			for _, e := range gqlResp.Errors {
				msgs = append(msgs, e.Message)
			}
			return &GraphQLError{Operation: payload.OperationName, Messages: msgs}
		}
		return nil
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", payload.OperationName, err)
	}
	return nil
}
