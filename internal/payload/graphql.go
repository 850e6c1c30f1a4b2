// Package payload stores announcements and articles in Payload CMS through
// its GraphQL API.
package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gazette/internal/logger"
)

// GraphQL errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrGraphQLError         = errors.New("graphql error")
	ErrNoTokenReceived      = errors.New("no token received from login")
	ErrNoData               = errors.New("no data in response")
)

const maxResponseBytes = 10 * 1024 * 1024

// Client defines the interface for GraphQL communication.
type Client interface {
	Execute(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error)
	Login(ctx context.Context, email, password string) error
}

var _ Client = (*GraphQLClient)(nil)

// GraphQLClient handles GraphQL communication with Payload CMS.
type GraphQLClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	authToken  string
	mu         sync.RWMutex
	logger     *logger.Logger
}

// GraphQLRequest represents a GraphQL request.
type GraphQLRequest struct {
	Variables map[string]any `json:"variables,omitempty"`
	Query     string         `json:"query"`
}

// GraphQLResponse represents a GraphQL response.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error.
type GraphQLError struct {
	Message   string `json:"message"`
	Locations []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations,omitempty"`
	Path []any `json:"path,omitempty"`
}

// NewGraphQLClient creates a new GraphQL client.
func NewGraphQLClient(endpoint, apiKey string, log *logger.Logger) *GraphQLClient {
	return &GraphQLClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

// Execute sends a GraphQL request and returns the response. A response
// carrying GraphQL errors is returned together with ErrGraphQLError.
func (c *GraphQLClient) Execute(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	if c.logger != nil {
		c.logger.Debug("executing graphql query", "query", query[:min(len(query), 50)])
	}

	jsonBody, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.authToken
	key := c.apiKey
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if key != "" {
		req.Header.Set("Authorization", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Error("graphql request failed", "status", resp.StatusCode, "body", string(body))
		}

		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, string(body))
	}

	var gqlResp GraphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return &gqlResp, fmt.Errorf("%w: %s", ErrGraphQLError, gqlResp.Errors[0].Message)
	}

	return &gqlResp, nil
}

// UnmarshalGraphQLData unmarshals the response data into the target struct.
func UnmarshalGraphQLData[T any](resp *GraphQLResponse) (*T, error) {
	if resp == nil || resp.Data == nil {
		return nil, ErrNoData
	}

	var target T
	if err := json.Unmarshal(resp.Data, &target); err != nil {
		return nil, fmt.Errorf("failed to parse response data: %w", err)
	}

	return &target, nil
}

// LoginUserMutation authenticates user and returns token.
const LoginUserMutation = `
mutation LoginUser($email: String!, $password: String!) {
  loginUser(email: $email, password: $password) {
    token
    user {
      id
      email
    }
  }
}
`

type loginResponse struct {
	LoginUser struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			ID    int    `json:"id"`
		} `json:"user"`
	} `json:"loginUser"`
}

// Login authenticates with email and password, storing the auth token for
// later requests.
func (c *GraphQLClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.Execute(ctx, LoginUserMutation, map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	data, err := UnmarshalGraphQLData[loginResponse](resp)
	if err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if data.LoginUser.Token == "" {
		return ErrNoTokenReceived
	}

	c.mu.Lock()
	c.authToken = data.LoginUser.Token
	c.mu.Unlock()

	return nil
}

// CloseIdleConnections releases pooled connections.
func (c *GraphQLClient) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

const announcementFields = `
      id
      entryId
      publishedOn
      updatedAt
      type
      category
      accessMode
      cleanTitle
      summary
      department
      htmlUrl
      xmlUrl
      pdfUrl
      relatedTrack
      relevanceScore
      scope {
        level
        region
        province
        municipality
      }
      quotas {
        total
        open
        internalPromotion
        disability
      }
      origins {
        field
        origin
      }`

// FindAnnouncementQuery finds an announcement by published entry id.
const FindAnnouncementQuery = `
query FindAnnouncement($entryId: String!) {
  Announcements(where: { entryId: { equals: $entryId } }, limit: 1) {
    docs {` + announcementFields + `
    }
  }
}
`

// CreateAnnouncementMutation creates a new announcement.
const CreateAnnouncementMutation = `
mutation CreateAnnouncement($data: mutationAnnouncementInput!) {
  createAnnouncement(data: $data) {
    id
    entryId
  }
}
`

// UpdateAnnouncementMutation updates an existing announcement.
const UpdateAnnouncementMutation = `
mutation UpdateAnnouncement($id: Int!, $data: mutationAnnouncementUpdateInput!) {
  updateAnnouncement(id: $id, data: $data) {
    id
    entryId
  }
}
`

// FindArticleQuery finds an article by document id and normalized number.
const FindArticleQuery = `
query FindArticle($documentId: String!, $articleNumber: String!) {
  Articles(where: { AND: [{ documentId: { equals: $documentId } }, { articleNumber: { equals: $articleNumber } }] }, limit: 1) {
    docs {
      id
      documentId
      articleNumber
      numberText
      title
      content
    }
  }
}
`

// CreateArticleMutation creates a new article.
const CreateArticleMutation = `
mutation CreateArticle($data: mutationArticleInput!) {
  createArticle(data: $data) {
    id
    articleNumber
  }
}
`

// UpdateArticleMutation updates an existing article.
const UpdateArticleMutation = `
mutation UpdateArticle($id: Int!, $data: mutationArticleUpdateInput!) {
  updateArticle(id: $id, data: $data) {
    id
    articleNumber
  }
}
`
