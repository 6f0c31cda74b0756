package distrib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/programme-lv/soltracker/httpjson"
)

const tokenIssuer = "soltracker"

// DistributorClaims are the claims of the token the HTTP sink presents.
type DistributorClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HttpSink posts solutions as JSON to a distributor service and
// authenticates with a short lived HS256 token.
type HttpSink struct {
	client *http.Client
	url    string
	jwtKey []byte
}

func NewHttpSink(url string, jwtKey []byte, client *http.Client) *HttpSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpSink{
		client: client,
		url:    url,
		jwtKey: jwtKey,
	}
}

func (h *HttpSink) token() (string, error) {
	now := time.Now()
	claims := &DistributorClaims{
		Scopes: []string{"solutions:put"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtKey)
}

func (h *HttpSink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	msg, err := newSolutionMsg(ctx, taskID, solutionID, authorID, langName, content)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal solution message: %w", err)
	}

	token, err := h.token()
	if err != nil {
		return fmt.Errorf("failed to sign distributor token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post solution: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if srvcErr := httpjson.ReadError(resp); srvcErr != nil {
		return fmt.Errorf("distributor rejected solution (status %d, code %q): %w",
			resp.StatusCode, srvcErr.ErrorCode(), srvcErr)
	}
	return fmt.Errorf("distributor responded with status %d", resp.StatusCode)
}
