package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/config"
	"github.com/faithflow/pledge-service/internal/domain/provider"
)

const gatewayName = "momo"

// Gateway talks to the mobile-money collection API. Initiate is synchronous:
// the rail accepts the collection request or rejects it outright, and the
// final outcome arrives later on the callback endpoint.
type Gateway struct {
	baseURL        string
	apiUser        string
	apiKey         string
	callbackSecret []byte
	currency       string
	client         *http.Client
	logger         *zap.Logger
}

// NewGateway creates a mobile-money gateway client from configuration
func NewGateway(cfg *config.MomoConfig, logger *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Gateway{
		baseURL:        cfg.BaseURL,
		apiUser:        cfg.APIUser,
		apiKey:         cfg.APIKey,
		callbackSecret: []byte(cfg.CallbackSecret),
		currency:       cfg.Currency,
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

type collectionRequest struct {
	Msisdn            string `json:"msisdn"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	ExternalReference string `json:"external_reference"`
	Narrative         string `json:"narrative,omitempty"`
}

type collectionResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// Initiate submits a collection request to the rail
// POST /collections
func (g *Gateway) Initiate(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
	body := collectionRequest{
		Msisdn:            req.Contact,
		Amount:            req.Amount.StringFixed(2),
		Currency:          g.currency,
		ExternalReference: req.Reference,
		Narrative:         req.Narrative,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "MARSHAL_ERROR",
			Message: err.Error(),
		}
	}

	url := fmt.Sprintf("%s/collections", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "REQUEST_ERROR",
			Message: err.Error(),
		}
	}

	auth := base64.StdEncoding.EncodeToString([]byte(g.apiUser + ":" + g.apiKey))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("momo: collection request failed",
			zap.String("reference", req.Reference),
			zap.Error(err))
		return nil, &provider.GatewayError{
			Code:    "API_ERROR",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "RESPONSE_ERROR",
			Message: err.Error(),
		}
	}

	// 4xx means the rail rejected the request synchronously; that's a
	// business outcome, not a transport failure.
	if resp.StatusCode >= http.StatusInternalServerError {
		g.logger.Error("momo: collection API error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, &provider.GatewayError{
			Code:    "API_ERROR",
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var result collectionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.GatewayError{
			Code:    "PARSE_ERROR",
			Message: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		g.logger.Warn("momo: collection rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("reference", req.Reference),
			zap.String("reason", result.Reason))
		return &provider.InitiateResponse{
			Accepted:     false,
			RejectReason: result.Reason,
		}, nil
	}

	if result.Status != "" && result.Status != "accepted" && result.Status != "pending" {
		return &provider.InitiateResponse{
			Accepted:     false,
			RejectReason: result.Reason,
		}, nil
	}

	g.logger.Info("momo: collection accepted",
		zap.String("reference", req.Reference),
		zap.String("gateway_reference", result.Reference))

	return &provider.InitiateResponse{
		Accepted:         true,
		GatewayReference: result.Reference,
	}, nil
}

// VerifyCallback checks the HMAC-SHA256 signature the rail puts on outcome
// notifications. The signature is the hex digest of the raw request body
// keyed with the shared callback secret.
func (g *Gateway) VerifyCallback(payload []byte, signature string) bool {
	if len(g.callbackSecret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, g.callbackSecret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// GatewayName returns the rail identifier
func (g *Gateway) GatewayName() string {
	return gatewayName
}
